// Package validation checks configuration structs and command arguments.
//
// Struct tag validation covers configuration loaded from files and the
// environment; the chained Validator covers positional arguments parsed by
// gstctl. Both report failures as *errors.AppError with a "fields" detail.
//
//	type Settings struct {
//	    BaseURL string `json:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(settings)
//
//	v := validation.New()
//	v.Required("pipeline", name).OneOf("state", state, []string{"playing", "paused", "null"})
//	err := v.Err()
package validation
