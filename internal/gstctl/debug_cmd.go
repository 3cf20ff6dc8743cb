package gstctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/gstclient/validation"
)

// debugLevels are the GStreamer level names; numeric levels run 0..9.
var debugLevels = []string{"none", "error", "warning", "fixme", "info", "debug", "log", "trace", "memdump"}

// checkThreshold accepts "3", "warning" or a list such as
// "*:2,videotestsrc:5,GST_PADS:info".
func checkThreshold(threshold string) error {
	v := validation.New()
	for _, item := range strings.Split(threshold, ",") {
		level := item
		if category, rest, found := strings.Cut(item, ":"); found {
			v.Required("category", category).Pattern("category", category, `^[A-Za-z0-9_*.-]+$`)
			level = rest
		}
		if n, err := strconv.Atoi(level); err == nil {
			v.Range("level", n, 0, 9)
			continue
		}
		v.OneOf("level", strings.ToLower(level), debugLevels)
	}
	return v.Err()
}

func (a *app) debugCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Configure GStreamer debug output on the daemon",
	}

	noArgs := func(use, short string, fn func(context.Context) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := fn(cmd.Context()); err != nil {
					return err
				}
				return a.done("debug-"+use, "debug")
			},
		}
	}
	boolArg := func(use, short string, fn func(context.Context, bool) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <true|false>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := strconv.ParseBool(args[0])
				if err != nil {
					return usageError(fmt.Errorf("%s: %w", use, err))
				}
				if err := fn(cmd.Context(), on); err != nil {
					return err
				}
				return a.done("debug-"+use, args[0])
			},
		}
	}

	threshold := &cobra.Command{
		Use:   "threshold <level>",
		Short: `Set the debug threshold, e.g. 3 or "*:2,videotestsrc:5"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkThreshold(args[0]); err != nil {
				return err
			}
			if err := a.client.Debug().Threshold(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.done("debug-threshold", args[0])
		},
	}

	cmd.AddCommand(
		noArgs("enable", "Enable debug output", func(ctx context.Context) error { return a.client.Debug().Enable(ctx) }),
		noArgs("disable", "Disable debug output", func(ctx context.Context) error { return a.client.Debug().Disable(ctx) }),
		threshold,
		boolArg("color", "Toggle colored debug output", func(ctx context.Context, on bool) error {
			return a.client.Debug().ColorOutput(ctx, on)
		}),
		boolArg("reset", "Replace rather than extend the threshold", func(ctx context.Context, on bool) error {
			return a.client.Debug().Reset(ctx, on)
		}),
	)
	return cmd
}
