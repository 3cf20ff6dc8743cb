package observability

import (
	"context"
	"errors"
)

// ShutdownFunc flushes and stops the providers started by Setup.
type ShutdownFunc func(context.Context) error

// Setup starts the tracer and meter providers that are enabled in config.
// With both disabled it returns a no-op shutdown and leaves the global
// no-op providers in place.
func Setup(ctx context.Context, tracing TracerConfig, metrics MeterConfig, info ServiceInfo) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if tracing.Enabled {
		tp, err := InitTracer(ctx, tracing, info)
		if err != nil {
			return shutdown, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}
	if metrics.Enabled {
		mp, err := InitMeter(ctx, metrics, info)
		if err != nil {
			return shutdown, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}
	return shutdown, nil
}
