package gstctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/gstclient/component"
	apperrors "github.com/kbukum/gstclient/errors"
	"github.com/kbukum/gstclient/gstd"
	"github.com/kbukum/gstclient/version"
)

type healthReport struct {
	Status     component.HealthStatus  `json:"status"`
	Components []component.Health      `json:"components"`
	Describe   []component.Description `json:"describe"`
}

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the daemon answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reg := component.NewRegistry(a.log)
			if err := reg.Register(gstd.NewComponent("gstd", a.client)); err != nil {
				return err
			}
			if err := reg.StartAll(ctx); err != nil {
				return err
			}
			defer func() { _ = reg.StopAll(ctx) }()

			healths := reg.HealthAll(ctx)
			report := healthReport{
				Status:     component.Overall(healths),
				Components: healths,
				Describe:   reg.Describe(),
			}
			if err := a.render(report, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "COMPONENT\tSTATUS\tMESSAGE\n")
				for _, h := range healths {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Name, h.Status, h.Message)
				}
			}); err != nil {
				return err
			}
			if report.Status == component.StatusUnhealthy {
				return apperrors.New(apperrors.ErrCodeConnectionFailed, "gstd is unhealthy", apperrors.ExitUnavailable)
			}
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := version.GetVersionInfo()
			return a.render(info, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, version.GetFullVersion())
			})
		},
	}
}
