package gstctl

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) busCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bus",
		Short: "Read pipeline bus messages",
	}

	read := &cobra.Command{
		Use:   "read <pipeline>",
		Short: "Pop the next bus message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.Pipeline(args[0]).Bus().Read(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(msg, func(tw *tabwriter.Writer) { writeBusMessage(tw, msg) })
		},
	}

	timeout := &cobra.Command{
		Use:   "timeout <pipeline> <duration>",
		Short: "Set how long read waits (negative waits forever)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[1])
			if err != nil {
				return usageError(fmt.Errorf("bus timeout: %w", err))
			}
			if err := a.client.Pipeline(args[0]).Bus().SetTimeout(cmd.Context(), d); err != nil {
				return err
			}
			return a.done("bus-timeout", args[0])
		},
	}

	filter := &cobra.Command{
		Use:   "filter <pipeline> <type...>",
		Short: "Only read messages of the given types, e.g. eos error",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Pipeline(args[0]).Bus().SetFilter(cmd.Context(), args[1:]...); err != nil {
				return err
			}
			return a.done("bus-filter", args[0])
		},
	}

	cmd.AddCommand(read, timeout, filter)
	return cmd
}
