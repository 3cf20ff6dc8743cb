package gstctl

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/gstclient/gstd"
)

func (a *app) elementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "element",
		Short: "Inspect and modify pipeline elements",
	}

	properties := &cobra.Command{
		Use:   "properties <pipeline> <element>",
		Short: "List an element's properties",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.element(args).Properties(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderEnvelope(env)
		},
	}

	get := &cobra.Command{
		Use:   "get <pipeline> <element> <property>",
		Short: "Read a property",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			prop, err := a.element(args).Property(args[2]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderProperty(prop)
		},
	}

	set := &cobra.Command{
		Use:   "set <pipeline> <element> <property> <value>",
		Short: "Write a property",
		Long: `Write a property. "true" and "false" are sent as booleans and
integers as integers; anything else is sent as a string.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := gstd.ParsePropertyValue(args[3])
			if err := a.element(args).Property(args[2]).Set(cmd.Context(), value); err != nil {
				return err
			}
			return a.done("set", fmt.Sprintf("%s.%s=%s", args[1], args[2], value))
		},
	}

	connect := &cobra.Command{
		Use:   "signal-connect <pipeline> <element> <signal>",
		Short: "Wait for an element signal",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.element(args).SignalConnect(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			return a.renderEnvelope(env)
		},
	}

	disconnect := &cobra.Command{
		Use:   "signal-disconnect <pipeline> <element> <signal>",
		Short: "Release a pending signal-connect",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.element(args).SignalDisconnect(cmd.Context(), args[2]); err != nil {
				return err
			}
			return a.done("signal-disconnect", args[1]+"::"+args[2])
		},
	}

	timeout := &cobra.Command{
		Use:   "signal-timeout <pipeline> <element> <signal> <duration>",
		Short: "Bound how long signal-connect waits (negative waits forever)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[3])
			if err != nil {
				return usageError(fmt.Errorf("signal timeout: %w", err))
			}
			if err := a.element(args).SetSignalTimeout(cmd.Context(), args[2], d); err != nil {
				return err
			}
			return a.done("signal-timeout", args[1]+"::"+args[2])
		},
	}

	cmd.AddCommand(properties, get, set, connect, disconnect, timeout)
	return cmd
}

// element resolves the <pipeline> <element> argument pair.
func (a *app) element(args []string) gstd.Element {
	return a.client.Pipeline(args[0]).Element(args[1])
}
