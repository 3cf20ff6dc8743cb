package gstctl

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/gstclient/gstd"
	"github.com/kbukum/gstclient/validation"
)

func (a *app) pipelinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"ls"},
		Short:   "List pipelines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nodes, err := a.client.Pipelines(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderNodes("PIPELINE", nodes)
		},
	}
}

func (a *app) pipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Create, control and inspect a pipeline",
	}

	// simple builds a subcommand that takes the pipeline name and runs fn.
	simple := func(use, short, action string, fn func(*cobra.Command, gstd.Pipeline) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <pipeline>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := fn(cmd, a.client.Pipeline(args[0])); err != nil {
					return err
				}
				return a.done(action, args[0])
			},
		}
	}

	create := &cobra.Command{
		Use:   "create <pipeline> <description...>",
		Short: "Create a pipeline from a gst-launch description",
		Long: `Create a pipeline. Remaining arguments are joined with spaces, so
quoting the description is optional:

  gstctl pipeline create p0 videotestsrc pattern=ball ! autovideosink`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.New().Name("pipeline", args[0]).Err(); err != nil {
				return err
			}
			if err := a.client.Pipeline(args[0]).Create(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return a.done("create", args[0])
		},
	}

	graph := &cobra.Command{
		Use:   "graph <pipeline>",
		Short: "Show the pipeline graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.client.Pipeline(args[0]).Graph(cmd.Context())
			if err != nil {
				return err
			}
			if a.outputFormat == "table" && env.Response.Kind == gstd.PayloadProperty {
				_, err := fmt.Fprintln(a.out, env.Response.Property.Value)
				return err
			}
			return a.renderEnvelope(env)
		},
	}

	elements := &cobra.Command{
		Use:   "elements <pipeline>",
		Short: "List the elements of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := a.client.Pipeline(args[0]).Elements(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderNodes("ELEMENT", nodes)
		},
	}

	properties := &cobra.Command{
		Use:   "properties <pipeline>",
		Short: "Show the pipeline's properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.client.Pipeline(args[0]).Properties(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderEnvelope(env)
		},
	}

	verbose := &cobra.Command{
		Use:   "verbose <pipeline> <true|false>",
		Short: "Toggle verbose state-change reporting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := strconv.ParseBool(args[1])
			if err != nil {
				return usageError(fmt.Errorf("verbose: %w", err))
			}
			if err := a.client.Pipeline(args[0]).SetVerbose(cmd.Context(), on); err != nil {
				return err
			}
			return a.done("verbose", args[0])
		},
	}

	var reset bool
	flushStop := simple("flush-stop", "Send a flush-stop event", "flush-stop", func(cmd *cobra.Command, p gstd.Pipeline) error {
		return p.FlushStop(cmd.Context(), reset)
	})
	flushStop.Flags().BoolVar(&reset, "reset", true, "Reset the running time")

	cmd.AddCommand(
		create,
		simple("delete", "Destroy a pipeline", "delete", func(cmd *cobra.Command, p gstd.Pipeline) error {
			return p.Destroy(cmd.Context())
		}),
		simple("play", "Set a pipeline to playing", "play", func(cmd *cobra.Command, p gstd.Pipeline) error {
			return p.Play(cmd.Context())
		}),
		simple("pause", "Set a pipeline to paused", "pause", func(cmd *cobra.Command, p gstd.Pipeline) error {
			return p.Pause(cmd.Context())
		}),
		simple("stop", "Set a pipeline to null", "stop", func(cmd *cobra.Command, p gstd.Pipeline) error {
			return p.Stop(cmd.Context())
		}),
		graph,
		elements,
		properties,
		verbose,
		simple("eos", "Send an end-of-stream event", "eos", func(cmd *cobra.Command, p gstd.Pipeline) error {
			return p.EmitEOS(cmd.Context())
		}),
		simple("flush-start", "Send a flush-start event", "flush-start", func(cmd *cobra.Command, p gstd.Pipeline) error {
			return p.FlushStart(cmd.Context())
		}),
		flushStop,
		a.seekCommand(),
	)
	return cmd
}

func (a *app) seekCommand() *cobra.Command {
	var (
		rate  float64
		flags []string
		stop  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "seek <pipeline> <position>",
		Short: "Seek to a time position such as 1m30s",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := time.ParseDuration(args[1])
			if err != nil {
				return usageError(fmt.Errorf("seek position: %w", err))
			}
			if err := validation.New().Custom(rate != 0, "rate", "must not be zero").Err(); err != nil {
				return err
			}
			seekFlags, err := gstd.ParseSeekFlags(flags...)
			if err != nil {
				return usageError(err)
			}
			seek := gstd.SeekTo(pos.Nanoseconds())
			seek.Rate = rate
			seek.Flags = seekFlags
			if stop >= 0 {
				seek.StopType = gstd.SeekTypeAbsolute
				seek.Stop = stop.Nanoseconds()
			}
			if err := a.client.Pipeline(args[0]).Seek(cmd.Context(), seek); err != nil {
				return err
			}
			return a.render(map[string]string{"status": "ok", "action": "seek", "target": args[0], "event": seek.String()},
				func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "seek\t%s\t%s\tok\n", args[0], seek)
				})
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 1, "Playback rate")
	cmd.Flags().StringSliceVar(&flags, "flags", []string{"flush", "key-unit"}, "Seek flags")
	cmd.Flags().DurationVar(&stop, "stop", -1, "Stop position; negative leaves it unchanged")
	return cmd
}
