package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Connector builds an inspector from a config file. The returned func
// releases its connections.
type Connector func(ctx context.Context, configPath string) (*Inspector, func(), error)

// BuildCLI returns the dlq-inspector root command.
func BuildCLI(connect Connector) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "dlq-inspector",
		Short:         "Inspect and replay dead-lettered translation jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/worker-service/config.yaml", "config file path")

	withInspector := func(cmd *cobra.Command, fn func(context.Context, *Inspector) error) error {
		insp, closeFn, err := connect(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(cmd.Context(), insp)
	}

	rootCmd.AddCommand(buildStatsCommand(withInspector))
	rootCmd.AddCommand(buildPeekCommand(withInspector))
	rootCmd.AddCommand(buildReplayCommand(withInspector))

	return rootCmd
}

type runner func(cmd *cobra.Command, fn func(context.Context, *Inspector) error) error

func buildStatsCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of dead-lettered messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, insp *Inspector) error {
				depth, err := insp.Depth(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d message(s)\n", insp.Queue(), depth)
				return nil
			})
		},
	}
}

func buildPeekCommand(run runner) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "peek",
		Short: "List dead-lettered messages without removing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, insp *Inspector) error {
				entries, err := insp.Peek(ctx, limit)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(entries)
				}
				return printEntries(cmd.OutOrStdout(), entries)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of messages to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func buildReplayCommand(run runner) *cobra.Command {
	var (
		limit     int
		requestID string
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Move dead-lettered messages back to the work queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, insp *Inspector) error {
				n, err := insp.Replay(ctx, limit, requestID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "replayed %d message(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of messages to inspect")
	cmd.Flags().StringVar(&requestID, "request-id", "", "only replay this translation request")
	return cmd
}

func printEntries(w io.Writer, entries []Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST ID\tRETRIES\tFAILED AT\tLANGS\tERROR")
	for _, e := range entries {
		id := e.RequestID
		if id == "" {
			id = "(malformed)"
		}
		langs := ""
		if e.SourceLang != "" {
			langs = e.SourceLang + "->" + e.TargetLang
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", id, e.Retries, e.FailedAt, langs, e.ErrorMessage)
	}
	return tw.Flush()
}
