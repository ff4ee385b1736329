package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aristath/kanbanbar/internal/di"
	"github.com/aristath/kanbanbar/internal/modules/display"
	"github.com/aristath/kanbanbar/internal/work"
)

var (
	fetchTimeout  time.Duration
	fetchTooltips bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one cycle of every configured job and print the bar",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().DurationVarP(&fetchTimeout, "timeout", "t", 30*time.Second, "Overall timeout")
	fetchCmd.Flags().BoolVar(&fetchTooltips, "tooltips", false, "Print tooltips below each item")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	container, err := di.Wire(cfg, log)
	if err != nil {
		return err
	}
	defer container.StateDB.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()

	runFetchCycles(ctx, container.Registry, os.Stderr)
	printItems(os.Stdout, container.Display.Items(), fetchTooltips)
	return nil
}

// runFetchCycles runs one initial cycle per ready job, in registration order.
// Skipped, gated and failed jobs are reported to errs.
func runFetchCycles(ctx context.Context, registry *work.Registry, errs io.Writer) {
	for _, name := range registry.Names() {
		job, _ := registry.Get(name)
		if job.Ready != nil {
			if err := job.Ready(); err != nil {
				fmt.Fprintf(errs, "%s: skipped (%v)\n", name, err)
				continue
			}
		}
		outcome, err := job.Cycle(ctx, work.Run{ID: uuid.NewString(), Seq: 1, Initial: true})
		if err != nil {
			fmt.Fprintf(errs, "%s: %v\n", name, err)
			continue
		}
		if outcome == work.OutcomeGated {
			fmt.Fprintf(errs, "%s: gated\n", name)
		}
	}
}

func printItems(w io.Writer, items []display.Item, tooltips bool) {
	for _, item := range items {
		fmt.Fprintf(w, "%s: %s\n", item.Job, item.Text)
		if tooltips && item.Tooltip != "" {
			fmt.Fprintf(w, "%s\n\n", item.Tooltip)
		}
	}
}
