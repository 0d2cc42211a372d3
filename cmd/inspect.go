package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tabd/internal/interval"
	"github.com/fakeyudi/tabd/internal/mergelog"
	"github.com/fakeyudi/tabd/internal/persist"
	"github.com/fakeyudi/tabd/internal/report"
	"github.com/fakeyudi/tabd/internal/session"
	"github.com/fakeyudi/tabd/internal/tui"
)

var (
	inspectPlain  bool
	inspectFormat string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show a tracked file's merged provenance timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		relativePath, err := filepath.Rel(workspacePath, path)
		if err != nil {
			relativePath = filepath.Base(path)
		}

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}

		var malformed []string
		recs, err := session.LoadRecords(cfg, newVCSClient(), workspacePath, homeDir, relativePath, func(p string, err error) {
			malformed = append(malformed, fmt.Sprintf("%s: %v", p, err))
		})
		if err != nil {
			return fmt.Errorf("loading provenance log: %w", err)
		}

		var merged []interval.Tagged
		for _, rec := range recs {
			merged = mergelog.Merge(merged, persist.FromChanges(rec.Changes))
		}

		for _, w := range malformed {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped malformed log entry: %s\n", w)
		}

		timeline := report.NewTimeline(path, relativePath, merged, time.Now())

		if inspectPlain {
			var renderer report.Renderer = &report.MarkdownRenderer{}
			if inspectFormat == "json" {
				renderer = &report.JSONRenderer{}
			}
			out, err := renderer.Render(timeline)
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		}

		return tui.Run(timeline)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectPlain, "plain", false, "plain text output instead of the interactive viewer")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "markdown", "plain output format: markdown or json")
	rootCmd.AddCommand(inspectCmd)
}
