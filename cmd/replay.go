package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tabd/internal/session"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Print a tracked file's raw save history, one record per save",
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

		recs, err := session.LoadRecords(cfg, newVCSClient(), workspacePath, homeDir, relativePath, func(p string, err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped malformed log entry: %s: %v\n", p, err)
		})
		if err != nil {
			return fmt.Errorf("loading provenance log: %w", err)
		}

		for i, rec := range recs {
			cmd.Printf("# save %d (version %d, %d changes)\n", i+1, rec.Version, len(rec.Changes))
			for _, c := range rec.Changes {
				cmd.Printf("  %d:%d-%d:%d  %s  ts=%d  author=%q\n",
					c.Start.Line, c.Start.Column, c.End.Line, c.End.Column, c.Type, c.CreationTimestamp, c.Author)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
