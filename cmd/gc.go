package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tabd/internal/config"
	"github.com/fakeyudi/tabd/internal/persist"
	"github.com/fakeyudi/tabd/internal/persist/index"
)

var gcOlderThan time.Duration

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete provenance logs for files not saved in a while",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Layout == config.LayoutVCSNotes {
			return fmt.Errorf("gc has nothing to clean up under the vcs-notes layout; prune with `git notes remove` instead")
		}

		layout := persist.Repository
		if cfg.Layout == config.LayoutHomeDirectory {
			layout = persist.HomeDirectory
		}

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}

		indexPath := persist.IndexPath(layout, workspacePath, homeDir)
		if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
			return fmt.Errorf("creating index directory: %w", err)
		}
		db, err := index.Open(indexPath)
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer db.Close()

		cutoff := time.Now().Add(-gcOlderThan).UnixMilli()
		stale, err := db.ListStale(cutoff)
		if err != nil {
			return fmt.Errorf("listing stale entries: %w", err)
		}

		if len(stale) == 0 {
			cmd.Println("nothing to collect")
			return nil
		}

		for _, tf := range stale {
			dir := persist.LogDir(layout, workspacePath, homeDir, tf.RelativePath)
			if err := os.RemoveAll(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to remove %s: %v\n", dir, err)
				continue
			}
			if err := db.Forget(tf.RelativePath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to forget %s in index: %v\n", tf.RelativePath, err)
				continue
			}
			cmd.Printf("removed %s (last saved %s ago)\n", tf.RelativePath, time.Since(time.UnixMilli(tf.LastSavedAt)).Round(time.Hour))
		}

		return nil
	},
}

func init() {
	gcCmd.Flags().DurationVar(&gcOlderThan, "older-than", 30*24*time.Hour, "remove logs for files not saved within this duration")
	rootCmd.AddCommand(gcCmd)
}
