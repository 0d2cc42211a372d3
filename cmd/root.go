package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/tabd/internal/config"
	"github.com/fakeyudi/tabd/internal/profile"
	"github.com/fakeyudi/tabd/internal/vcs"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded identity profile.
var activeProfile *profile.Profile

// workspacePath is the directory tabd treats as the tracked workspace root.
var workspacePath string

var rootCmd = &cobra.Command{
	Use:   "tabd",
	Short: "Inspect and manage per-character edit provenance for tracked files",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "setup" {
			return nil
		}

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		workspacePath = wd

		if !profile.Exists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Println()
				fmt.Println("  Welcome to tabd! Looks like this is your first time.")
				if err := runSetup(true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue with a detected default.
		}

		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		} else {
			activeProfile = &profile.Profile{Author: profile.DetectAuthor()}
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active identity profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

// newVCSClient builds a git client rooted at the workspace, for subcommands
// that need to resolve a vcs-notes ref.
func newVCSClient() *vcs.Client {
	return vcs.NewClient(workspacePath)
}
