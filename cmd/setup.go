package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/tabd/internal/profile"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure your identity for tracked edits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(false)
	},
}

// runSetup runs the interactive identity prompt. When auto is true, it's
// being invoked implicitly on first run rather than via `tabd setup`.
func runSetup(auto bool) error {
	var existing *profile.Profile
	if profile.Exists() {
		p, err := profile.Load()
		if err != nil {
			return err
		}
		existing = p
	}

	p, err := profile.RunSetup(existing)
	if err != nil {
		return err
	}
	if err := profile.Save(p); err != nil {
		return err
	}
	if !auto {
		fmt.Println("Saved.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
