package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "happyhackingspace/nertag"

func (c *CLI) newUpCommand() *cobra.Command {
	var check, refreshModel bool
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Self-update to the latest release",
		Example: `  nertag up
  nertag up --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := c.selfUpdate(cmd, check)
			if err != nil || !updated || !refreshModel {
				return err
			}
			if _, err := os.Stat(modelFile); err != nil {
				return nil
			}
			slog.Info("Refreshing model", "path", modelFile)
			return downloadModel(cmd.Context(), modelFile)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether a newer release exists")
	cmd.Flags().BoolVar(&refreshModel, "refresh-model", true, "Re-download "+modelFile+" after updating when it exists")
	return cmd
}

// selfUpdate replaces the running binary with the latest release and
// reports whether it did.
func (c *CLI) selfUpdate(cmd *cobra.Command, checkOnly bool) (bool, error) {
	current := c.version
	if current == "dev" {
		current = "0.0.0"
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return false, err
	}
	latest, found, err := updater.DetectLatest(cmd.Context(), selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return false, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return false, fmt.Errorf("no release found for %s", repoSlug)
	}

	out := cmd.OutOrStdout()
	if latest.LessOrEqual(current) {
		fmt.Fprintf(out, "Already up to date (%s)\n", c.version)
		return false, nil
	}
	if checkOnly {
		fmt.Fprintf(out, "Release %s available (running %s)\n", latest.Version(), c.version)
		return false, nil
	}

	slog.Info("Updating", "from", c.version, "to", latest.Version())
	exe, err := os.Executable()
	if err != nil {
		return false, err
	}
	if err := updater.UpdateTo(cmd.Context(), latest, exe); err != nil {
		return false, fmt.Errorf("update: %w", err)
	}
	fmt.Fprintf(out, "Updated to %s\n", latest.Version())
	return true, nil
}
