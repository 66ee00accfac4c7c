package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

const (
	choiceDirectory = "1"
	choiceDrive     = "2"
	choiceExit      = "3"
)

// runMenu reads choices from the command input until the user exits or the
// input ends. A failed run is logged and the menu is shown again.
func runMenu(cmd *cobra.Command, a *app) error {
	in := bufio.NewScanner(cmd.InOrStdin())

	for {
		cmd.Println("Choose an action:")
		cmd.Println("  1. Enter a directory")
		cmd.Println("  2. Enter an external drive directory")
		cmd.Println("  3. Exit")

		if !in.Scan() {
			return in.Err()
		}
		choice := strings.TrimSpace(in.Text())

		switch choice {
		case choiceExit:
			return nil
		case choiceDirectory, choiceDrive:
			cmd.Println("Directory path (leave empty for the configured default):")
			if !in.Scan() {
				return in.Err()
			}
			entry := in.Text()

			dir := a.cfg.ResolveDirectory(entry, a.cwd)
			if strings.TrimSpace(entry) == "" {
				a.log.WithField("dir", dir).Info("using default directory")
			} else {
				a.log.WithField("dir", dir).Info("using directory")
			}

			sum, err := a.runner.Run(dir)
			if err != nil {
				continue
			}
			cmd.Printf("Report written to %s\n", sum.ReportPath)
		default:
			a.log.WithField("choice", choice).Error("invalid choice, try again")
		}
	}
}
