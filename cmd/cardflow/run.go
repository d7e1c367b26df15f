package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cardflow/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive replacement dialogue",
	Long:  `Starts a card replacement dialogue on the terminal for the given user.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		userID, _ := cmd.Flags().GetString("user")
		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")

		opts := cli.RunOptions{
			ConfigPath: configPath,
			UserID:     userID,
			SessionID:  sessionID,
			Headless:   headless,
			Debug:      debug,
		}
		if err := cli.RunSession(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("user", "u", "demo", "User ID to run the dialogue for")
	runCmd.Flags().StringP("session", "s", "", "Session ID to resume (or reserve)")
	runCmd.Flags().Bool("headless", false, "Plain text IO without banner or markdown rendering")

	// Running without a subcommand starts a dialogue.
	rootCmd.Run = runCmd.Run
}
