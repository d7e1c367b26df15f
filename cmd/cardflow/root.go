package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cardflow",
	Short: "Cardflow is a turn-based card replacement dialogue engine",
	Long:  `Cardflow drives the card replacement conversation: it decides the next question, folds user answers into the session, and executes the replacement against an account directory.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// A local .env can supply CARDFLOW_* variables during development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
