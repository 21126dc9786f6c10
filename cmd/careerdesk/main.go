// Package main provides the entry point for the CareerDesk API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "careerdesk",
	Short: "CareerDesk admin dashboard API",
	Long:  "CareerDesk serves the admin dashboard backend: job posting management, counselor profiles, session auth and engagement counters over REST.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
