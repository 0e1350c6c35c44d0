package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studymate",
	Short: "StudyMate backend",
	Long: `StudyMate serves the study tracker API: sessions, quizzes, reminders,
dashboard statistics, an AI tutor and realtime updates over websockets.`,
	SilenceUsage: true,
	// Serving is the default action.
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
