// Package cmd implements the orato command line interface.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "orato",
	Short: "Turn slide decks and PDFs into a searchable knowledge base",
	Long: `Orato ingests slide decks and PDFs into a vector index and answers
free-text or transcribed-speech queries with the single most relevant
slide fragment, its location on the slide, and the display intent
(zoom, highlight, navigate or plain search).`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// API keys commonly live in a .env next to the working directory.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".orato.yml", "config file path")
}
