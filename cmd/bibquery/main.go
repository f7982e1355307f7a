// Package main ist ein CLI, das Extraktion und Abfragen lokal gegen eine .bib-Datei ausführt.
package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pubfeed/models"
	"pubfeed/services"
)

var rootCmd = &cobra.Command{
	Use:   "bibquery",
	Short: "Extract and query publications from a BibTeX file",
	Long: `bibquery runs the same extraction and query pipeline as the HTTP service
against a local bibliography file and prints the result as JSON.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "log extraction details to stderr")
}

// newLogger loggt nur mit --verbose, sonst bleibt stderr ruhig.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func parseFile(cmd *cobra.Command, path string) ([]models.Publication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return services.NewExtractor(newLogger(cmd), nil).Parse(string(data))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
