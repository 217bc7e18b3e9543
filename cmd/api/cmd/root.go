package cmd

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"tabqa/internal/config"
	"tabqa/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tabqa",
	Short: "Question answering over tabular documents",
	Long: `tabqa ingests CSV, TSV and XLSX tables, stores their text rendering and
answers natural-language questions against one stored document.

Commands:
  serve    Start the HTTP API
  migrate  Create the PostgreSQL schema
  mcp      Serve the document tools over MCP stdio`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env: CONFIG_FILE); environment variables override it")
}

func loadConfig() (*config.AppConfig, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	return config.LoadFile(path)
}

// setupLogger installs the process logger writing to w. A nil w means stdout.
func setupLogger(cfg *config.AppConfig, w io.Writer) (logr.Logger, func()) {
	if w == nil {
		log, sync := logging.New(cfg.Log.Level, cfg.Log.Location())
		logging.SetLogger(log)
		return log, sync
	}
	log := logging.NewWithWriter(w, cfg.Log.Level, cfg.Log.Location())
	logging.SetLogger(log)
	return log, func() {}
}
