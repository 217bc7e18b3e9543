package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"tabqa/cmd/api/cmd"
)

// @title Tabular Document QA API
// @version 1.0
// @description Ingest CSV, TSV and XLSX tables and answer questions about them.
// @BasePath /
func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
