package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tabqa/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the document tools over MCP stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  - ingest_file: ingest a table readable by the server
  - list_documents: list stored documents
  - query_document: answer a question against one document
  - delete_document: delete a document

Logs go to stderr so stdout stays reserved for the protocol.

Example:
  STORE_BACKEND=memory tabqa mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, syncLog := setupLogger(cfg, cmd.ErrOrStderr())
	defer syncLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(log)

	server := mcp.NewServer(mcp.Config{Name: cfg.ServiceName}, a.docs, a.queries, log)
	log.Info("mcp_server_starting", "store_backend", cfg.StoreBackend)
	if err := server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
