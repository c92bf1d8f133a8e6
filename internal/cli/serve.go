package cli

import (
	"github.com/spf13/cobra"

	"github.com/scribeworks/redline/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the redline diff and review engine.

Endpoints:
  GET  /health            — Health check
  POST /api/diff          — Compute diffs for a content pair
  POST /api/proposal      — Ingest an edit proposal, open a review session
  POST /api/confirm       — Confirm one paragraph
  POST /api/confirm_all   — Resolve a session to applied
  POST /api/reject        — Resolve a session to discarded
  GET  /api/session       — Current render model for a document
  GET  /api/ws            — WebSocket channel for editors and review UIs`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = loadedConfig.Listen
	}
	srv := api.New(addr, loadedConfig.ParagraphGap, loadedConfig.ContextChars)
	return srv.ListenAndServe()
}
