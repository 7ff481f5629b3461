package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envdoctor/internal/mcp"
)

// newMCPCmd creates the mcp command.
func newMCPCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the checks to AI assistants over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout.

The server exposes the check_environment tool and the envdoctor://config
resource. Stdout carries JSON-RPC only, so logs go to
~/.envdoctor/logs/envdoctor.log.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{loggingAnnotation: loggingMCP},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ws, err := ro.workspace()
			if err != nil {
				return err
			}
			srv, err := mcp.NewServer(ws, ws.Root)
			if err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}
}
