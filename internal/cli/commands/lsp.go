package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simal-lang/simal/internal/compiler/logging"
	"github.com/simal-lang/simal/internal/lsp"
)

var lspVerbose bool

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the SiMAL Language Server, which recompiles open documents and
publishes diagnostics over JSON-RPC on stdin/stdout. It is typically
started automatically by an editor, not run directly.`,
		RunE: runLSP,
	}

	cmd.Flags().BoolVarP(&lspVerbose, "verbose", "v", false, "Show detailed output")
	return cmd
}

func runLSP(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(lspVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	srv := lsp.NewServer(logging.Component(logger, "lsp"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return srv.Run(ctx)
}
