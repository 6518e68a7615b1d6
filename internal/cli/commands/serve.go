package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/simal-lang/simal/internal/cli/config"
	"github.com/simal-lang/simal/internal/cli/ui"
	"github.com/simal-lang/simal/internal/compiler/cache"
	"github.com/simal-lang/simal/internal/compiler/logging"
	"github.com/simal-lang/simal/internal/server"
	"github.com/simal-lang/simal/internal/watch"
	"go.uber.org/zap"
)

var (
	serveAddr        string
	serveToken       string
	serveJWTSecret   string
	serveSessionTTL  time.Duration
	serveVerbose     bool
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Serve the latest compiled lowerings of a watched tree over HTTP",
		Long: `Watch a directory for .simal/.siml changes and serve the latest compiled
lowering of each file over HTTP, pushing websocket notifications on every
recompile. Intended for a browser-based preview or editor integration.`,
		Args: cobra.ExactArgs(1),
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default from config, or :4777)")
	cmd.Flags().StringVar(&serveToken, "token", "", "Bootstrap bearer token required to authenticate (empty disables auth)")
	cmd.Flags().StringVar(&serveJWTSecret, "jwt-secret", "", "Secret used to sign session tokens (required with --token)")
	cmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", time.Hour, "Session token lifetime")
	cmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Show detailed output")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	root := args[0]
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("cannot access %s: %w", root, err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ConfigError(err.Error(), color.NoColor))
		return fmt.Errorf("failed to load config: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	if addr == "" {
		addr = ":4777"
	}

	logger, err := logging.New(serveVerbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logging.Component(logger, "serve")

	lruSize, redisAddr := 256, cfg.Cache.RedisAddr
	if cfg.Cache.LRUSize > 0 {
		lruSize = cfg.Cache.LRUSize
	}
	debounce := 100 * time.Millisecond
	if cfg.Watch.Debounce > 0 {
		debounce = time.Duration(cfg.Watch.Debounce) * time.Millisecond
	}

	lc, err := cache.New(lruSize, redisAddr)
	if err != nil {
		return fmt.Errorf("failed to initialize lowering cache: %w", err)
	}
	recompiler := &watch.Recompiler{Cache: lc, Logger: log, MaxSimple: cfg.MaxSimple}

	var auth *server.Authenticator
	switch {
	case serveToken != "" && serveJWTSecret != "":
		auth, err = server.NewAuthenticator(serveToken, []byte(serveJWTSecret), serveSessionTTL)
		if err != nil {
			return fmt.Errorf("failed to initialize authenticator: %w", err)
		}
	case cfg.Serve.TokenHash != "" && serveJWTSecret != "":
		auth = server.NewAuthenticatorFromHash(cfg.Serve.TokenHash, []byte(serveJWTSecret), serveSessionTTL)
	case serveToken != "":
		return fmt.Errorf("--jwt-secret is required when --token is set")
	}

	store := server.NewStore()
	srv := server.New(store, auth, log)

	onChange := func(files []string) error {
		for _, r := range recompiler.Recompile(files) {
			name := strings.TrimSuffix(filepath.Base(r.File), filepath.Ext(r.File))
			srv.Notify(name, r)
		}
		return nil
	}

	fw, err := watch.NewFileWatcher(root, debounce, nil, log, onChange)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer fw.Stop()

	httpServer := &http.Server{Addr: addr, Handler: srv}

	banner := color.New(color.FgCyan, color.Bold)
	info := color.New(color.FgWhite)
	fmt.Println()
	banner.Println("simal serve")
	info.Printf("  listening on %s\n", addr)
	info.Printf("  watching %s\n", root)
	fmt.Println()
	color.New(color.FgYellow).Println("Press Ctrl+C to stop")
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-sigCh:
	}

	fmt.Println("\nshutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("error shutting down preview server", zap.Error(err))
	}
	return httpServer.Shutdown(ctx)
}
