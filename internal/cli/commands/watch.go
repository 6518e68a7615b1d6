package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/simal-lang/simal/internal/cli/config"
	"github.com/simal-lang/simal/internal/cli/ui"
	"github.com/simal-lang/simal/internal/compiler/cache"
	"github.com/simal-lang/simal/internal/compiler/logging"
	"github.com/simal-lang/simal/internal/watch"
	"go.uber.org/zap"
)

var watchVerbose bool

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Recompile .simal/.siml files on change",
		Long: `Watch a directory for changes to .simal/.siml files and recompile each
one as it changes, logging the outcome.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Show detailed output")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("cannot access %s: %w", root, err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ConfigError(err.Error(), color.NoColor))
		return fmt.Errorf("failed to load config: %w", err)
	}
	debounce := 100 * time.Millisecond
	lruSize := 256
	if cfg.Watch.Debounce > 0 {
		debounce = time.Duration(cfg.Watch.Debounce) * time.Millisecond
	}
	if cfg.Cache.LRUSize > 0 {
		lruSize = cfg.Cache.LRUSize
	}

	logger, err := logging.New(watchVerbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logging.Component(logger, "watch")

	lc, err := cache.New(lruSize, cfg.Cache.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to initialize lowering cache: %w", err)
	}

	recompiler := &watch.Recompiler{Cache: lc, Logger: log, MaxSimple: cfg.MaxSimple}

	onChange := func(files []string) error {
		for _, r := range recompiler.Recompile(files) {
			if r.OK {
				log.Info("recompiled", zap.String("file", r.File))
			} else {
				log.Error("recompile failed", zap.String("file", r.File), zap.Strings("errors", r.Errors))
			}
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

	banner := color.New(color.FgCyan, color.Bold)
	info := color.New(color.FgWhite)
	fmt.Println()
	banner.Println("simal watch")
	info.Printf("  watching %s\n", root)
	fmt.Println()
	color.New(color.FgYellow).Println("Press Ctrl+C to stop")
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nshutting down...")
	return fw.Stop()
}
