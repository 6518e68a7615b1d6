package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/simal-lang/simal/internal/cli/config"
	"github.com/simal-lang/simal/internal/cli/ui"
	"github.com/simal-lang/simal/internal/compiler/cache"
	"github.com/simal-lang/simal/internal/compiler/logging"
	"github.com/simal-lang/simal/internal/compiler/parser"
	"github.com/simal-lang/simal/internal/history"
	"github.com/simal-lang/simal/internal/utils"
	"github.com/simal-lang/simal/internal/watch"
	"go.uber.org/zap"
)

var (
	buildJSONOnly   bool
	buildSimpleOnly bool
	buildMaxSimple  bool
	buildErrorsJSON bool
	buildVerbose    bool
	buildOutputDir  string
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <path>...",
		Short: "Compile .simal/.siml source to JSON",
		Long: `Compile one or more SiMAL source files (or directories of them) to JSON.

By default both the full and simple lowerings are written:
  <name>.json         - the full, lossless lowering
  <name>_simple.json  - the flattened, prompt-oriented lowering

At most one of --json, --simple, --max-simple narrows this to a single
output file.`,
		Example: `  simal build app.simal
  simal build --simple app.simal
  simal build --max-simple ./services
  simal build --errors-json app.simal`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBuild,
	}

	cmd.Flags().BoolVar(&buildJSONOnly, "json", false, "Emit only the full JSON lowering")
	cmd.Flags().BoolVar(&buildSimpleOnly, "simple", false, "Emit only the simple JSON lowering")
	cmd.Flags().BoolVar(&buildMaxSimple, "max-simple", false, "Emit only the max-simple JSON lowering")
	cmd.Flags().BoolVar(&buildErrorsJSON, "errors-json", false, "Print structural errors as JSON instead of to stderr")
	cmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Show detailed build output")
	cmd.Flags().StringVarP(&buildOutputDir, "output-dir", "o", "", "Directory to write JSON output (default: alongside each source file)")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	exclusive := 0
	for _, set := range []bool{buildJSONOnly, buildSimpleOnly, buildMaxSimple} {
		if set {
			exclusive++
		}
	}
	if exclusive > 1 {
		return fmt.Errorf("at most one of --json, --simple, --max-simple may be set")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ConfigError(err.Error(), color.NoColor))
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(buildVerbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logging.Component(logger, "build")

	outputDir := buildOutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	maxSimple := buildMaxSimple
	if !maxSimple {
		maxSimple = cfg.MaxSimple
	}

	files, err := resolveInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .simal/.siml files found in the given paths")
	}

	lc, err := cache.New(256, "")
	if err != nil {
		return fmt.Errorf("failed to initialize lowering cache: %w", err)
	}
	recompiler := &watch.Recompiler{Cache: lc, Logger: log, MaxSimple: maxSimple}

	var hist *history.Store
	if h, err := history.Open(cfg.History.Driver, cfg.History.DSN); err == nil {
		hist = h
		defer hist.Close()
	} else if buildVerbose {
		log.Warn("history store unavailable", zap.Error(err))
	}

	results := recompiler.Recompile(files)

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)

	var bar *ui.ProgressBar
	if !buildVerbose && !buildErrorsJSON && len(files) > 1 {
		bar = ui.NewProgressBar(os.Stderr, ui.ProgressBarOptions{Total: len(files), Message: "compiling"})
	}

	var failed []watch.FileResult
	for _, r := range results {
		if hist != nil {
			run := history.Run{Timestamp: time.Now(), InputPath: r.File, Success: r.OK, ErrorCount: len(r.Errors)}
			if len(r.Errors) > 0 {
				run.FirstError = r.Errors[0]
			}
			hist.Record(run)
		}

		if bar != nil {
			bar.Add(1)
		}

		if !r.OK {
			failed = append(failed, r)
			continue
		}

		if err := writeOutputs(r, outputDir, buildJSONOnly, buildSimpleOnly, buildMaxSimple); err != nil {
			return err
		}
		if buildVerbose {
			infoColor.Printf("  compiled %s\n", r.File)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if len(failed) > 0 {
		if buildErrorsJSON {
			printErrorsJSON(failed)
		} else {
			printErrorsTerminal(failed)
		}
		return fmt.Errorf("compilation failed for %d file(s)", len(failed))
	}

	successColor.Printf("compiled %d file(s)\n", len(results))
	return nil
}

func resolveInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if info.IsDir() {
			found, err := utils.FindSourceFiles(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
			}
			files = append(files, found...)
			continue
		}
		files = append(files, arg)
	}
	return files, nil
}

func writeOutputs(r watch.FileResult, outputDir string, jsonOnly, simpleOnly, maxSimple bool) error {
	base := strings.TrimSuffix(filepath.Base(r.File), filepath.Ext(r.File))
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(r.File)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	writeFull := !simpleOnly
	writeSimple := !jsonOnly
	if maxSimple {
		writeFull, writeSimple = false, true
	}

	if writeFull {
		if err := writeJSON(filepath.Join(dir, base+".json"), r.Full); err != nil {
			return err
		}
	}
	if writeSimple {
		if err := writeJSON(filepath.Join(dir, base+"_simple.json"), r.Simple); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printErrorsJSON(failed []watch.FileResult) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(struct {
		Success bool               `json:"success"`
		Files   []watch.FileResult `json:"files"`
	}{Success: false, Files: failed})
}

func printErrorsTerminal(failed []watch.FileResult) {
	for _, r := range failed {
		for _, e := range r.Errors {
			fmt.Fprint(os.Stderr, ui.BuildError(r.File+": "+e, verbSuggestions(e), color.NoColor))
		}
	}
}

// verbSuggestions returns close HTTP-verb spellings when msg is a mistyped-
// verb parse error, so a build failure surfaces the same correction a
// client would see from the LSP's diagnostics.
func verbSuggestions(msg string) []string {
	idx := strings.Index(msg, " is not a recognized HTTP verb")
	if idx <= 0 {
		return nil
	}
	typo := msg[:idx]
	if i := strings.LastIndexAny(typo, " :"); i != -1 {
		typo = typo[i+1:]
	}
	return ui.FindSimilar(typo, parser.HTTPVerbs(), nil)
}
