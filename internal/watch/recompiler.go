package watch

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/simal-lang/simal/internal/compiler/cache"
	"github.com/simal-lang/simal/internal/compiler/lexer"
	"github.com/simal-lang/simal/internal/compiler/lowering"
	"github.com/simal-lang/simal/internal/compiler/parser"
)

// FileResult is the outcome of recompiling a single source file.
type FileResult struct {
	File   string
	OK     bool
	Errors []string
	Full   map[string]interface{}
	Simple *lowering.OrderedMap
}

// Recompiler re-tokenizes, re-parses, and re-lowers changed files,
// storing successful lowerings in a LoweringCache keyed by content hash
// so unchanged files served by `simal serve` skip re-parsing entirely.
type Recompiler struct {
	Cache     *cache.LoweringCache
	Logger    *zap.Logger
	MaxSimple bool
}

// Recompile processes a batch of changed file paths, returning one
// FileResult per file in the same order.
func (r *Recompiler) Recompile(files []string) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, r.recompileOne(f))
	}
	return results
}

func (r *Recompiler) recompileOne(path string) FileResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{File: path, OK: false, Errors: []string{err.Error()}}
	}

	key := r.Cache.Key(string(source))
	ctx := context.Background()
	if entry, ok := r.Cache.Get(ctx, key); ok {
		r.Logger.Debug("cache hit", zap.String("file", path))
		return FileResult{File: path, OK: true, Full: entry.Full, Simple: entry.Simple}
	}

	tokens, lexErrs := lexer.New(string(source)).ScanTokens()
	if len(lexErrs) > 0 {
		msgs := make([]string, len(lexErrs))
		for i, e := range lexErrs {
			msgs[i] = e.Error()
		}
		r.Logger.Info("lex failed", zap.String("file", path), zap.Int("errors", len(lexErrs)))
		return FileResult{File: path, OK: false, Errors: msgs}
	}

	sys, err := parser.Parse(tokens)
	if err != nil {
		r.Logger.Info("parse failed", zap.String("file", path), zap.Error(err))
		return FileResult{File: path, OK: false, Errors: []string{err.Error()}}
	}

	full := lowering.Full(sys)
	simple := lowering.Simple(sys, lowering.Options{MaxSimple: r.MaxSimple})

	if err := r.Cache.Set(ctx, key, &cache.Entry{Full: full, Simple: simple, SourceLen: len(source)}); err != nil {
		r.Logger.Warn("cache write failed", zap.Error(err))
	}

	r.Logger.Info("recompiled", zap.String("file", path))
	return FileResult{File: path, OK: true, Full: full, Simple: simple}
}
