package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"cuelang.org/go/cue/token"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/engine"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No chip files found
	ErrCodeLoadFailed  = "E004" // Chip file could not be parsed
	ErrCodeNotFound    = "E005" // Path or chip kind not found
	ErrCodeBuildFailed = "E006" // Chip definition rejected by the registry
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeTooNew      = "E008" // File version newer than supported
	ErrCodeDatabase    = "E009" // Revision database error
)

// LoadError represents an error that occurred while loading chip files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadChips reads every chip definition under path.
func LoadChips(path string) (*compiler.LoadResult, *LoadError) {
	result, err := compiler.LoadPath(path)
	if err != nil {
		return nil, convertLoadError(err, path)
	}
	return result, nil
}

// convertLoadError maps loader failures onto CLI error codes, keeping the
// CUE position when there is one.
func convertLoadError(err error, path string) *LoadError {
	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	case errors.Is(err, compiler.ErrNoChips):
		return &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no chip files found in %s", path)}
	case errors.Is(err, compiler.ErrFileTooNew):
		return &LoadError{Code: ErrCodeTooNew, Message: err.Error()}
	case errors.As(err, &compileErr):
		return &LoadError{Code: ErrCodeLoadFailed, Message: compileErr.Message, Pos: compileErr.Pos}
	case errors.As(err, new(*fs.PathError)):
		return &LoadError{Code: ErrCodeScanError, Message: err.Error()}
	default:
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
}

// buildEngine loads path and registers its chips on a fresh engine with
// the builtin gates. The returned error is always a *LoadError.
func buildEngine(path string, formatter *OutputFormatter, cfg *Config) (*engine.Engine, *compiler.LoadResult, *LoadError) {
	result, loadErr := LoadChips(path)
	if loadErr != nil {
		return nil, nil, loadErr
	}
	formatter.VerboseLog("Loaded %d chip(s) from %d file(s)", len(result.Chips), len(result.Files))

	eng, err := engine.New(registry.NewWithBuiltins(),
		engine.WithLogger(formatter.Logger()),
		engine.WithCacheSize(cfg.CacheSize),
	)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	if err := eng.RegisterAll(result.Chips); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	}
	return eng, result, nil
}

// lookupCompound returns kind's entry, or a LoadError when it is unknown.
func lookupCompound(eng *engine.Engine, kind string) (registry.Entry, *LoadError) {
	entry, err := eng.Registry().Lookup(ir.Kind(kind))
	if err != nil {
		return registry.Entry{}, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return entry, nil
}

// defaultKind picks the chip a single-chip file describes.
func defaultKind(result *compiler.LoadResult) (string, *LoadError) {
	if len(result.Chips) == 1 {
		return result.Chips[0].ID, nil
	}
	return "", &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%d chips loaded, use --kind to pick one", len(result.Chips)),
	}
}
