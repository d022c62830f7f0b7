package engine

import (
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/linker"
	"github.com/roach88/chipsim/internal/registry"
)

// DefaultCacheSize is the default number of compiled programs kept in the
// engine's cache.
const DefaultCacheSize = 256

// Engine registers chip definitions and evaluates chip kinds.
type Engine struct {
	mu       sync.Mutex // serializes registration and relinking
	reg      *registry.Registry
	interp   *Interpreter
	programs *lru.Cache[string, ir.Program] // keyed by ir.DefinitionHash
	logger   *slog.Logger

	cacheSize int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLogger sets the logger used for compile and link diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCacheSize sets how many compiled programs are cached.
//
// Default: 256 (DefaultCacheSize)
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// New creates an Engine over reg. The registry is typically preloaded with
// registry.RegisterBuiltins.
func New(reg *registry.Registry, opts ...Option) (*Engine, error) {
	e := &Engine{
		reg:       reg,
		interp:    NewInterpreter(reg),
		logger:    slog.Default(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	cache, err := lru.New[string, ir.Program](e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("program cache: %w", err)
	}
	e.programs = cache
	return e, nil
}

// Registry returns the registry the engine evaluates against.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Register validates def and registers it as a compound kind named def.ID,
// then compiles and links it. Compile and link failures are logged and the
// kind falls back to interpretation; they do not fail registration.
//
// Every compound kind that uses def.ID is relinked afterwards.
func (e *Engine) Register(def *ir.ChipDefinition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kind, err := e.put(def)
	if err != nil {
		return err
	}
	e.link(kind)
	for _, dep := range e.reg.Dependents(kind) {
		e.link(dep)
	}
	return nil
}

// RegisterAll registers every definition before linking any of them, so
// definitions may reference each other in any order. Kinds are linked in
// dependency order. The first invalid definition aborts the call; kinds
// registered before it stay registered.
func (e *Engine) RegisterAll(defs []*ir.ChipDefinition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kinds := make([]ir.Kind, 0, len(defs))
	for _, def := range defs {
		kind, err := e.put(def)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	linked := make(map[ir.Kind]bool)
	for _, kind := range e.reg.DependencyOrder(kinds) {
		e.link(kind)
		linked[kind] = true
	}
	// Previously registered kinds that use the new ones.
	for _, kind := range kinds {
		for _, dep := range e.reg.Dependents(kind) {
			if !linked[dep] {
				e.link(dep)
				linked[dep] = true
			}
		}
	}
	return nil
}

// put validates def and stores it in the registry without linking.
func (e *Engine) put(def *ir.ChipDefinition) (ir.Kind, error) {
	kind := ir.Kind(def.ID)
	if !kind.Valid() || kind.IsBoundary() {
		return "", ir.Errorf(ir.ErrCodeInvalidEntry, kind, "invalid chip id %q", def.ID)
	}
	if existing, err := e.reg.Lookup(kind); err == nil && existing.Primitive {
		return "", ir.Errorf(ir.ErrCodeInvalidEntry, kind, "cannot replace primitive chip %s", kind)
	}
	if err := compiler.CheckDefinition(def); err != nil {
		return "", err
	}

	entry := registry.Entry{Definition: def, Display: def.Name, Color: def.Color}
	if err := e.reg.Register(kind, entry); err != nil {
		return "", err
	}
	e.logger.Debug("chip registered", "kind", kind, "sub_chips", len(def.Chips), "wires", len(def.Wires))
	return kind, nil
}

// link compiles and links a registered compound kind, caching the
// evaluator on its entry or clearing a stale one.
func (e *Engine) link(kind ir.Kind) {
	entry, err := e.reg.Lookup(kind)
	if err != nil || entry.Definition == nil {
		return
	}

	ev, err := e.CompileAndLink(entry.Definition)
	if err != nil {
		e.reg.ClearCompiled(kind)
		e.logger.Warn("chip compile failed, falling back to interpreter",
			"kind", kind,
			"error", err,
		)
		return
	}
	if err := e.reg.SetCompiled(kind, ev.Func(), ev.Code()); err != nil {
		e.logger.Warn("chip link failed", "kind", kind, "error", err)
		return
	}
	e.logger.Info("chip linked",
		"kind", kind,
		"instructions", len(ev.Program().Instructions),
	)
}

// CompileAndLink compiles def and links the program against the current
// registry, with def.ID excluded from the dispatch table.
//
// Compiled programs are cached by definition hash; linking always uses a
// fresh registry snapshot.
func (e *Engine) CompileAndLink(def *ir.ChipDefinition) (*linker.Evaluator, error) {
	kind := ir.Kind(def.ID)

	prog, err := e.Compile(def)
	if err != nil {
		return nil, err
	}
	ev, err := linker.LinkProgram(e.reg, prog, kind)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", kind, err)
	}
	return ev, nil
}

// Compile compiles def, consulting the program cache. Sub-chip inputs are
// always checked against the registry's current arities.
func (e *Engine) Compile(def *ir.ChipDefinition) (ir.Program, error) {
	kind := ir.Kind(def.ID)

	if err := compiler.CheckInputs(def, compiler.RegistryArity(e.reg)); err != nil {
		return ir.Program{}, fmt.Errorf("compile %s: %w", kind, err)
	}

	hash, err := ir.DefinitionHash(def)
	if err != nil {
		return ir.Program{}, fmt.Errorf("hash %s: %w", kind, err)
	}
	if prog, ok := e.programs.Get(hash); ok {
		e.logger.Debug("program cache hit", "kind", kind, "hash", hash)
		return prog, nil
	}

	prog, err := compiler.Compile(def)
	if err != nil {
		return ir.Program{}, fmt.Errorf("compile %s: %w", kind, err)
	}
	e.programs.Add(hash, prog)
	return prog, nil
}

// CachedPrograms returns the number of programs in the cache.
func (e *Engine) CachedPrograms() int {
	return e.programs.Len()
}

// Evaluate computes kind's outputs, using compiled evaluators where linked.
func (e *Engine) Evaluate(kind ir.Kind, inputs []bool) ([]bool, error) {
	return e.interp.Evaluate(kind, inputs)
}

// EvaluateDynamic computes kind's outputs by expanding every compound level.
func (e *Engine) EvaluateDynamic(kind ir.Kind, inputs []bool) ([]bool, error) {
	return e.interp.EvaluateDynamic(kind, inputs)
}
