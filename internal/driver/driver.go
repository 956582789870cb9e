// Package driver wires together the core pipeline described by §2's data
// flow: textual IR -> type check -> borrow check -> passes -> a Module
// ready for an emitter. It is the ambient plumbing cmd/kansoc and
// internal/langserver both sit on top of.
package driver

import (
	"fmt"

	"kansomid/internal/borrow"
	"kansomid/internal/ir"
	"kansomid/internal/passes"
	"kansomid/internal/textir"
	"kansomid/internal/typecheck"
	"kansomid/internal/types"
)

// Options controls which optional passes Compile runs after the mandatory
// type/borrow checks, matching §4.7's "optional per-function
// transformation order" framing.
type Options struct {
	Prune       bool // reachable-functions pruning (§4.7)
	ConstFold   bool // whole-function constant propagation + rewrite (§4.7)
	Optimize    bool // per-block canonicalize -> to_ssa -> lvn -> dce (§4.1)
	InsertDrops bool // automatic free insertion (§4.7)
	Logger      func(string)
}

// DefaultOptions runs the full recommended pipeline.
func DefaultOptions() Options {
	return Options{Prune: true, ConstFold: true, Optimize: true, InsertDrops: true}
}

// Result is everything downstream consumers (an emitter, a CLI, an LSP
// handler) need: the validated Module and the per-function typing
// environment §6 promises the emitter.
type Result struct {
	Module *ir.Module
	Envs   map[string]typecheck.Env
}

// Compile runs the full pipeline over textual IR source: parse, validate,
// type check, borrow check, then the requested passes. It returns the
// first error encountered, leaving no partial Module behind, per §7's
// propagation policy.
func Compile(filename, source, moduleName string, opts Options) (*Result, error) {
	mod, err := textir.Parse(filename, source, moduleName)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return Check(mod, opts)
}

// Check runs the post-parse pipeline (validate, type check, borrow check,
// passes) over an already-built Module — the entry point for callers that
// construct IR directly (tests, or a future non-textual frontend).
func Check(mod *ir.Module, opts Options) (*Result, error) {
	if err := Validate(mod); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	registry := types.NewRegistry()
	for _, st := range mod.UserTypes {
		registry.AddUserType(st)
	}

	checker := typecheck.NewChecker(registry, mod)
	envs, err := checker.CheckModule()
	if err != nil {
		return nil, fmt.Errorf("type check: %w", err)
	}

	if err := borrow.CheckModule(mod.Functions); err != nil {
		return nil, fmt.Errorf("borrow check: %w", err)
	}

	if opts.Prune {
		passes.RemoveUnusedFunctions(mod, opts.Logger)
	}

	for name, fn := range mod.Functions {
		if opts.ConstFold {
			passes.ConstantFold(fn)
		}
		if opts.Optimize {
			keep := keepSetFor(fn)
			passes.LocalOptimize(fn, keep)
		}
		if opts.InsertDrops {
			if err := passes.InsertDrops(fn); err != nil {
				return nil, fmt.Errorf("drop insertion in %q: %w", name, err)
			}
		}
	}

	return &Result{Module: mod, Envs: envs}, nil
}

// keepSetFor protects a function's declared return names from DCE in
// every block: the value a RET names may have been computed in an
// earlier block than the one that returns it, and per-block DCE has no
// visibility into that.
func keepSetFor(fn *ir.Function) map[string]bool {
	keep := make(map[string]bool, len(fn.Returns))
	for _, r := range fn.Returns {
		keep[r] = true
	}
	return keep
}
