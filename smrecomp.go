// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package smrecomp translates Maxwell guest shader programs to host shader
// text.
//
// A translation decodes the guest instruction words, builds a typed SSA
// program, optimizes it and emits it through one or more backends:
//   - GLASM, NVIDIA assembly for the NV_gpu_program5 family
//   - GLSL, the OpenGL Shading Language 4.30 and later
//
// Example usage:
//
//	env := &maxwell.WordEnvironment{Words: words, ShaderStage: ir.StageFragment}
//	result, err := smrecomp.Translate(env, smrecomp.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Outputs[smrecomp.BackendGLSL].Source)
//
// A failed translation returns a *Failure naming the stage that failed and
// no output at all. Callers substitute a fallback shader.
package smrecomp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/smrecomp/glasm"
	"github.com/gogpu/smrecomp/glsl"
	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/maxwell"
	"github.com/gogpu/smrecomp/opt"
	"github.com/gogpu/smrecomp/profile"
	"github.com/gogpu/smrecomp/regalloc"
)

// LevelTrace is the slog level of per-instruction tracing.
const LevelTrace = maxwell.LevelTrace

// ErrInvalidProgram is reported when a built program fails validation.
var ErrInvalidProgram = errors.New("invalid program")

// Backend selects an output language.
type Backend uint8

const (
	BackendGLASM Backend = iota
	BackendGLSL
	numBackends
)

var backendNames = [numBackends]string{
	BackendGLASM: "glasm",
	BackendGLSL:  "glsl",
}

func (b Backend) String() string {
	if b < numBackends {
		return backendNames[b]
	}
	return fmt.Sprintf("Backend(%d)", uint8(b))
}

// ParseBackend returns the backend named s.
func ParseBackend(s string) (Backend, bool) {
	for b, name := range backendNames {
		if name == s {
			return Backend(b), true
		}
	}
	return 0, false
}

// Stage is a state of the translation pipeline.
type Stage uint8

const (
	StageIdle Stage = iota
	StageDecoding
	StageBuilding
	StageAllocating
	StageEmitting
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:       "idle",
	StageDecoding:   "decoding",
	StageBuilding:   "building",
	StageAllocating: "allocating",
	StageEmitting:   "emitting",
	StageDone:       "done",
	StageFailed:     "failed",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Failure reports a translation that halted. Err is the typed reason:
// a *maxwell.UnknownInstructionError, an *ir.NotImplementedError or
// regalloc.ErrAllocationExhausted, possibly wrapped.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("smrecomp: %s failed: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Options configures a translation.
type Options struct {
	// Backends lists the outputs to generate. Empty means every backend.
	Backends []Backend

	// Profile describes the host capabilities. Zero value fields take
	// the defaults of profile.Default.
	Profile profile.Profile

	// Bindings maps guest constant buffers to host binding slots.
	Bindings profile.Bindings

	// Decode bounds and shapes instruction decoding.
	Decode maxwell.Options

	// SkipOptimization emits the program as built.
	SkipOptimization bool

	// GLASM and GLSL hold per backend options.
	GLASM glasm.Options
	GLSL  glsl.Options

	// Logger receives stage transitions. Nil uses slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns options emitting every backend for the default
// profile.
func DefaultOptions() Options {
	return Options{
		Profile: profile.Default(),
		GLASM:   glasm.DefaultOptions(),
		GLSL:    glsl.DefaultOptions(),
	}
}

// Output is the text generated by one backend.
type Output struct {
	Source     string
	Bindings   []profile.Binding
	Extensions []string
	Registers  regalloc.Stats
}

// Result is a successful translation.
type Result struct {
	// Program is the optimized IR, kept for dumps and introspection.
	Program *ir.Program
	Outputs map[Backend]Output
}

// Translator runs one translation at a time and tracks its stage.
type Translator struct {
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	stage Stage
}

// NewTranslator creates an idle translator.
func NewTranslator(opts Options) *Translator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Decode.Logger == nil {
		opts.Decode.Logger = logger
	}
	if len(opts.Backends) == 0 {
		opts.Backends = []Backend{BackendGLASM, BackendGLSL}
	}
	return &Translator{opts: opts, logger: logger}
}

// Stage returns the current pipeline stage.
func (t *Translator) Stage() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stage
}

func (t *Translator) enter(s Stage) {
	t.mu.Lock()
	t.stage = s
	t.mu.Unlock()
	t.logger.Debug("translation stage", slog.String("stage", s.String()))
}

func (t *Translator) fail(s Stage, err error) error {
	t.mu.Lock()
	t.stage = StageFailed
	t.mu.Unlock()
	t.logger.Warn("translation failed",
		slog.String("stage", s.String()),
		slog.String("error", err.Error()))
	return &Failure{Stage: s, Err: err}
}

// Translate runs the whole pipeline over the program served by env. The
// translator may be reused; each call starts from StageIdle.
func (t *Translator) Translate(env maxwell.Environment) (*Result, error) {
	t.enter(StageIdle)

	// Decoding and building interleave per word. The error kind tells
	// which of the two failed.
	t.enter(StageDecoding)
	p, err := maxwell.Translate(env, t.opts.Decode)
	if err != nil {
		if errors.Is(err, maxwell.ErrUnknownInstruction) {
			return nil, t.fail(StageDecoding, err)
		}
		return nil, t.fail(StageBuilding, err)
	}

	t.enter(StageBuilding)
	if !t.opts.SkipOptimization {
		opt.Run(p)
	} else {
		opt.CollectInfo(p)
	}
	if errs, err := ir.Validate(p); err != nil || len(errs) > 0 {
		if err == nil {
			err = fmt.Errorf("%w: %w", ErrInvalidProgram, errs[0])
		}
		return nil, t.fail(StageBuilding, err)
	}

	// Each backend allocates while it walks the program, so allocation
	// failures surface during emission.
	t.enter(StageAllocating)
	t.enter(StageEmitting)
	outputs := make(map[Backend]Output, len(t.opts.Backends))
	for _, b := range t.opts.Backends {
		out, err := t.emit(p, b)
		if err != nil {
			return nil, t.fail(StageEmitting, err)
		}
		outputs[b] = out
	}

	t.enter(StageDone)
	return &Result{Program: p, Outputs: outputs}, nil
}

func (t *Translator) emit(p *ir.Program, b Backend) (Output, error) {
	prof := t.opts.Profile
	if prof.GLSLVersion == 0 {
		prof.GLSLVersion = profile.DefaultGLSLVersion
	}
	switch b {
	case BackendGLASM:
		source, info, err := glasm.Compile(p, prof, t.opts.Bindings, t.opts.GLASM)
		if err != nil {
			return Output{}, err
		}
		return Output{
			Source:     source,
			Bindings:   info.Bindings,
			Extensions: info.Extensions,
			Registers:  info.Registers,
		}, nil
	case BackendGLSL:
		source, info, err := glsl.Compile(p, prof, t.opts.Bindings, t.opts.GLSL)
		if err != nil {
			return Output{}, err
		}
		return Output{
			Source:     source,
			Bindings:   info.Bindings,
			Extensions: info.UsedExtensions,
			Registers:  info.Registers,
		}, nil
	}
	return Output{}, fmt.Errorf("unknown backend %s", b)
}

// Translate translates one program with a fresh Translator.
func Translate(env maxwell.Environment, opts Options) (*Result, error) {
	return NewTranslator(opts).Translate(env)
}

// BatchResult is the outcome of one program of a batch.
type BatchResult struct {
	Result *Result
	Err    error
}

// TranslateAll translates independent programs on up to workers
// goroutines. Results are in the order of envs. Each program fails on its
// own; a failure does not stop the batch.
//
// Cancelling ctx stops scheduling new programs. Programs already running
// finish, and the batch returns ctx.Err() without results.
func TranslateAll(ctx context.Context, envs []maxwell.Environment, opts Options, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, len(envs))

	results := make([]BatchResult, len(envs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := Translate(envs[i], opts)
				results[i] = BatchResult{Result: res, Err: err}
			}
		}()
	}

	var err error
schedule:
	for i := range envs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break schedule
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}
