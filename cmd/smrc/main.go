// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command smrc translates Maxwell shader binaries to GLASM or GLSL.
//
// Usage:
//
//	smrc [options] <program.bin>...
//
// Examples:
//
//	smrc -stage fragment shader.bin             # GLSL to stdout
//	smrc -backend glasm -o shader.asm shader.bin
//	smrc -backend all -workers 8 *.bin          # writes <input>.glsl and <input>.glasm
//
// Environment variables SMRC_BACKEND, SMRC_LOG_LEVEL, SMRC_INT64,
// SMRC_FLOAT16 and SMRC_WORKERS override the defaults of the matching
// flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"
	"github.com/xyproto/env/v2"

	"github.com/gogpu/smrecomp"
	"github.com/gogpu/smrecomp/glasm"
	"github.com/gogpu/smrecomp/glsl"
	"github.com/gogpu/smrecomp/internal/mapfile"
	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/maxwell"
	"github.com/gogpu/smrecomp/profile"
)

var (
	output      = flag.String("o", "", "output file (default: stdout, single input only)")
	backendName = flag.String("backend", env.Str("SMRC_BACKEND", "glsl"), "output backend: glasm, glsl or all")
	stageName   = flag.String("stage", "fragment", "pipeline stage of the program")
	profilePath = flag.String("profile", "", "YAML profile and bindings file")
	int64Flag   = flag.Bool("int64", env.Bool("SMRC_INT64"), "allow 64-bit integer types")
	float16Flag = flag.Bool("float16", env.Bool("SMRC_FLOAT16"), "allow native half precision")
	glslVersion = flag.Int("glsl-version", 0, "GLSL version (default: profile or 450)")
	start       = flag.Uint("start", 0, "byte offset of the first instruction")
	maxInsts    = flag.Int("max", 0, "maximum number of words to read (0: no limit)")
	raw         = flag.Bool("raw", false, "input has no scheduling control words")
	localSize   = flag.String("local-size", "1,1,1", "compute workgroup size x,y,z")
	noOpt       = flag.Bool("no-opt", false, "skip IR optimization")
	dump        = flag.Bool("dump", false, "print the IR to stderr")
	debug       = flag.Bool("debug", false, "annotate output with IR instructions")
	stats       = flag.Bool("stats", false, "print register usage to stderr")
	workers     = flag.Int("workers", env.Int("SMRC_WORKERS", runtime.NumCPU()), "concurrent translations")
	logLevel    = flag.String("log-level", env.Str("SMRC_LOG_LEVEL", "warn"), "log level: trace, debug, info, warn or error")
	logJSON     = flag.Bool("log-json", false, "log as JSON")
	version     = flag.Bool("version", false, "print version")
)

const smrcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("smrc version %s\n", smrcVersion)
		atexit.Exit(0)
	}

	logger, err := newLogger(*logLevel, *logJSON)
	if err != nil {
		fatal(err)
	}
	slog.SetDefault(logger)

	inputs := flag.Args()
	if len(inputs) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		atexit.Exit(1)
	}
	if *output != "" && len(inputs) > 1 {
		fatal(fmt.Errorf("-o requires a single input"))
	}

	opts, err := buildOptions(logger)
	if err != nil {
		fatal(err)
	}

	envs := make([]maxwell.Environment, len(inputs))
	for i, path := range inputs {
		prog, err := openProgram(path)
		if err != nil {
			fatal(err)
		}
		envs[i] = prog
	}

	results, err := smrecomp.TranslateAll(context.Background(), envs, opts, *workers)
	if err != nil {
		fatal(err)
	}

	failed := false
	for i, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inputs[i], r.Err)
			failed = true
			continue
		}
		if *dump {
			fmt.Fprintf(os.Stderr, "# %s\n%s", inputs[i], ir.Dump(r.Result.Program))
		}
		if err := writeOutputs(inputs[i], r.Result, opts.Backends, len(inputs) > 1); err != nil {
			fatal(err)
		}
		if *stats {
			printStats(inputs[i], r.Result)
		}
	}
	if failed {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	atexit.Exit(1)
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "trace":
		l = smrecomp.LevelTrace
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	handlerOpts := &slog.HandlerOptions{Level: l}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)), nil
}

func buildOptions(logger *slog.Logger) (smrecomp.Options, error) {
	opts := smrecomp.DefaultOptions()
	opts.Logger = logger
	opts.SkipOptimization = *noOpt
	opts.Decode.MaxInstructions = *maxInsts
	opts.Decode.NoSchedulingWords = *raw

	backends, err := parseBackends(*backendName)
	if err != nil {
		return opts, err
	}
	opts.Backends = backends

	if *profilePath != "" {
		cfg, err := profile.LoadFile(*profilePath)
		if err != nil {
			return opts, err
		}
		opts.Profile = cfg.Profile
		opts.Bindings = cfg.Bindings
	}
	if *int64Flag {
		opts.Profile.SupportInt64 = true
	}
	if *float16Flag {
		opts.Profile.SupportFloat16 = true
	}
	if *glslVersion != 0 {
		opts.Profile.GLSLVersion = *glslVersion
	}
	if err := opts.Profile.Validate(); err != nil {
		return opts, err
	}

	if *debug {
		opts.GLASM.WriterFlags |= glasm.WriterFlagDebugInfo
		opts.GLSL.WriterFlags |= glsl.WriterFlagDebugInfo
	}
	return opts, nil
}

func parseBackends(name string) ([]smrecomp.Backend, error) {
	if name == "all" {
		return []smrecomp.Backend{smrecomp.BackendGLASM, smrecomp.BackendGLSL}, nil
	}
	b, ok := smrecomp.ParseBackend(name)
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return []smrecomp.Backend{b}, nil
}

func parseLocalSize(s string) ([3]uint32, error) {
	var size [3]uint32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return size, fmt.Errorf("invalid local size %q", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return size, fmt.Errorf("invalid local size %q: %w", s, err)
		}
		size[i] = uint32(n)
	}
	return size, nil
}

// openProgram maps path and serves its words in place. The mapping is
// released at exit.
func openProgram(path string) (maxwell.Environment, error) {
	stage, ok := ir.ParseStage(*stageName)
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", *stageName)
	}
	size, err := parseLocalSize(*localSize)
	if err != nil {
		return nil, err
	}
	f, err := mapfile.Open(path)
	if err != nil {
		return nil, err
	}
	atexit.Register(func() { _ = f.Close() })
	return &maxwell.BytesEnvironment{
		Data:        f.Data,
		Start:       uint32(*start), //nolint:gosec // G115: offsets beyond 4 GiB are not addressable
		ShaderStage: stage,
		LocalSize:   size,
	}, nil
}

func writeOutputs(input string, result *smrecomp.Result, backends []smrecomp.Backend, perInput bool) error {
	for _, b := range backends {
		source := result.Outputs[b].Source
		switch {
		case *output != "" && len(backends) == 1:
			if err := os.WriteFile(*output, []byte(source), 0o644); err != nil {
				return err
			}
		case *output != "" || perInput:
			base := *output
			if base == "" {
				base = input
			}
			if err := os.WriteFile(base+"."+b.String(), []byte(source), 0o644); err != nil {
				return err
			}
		default:
			if _, err := os.Stdout.WriteString(source); err != nil {
				return err
			}
		}
	}
	return nil
}

func printStats(input string, result *smrecomp.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stderr)
	t.SetTitle(input)
	t.AppendHeader(table.Row{"Backend", "Short", "Long", "Spill", "Condition", "Bindings", "Extensions"})
	for _, b := range []smrecomp.Backend{smrecomp.BackendGLASM, smrecomp.BackendGLSL} {
		out, ok := result.Outputs[b]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{
			b, out.Registers.Short, out.Registers.Long, out.Registers.Spill, out.Registers.ConditionCode,
			len(out.Bindings), strings.Join(out.Extensions, " "),
		})
	}
	t.Render()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: smrc [options] <program.bin>...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  smrc -stage vertex shader.bin           GLSL to stdout\n")
	fmt.Fprintf(os.Stderr, "  smrc -backend glasm -o out.asm in.bin   GLASM to a file\n")
	fmt.Fprintf(os.Stderr, "  smrc -backend all -stats *.bin          Both backends next to each input\n")
}
