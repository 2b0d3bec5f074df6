// Package external drives third-party meshing engines (Abaqus, Cubit,
// Gmsh) as subprocesses. It does not implement kernel.Kernel: the engines
// own their geometry databases, so this package only assembles command
// lines and journal scripts and runs them.
//
// Abaqus is driven through its journal scripts
// ("abaqus cae -noGui <script> -- <flags>"). Cubit and Gmsh receive a
// generated journal (.jou) or geometry (.geo) file.
package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'turtle.external'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.external")
}

var (
	// ErrCommandNotFound is returned when none of the candidate executables
	// is on PATH.
	ErrCommandNotFound = errors.New("external: could not find any executable on PATH")
	// ErrUnknownEngine is returned for an engine name other than abaqus,
	// cubit or gmsh.
	ErrUnknownEngine = errors.New("external: unknown engine")
	// ErrUnsupported is returned when an engine has no implementation of a
	// subcommand.
	ErrUnsupported = errors.New("external: subcommand not supported by engine")
)

// Engine names an external meshing engine.
type Engine string

const (
	Abaqus Engine = "abaqus"
	Cubit  Engine = "cubit"
	Gmsh   Engine = "gmsh"
)

// DefaultCommands lists the executables searched for each engine, in order.
var DefaultCommands = map[Engine][]string{
	Abaqus: {"abq2024", "abq2023", "abaqus"},
	Cubit:  {"cubit"},
	Gmsh:   {"gmsh"},
}

// ParseEngine returns the engine named s.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(s)); e {
	case Abaqus, Cubit, Gmsh:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

// FindCommand returns the path of the first candidate found on PATH.
func FindCommand(options []string) (string, error) {
	for _, opt := range options {
		if path, err := exec.LookPath(opt); err == nil {
			tracer().Debugf("found %s at %s", opt, path)
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in: %s", ErrCommandNotFound, strings.Join(options, ", "))
}

// Runner runs a command line to completion.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs commands with os/exec. Nil writers discard output.
type ExecRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner passing output through to the process's
// stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes argv and blocks until it exits or ctx is done.
func (r *ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("external: empty command line")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	tracer().Infof("running %s", strings.Join(argv, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("external: %s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

// num formats a float the shortest way that round-trips.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func nums(vs ...float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = num(v)
	}
	return out
}
