package cmd

import (
	"fmt"
	"os"

	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/external"
	"github.com/kyle-brindley/turbo-turtle/pkg/version"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

// Backend names accepted by --backend.
const backendSdfx = "sdfx"

var (
	backend        string
	abaqusCommands []string
	cubitCommands  []string
	gmshCommands   []string
	scriptDir      string
	verbose        bool
)

// traceKeys are the tracers raised to debug level by --verbose.
var traceKeys = []string{
	"turtle.segment", "turtle.coords", "turtle.partition", "turtle.kernel",
	"turtle.sdfx", "turtle.external", "turtle.recipe",
	"turtle.build", "turtle.export", "turtle.render",
}

var rootCmd = &cobra.Command{
	Use:   "turbo-turtle",
	Short: "Solid body modeling and turtle-shell partitioning",
	Long: `turbo-turtle - axisymmetric and planar part modeling

Draws parts from (r, z) coordinate files or primitive shapes, partitions
them into the turtle-shell pattern of a cube centered on a point, meshes
them and exports Abaqus orphan mesh input files, STL files and images.

Parts are built with the sdfx kernel by default. The abaqus, cubit and
gmsh back ends run the external program instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			for _, key := range traceKeys {
				tracing.Select(key).SetTraceLevel(tracing.LevelDebug)
			}
		}
		if backend != backendSdfx {
			if _, err := external.ParseEngine(backend); err != nil {
				return fmt.Errorf("--backend must be one of sdfx, abaqus, cubit, gmsh: %w", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Version = version.Version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&backend, "backend", backendSdfx, "Back end software: sdfx, abaqus, cubit or gmsh")
	pf.StringSliceVar(&abaqusCommands, "abaqus-command", external.DefaultCommands[external.Abaqus], "Abaqus executable options")
	pf.StringSliceVar(&cubitCommands, "cubit-command", external.DefaultCommands[external.Cubit], "Cubit executable options")
	pf.StringSliceVar(&gmshCommands, "gmsh-command", external.DefaultCommands[external.Gmsh], "Gmsh executable options")
	pf.StringVar(&scriptDir, "script-dir", "", "Directory of the Abaqus journal scripts")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Trace at debug level")
}

// isExternal reports whether the command runs on an external engine.
func isExternal() bool {
	return backend != backendSdfx
}

// dispatcher resolves the external engine selected by --backend.
func dispatcher() (*external.Dispatcher, error) {
	e, err := external.ParseEngine(backend)
	if err != nil {
		return nil, err
	}
	candidates := map[external.Engine][]string{
		external.Abaqus: abaqusCommands,
		external.Cubit:  cubitCommands,
		external.Gmsh:   gmshCommands,
	}[e]
	return external.NewDispatcher(e, candidates, scriptDir)
}
