package external

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dispatcher runs subcommands on one engine.
type Dispatcher struct {
	Engine    Engine
	Command   string // resolved executable
	ScriptDir string // Abaqus journal script directory
	WorkDir   string // where generated Cubit/Gmsh scripts are written
	Runner    Runner
}

// NewDispatcher resolves the engine executable from candidates (or the
// engine's DefaultCommands when empty) and returns a dispatcher running
// commands with an ExecRunner.
func NewDispatcher(e Engine, candidates []string, scriptDir string) (*Dispatcher, error) {
	if len(candidates) == 0 {
		candidates = DefaultCommands[e]
	}
	command, err := FindCommand(candidates)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		Engine:    e,
		Command:   command,
		ScriptDir: scriptDir,
		WorkDir:   os.TempDir(),
		Runner:    NewExecRunner(),
	}, nil
}

func (d *Dispatcher) run(ctx context.Context, argv []string) error {
	return d.Runner.Run(ctx, argv)
}

func (d *Dispatcher) unsupported(sub string) error {
	return fmt.Errorf("%w: %s %s", ErrUnsupported, d.Engine, sub)
}

// abaqusOnly runs argv when the engine is Abaqus.
func (d *Dispatcher) abaqusOnly(ctx context.Context, sub string, argv func() []string) error {
	if d.Engine != Abaqus {
		return d.unsupported(sub)
	}
	return d.run(ctx, argv())
}

// writeScript stores a generated script in the work directory.
func (d *Dispatcher) writeScript(name, text string) (string, error) {
	path := filepath.Join(d.WorkDir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("external: writing %s: %w", path, err)
	}
	return path, nil
}

// Geometry runs the geometry subcommand.
func (d *Dispatcher) Geometry(ctx context.Context, a GeometryArgs) error {
	return d.abaqusOnly(ctx, "geometry", func() []string {
		return AbaqusGeometry(d.Command, d.ScriptDir, a)
	})
}

// Cylinder runs the cylinder subcommand. All three engines support it.
func (d *Dispatcher) Cylinder(ctx context.Context, a CylinderArgs) error {
	switch d.Engine {
	case Abaqus:
		return d.run(ctx, AbaqusCylinder(d.Command, d.ScriptDir, a))
	case Cubit:
		text, err := CubitCylinderJournal(a)
		if err != nil {
			return err
		}
		journal, err := d.writeScript(CubitPartName(a.PartName)+".jou", text)
		if err != nil {
			return err
		}
		return d.run(ctx, CubitArgv(d.Command, journal))
	case Gmsh:
		text, err := GmshCylinderScript(a)
		if err != nil {
			return err
		}
		script, err := d.writeScript(a.PartName+".geo", text)
		if err != nil {
			return err
		}
		return d.run(ctx, GmshArgv(d.Command, script, a.OutputFile))
	}
	return d.unsupported("cylinder")
}

// Sphere runs the sphere subcommand.
func (d *Dispatcher) Sphere(ctx context.Context, a SphereArgs) error {
	return d.abaqusOnly(ctx, "sphere", func() []string {
		return AbaqusSphere(d.Command, d.ScriptDir, a)
	})
}

// Partition runs the partition subcommand.
func (d *Dispatcher) Partition(ctx context.Context, a PartitionArgs) error {
	return d.abaqusOnly(ctx, "partition", func() []string {
		return AbaqusPartition(d.Command, d.ScriptDir, a)
	})
}

// Sets runs the sets subcommand.
func (d *Dispatcher) Sets(ctx context.Context, a SetsArgs) error {
	return d.abaqusOnly(ctx, "sets", func() []string {
		return AbaqusSets(d.Command, d.ScriptDir, a)
	})
}

// Mesh runs the mesh subcommand.
func (d *Dispatcher) Mesh(ctx context.Context, a MeshArgs) error {
	return d.abaqusOnly(ctx, "mesh", func() []string {
		return AbaqusMesh(d.Command, d.ScriptDir, a)
	})
}

// Merge runs the merge subcommand.
func (d *Dispatcher) Merge(ctx context.Context, a MergeArgs) error {
	return d.abaqusOnly(ctx, "merge", func() []string {
		return AbaqusMerge(d.Command, d.ScriptDir, a)
	})
}

// Export runs the export subcommand.
func (d *Dispatcher) Export(ctx context.Context, a ExportArgs) error {
	return d.abaqusOnly(ctx, "export", func() []string {
		return AbaqusExport(d.Command, d.ScriptDir, a)
	})
}

// Image runs the image subcommand.
func (d *Dispatcher) Image(ctx context.Context, a ImageArgs) error {
	return d.abaqusOnly(ctx, "image", func() []string {
		return AbaqusImage(d.Command, d.ScriptDir, a)
	})
}
