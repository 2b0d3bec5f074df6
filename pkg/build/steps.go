package build

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kyle-brindley/turbo-turtle/pkg/export"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel"
	"github.com/kyle-brindley/turbo-turtle/pkg/kernel/sdfx"
	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/kyle-brindley/turbo-turtle/pkg/render"
)

// partition cuts the part into turtle-shell regions. Cuts are best effort;
// failures other than missed cuts and empty regions are logged and kept in
// the cut report.
func (b *builder) partition(d plan.PartitionData) error {
	g, err := partition.TurtleShell(d.Center, d.XVector, d.ZVector, d.BigNumber)
	if err != nil {
		return err
	}
	s, report := b.k.Partition(b.pr.Solid, g)
	b.pr.Cuts.Merge(report)
	if err := report.Err(); err != nil {
		tracer().Infof("part %s: some partition cuts failed: %v", b.pr.Name, err)
	}
	tracer().Debugf("part %s: %d of %d cuts succeeded, %d regions",
		b.pr.Name, report.Succeeded(), len(report.Outcomes), s.Regions())
	b.pr.Solid = s
	b.pr.Mesh = nil
	return nil
}

func (b *builder) image(d plan.ImageData) error {
	if err := b.mesh(); err != nil {
		return err
	}
	path := b.opts.path(d.OutputFile)
	opts := render.ImageOptions{
		XAngle: d.XAngle, YAngle: d.YAngle, ZAngle: d.ZAngle,
		Width: d.Width, Height: d.Height,
	}
	if err := render.SaveSVG(path, b.pr.Mesh, opts); err != nil {
		return err
	}
	b.pr.Outputs = append(b.pr.Outputs, path)
	return nil
}

// exportEntry is one part queued for an output file, as it was when the
// export step ran.
type exportEntry struct {
	part        *PartResult
	mesh        *kernel.Mesh
	nodeSets    []export.NodeSet
	elementType string
}

// exportGroup is one output file and the parts written to it.
type exportGroup struct {
	path     string
	assembly bool
	entries  []exportEntry
}

// exportGroups collects export steps by output file, in first-use order.
type exportGroups struct {
	order []*exportGroup
	byKey map[string]*exportGroup
}

func newExportGroups() *exportGroups {
	return &exportGroups{byKey: make(map[string]*exportGroup)}
}

func (e *exportGroups) add(path string, assembly bool, pr *PartResult) {
	g, ok := e.byKey[path]
	if !ok {
		g = &exportGroup{path: path}
		e.byKey[path] = g
		e.order = append(e.order, g)
	}
	g.assembly = g.assembly || assembly
	entry := exportEntry{
		part:        pr,
		mesh:        pr.Mesh,
		nodeSets:    append([]export.NodeSet(nil), pr.NodeSets...),
		elementType: pr.ElementType,
	}
	for i := range g.entries {
		if g.entries[i].part == pr {
			g.entries[i] = entry
			return
		}
	}
	g.entries = append(g.entries, entry)
}

// write writes every group and returns the paths written. Parts that
// failed after queueing an export are left out. A write failure is
// recorded on each part of the group.
func (e *exportGroups) write(opts Options, modelName string) []string {
	var written []string
	for _, g := range e.order {
		var parts []exportEntry
		for _, entry := range g.entries {
			if entry.part.Err == nil {
				parts = append(parts, entry)
			}
		}
		if len(parts) == 0 {
			continue
		}
		var err error
		if strings.EqualFold(filepath.Ext(g.path), ".stl") {
			err = writeSTL(g.path, parts)
		} else {
			err = writeAbaqus(g.path, parts, g.assembly, opts, modelName)
		}
		if err != nil {
			for _, entry := range parts {
				entry.part.Err = fmt.Errorf("part %s: export %s: %w", entry.part.Name, g.path, err)
			}
			tracer().Errorf("export %s: %v", g.path, err)
			continue
		}
		written = append(written, g.path)
	}
	return written
}

func writeSTL(path string, parts []exportEntry) error {
	m := &kernel.Mesh{}
	for _, entry := range parts {
		m.Append(entry.mesh)
	}
	return sdfx.SaveSTL(path, m)
}

func writeAbaqus(path string, parts []exportEntry, assembly bool, opts Options, modelName string) error {
	out := make([]export.Part, len(parts))
	for i, entry := range parts {
		out[i] = export.Part{
			Name:        entry.part.Name,
			Mesh:        entry.mesh,
			ElementType: entry.elementType,
			NodeSets:    entry.nodeSets,
		}
	}
	return export.WriteAbaqusFile(path, out, export.Options{
		ModelName:     modelName,
		Assembly:      assembly,
		WeldTolerance: opts.WeldTolerance,
	})
}
