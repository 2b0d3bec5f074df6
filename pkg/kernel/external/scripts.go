package external

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
)

// cylinderOutline returns the cylinder profile shifted by the y offset.
func cylinderOutline(a CylinderArgs) ([]segment.Point, error) {
	pts, err := coords.Cylinder(a.InnerRadius, a.OuterRadius, a.Height)
	if err != nil {
		return nil, err
	}
	return coords.ScaleAndOffset(pts, 1, a.YOffset), nil
}

// withSuffix replaces the extension of path.
func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// CubitPartName replaces hyphens, which the ACIS engine rejects in
// entity names.
func CubitPartName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// CubitCylinderJournal returns a Cubit journal drawing the cylinder
// profile, sweeping it about the global Y axis and saving a .cub file.
func CubitCylinderJournal(a CylinderArgs) (string, error) {
	pts, err := cylinderOutline(a)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("reset\n")
	for _, p := range pts {
		fmt.Fprintf(&b, "create vertex %s %s 0\n", num(p.X), num(p.Y))
	}
	n := len(pts)
	for i := range n {
		fmt.Fprintf(&b, "create curve vertex %d %d\n", i+1, (i+1)%n+1)
	}
	b.WriteString("create surface curve all\n")
	if math.Abs(a.RevolutionAngle) > 1e-8 {
		fmt.Fprintf(&b, "sweep surface 1 axis 0 0 0 0 1 0 angle %s merge\n", num(a.RevolutionAngle))
		b.WriteString("regularize volume 1\n")
	}
	fmt.Fprintf(&b, "volume 1 name %q\n", CubitPartName(a.PartName))
	fmt.Fprintf(&b, "save as '%s' overwrite\n", withSuffix(a.OutputFile, ".cub"))
	return b.String(), nil
}

// GmshCylinderScript returns a Gmsh geometry script for the cylinder: an
// OpenCASCADE rectangle revolved about the global Y axis.
func GmshCylinderScript(a CylinderArgs) (string, error) {
	pts, err := cylinderOutline(a)
	if err != nil {
		return "", err
	}
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		x0, y0 = math.Min(x0, p.X), math.Min(y0, p.Y)
		x1, y1 = math.Max(x1, p.X), math.Max(y1, p.Y)
	}
	var b strings.Builder
	b.WriteString("SetFactory(\"OpenCASCADE\");\n")
	fmt.Fprintf(&b, "Rectangle(1) = {%s, %s, 0, %s, %s};\n", num(x0), num(y0), num(x1-x0), num(y1-y0))
	if math.Abs(a.RevolutionAngle) > 1e-8 {
		rad := a.RevolutionAngle * math.Pi / 180
		fmt.Fprintf(&b, "Extrude {{0, 1, 0}, {0, 0, 0}, %s} { Surface{1}; }\n", num(rad))
	}
	return b.String(), nil
}

// CubitArgv returns the batch invocation of a Cubit journal.
func CubitArgv(command, journal string) []string {
	return []string{command, "-nographics", "-batch", "-nojournal", "-input", journal}
}

// GmshArgv returns the invocation writing a Gmsh script's geometry to a
// STEP file.
func GmshArgv(command, script, outputFile string) []string {
	return []string{command, script, "-0", "-o", withSuffix(outputFile, ".step")}
}
