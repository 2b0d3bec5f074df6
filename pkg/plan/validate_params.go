package plan

import (
	"fmt"
	"math"

	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
	"gonum.org/v1/gonum/spatial/r3"
)

// orthogonalTol bounds |x·z| for partition axes.
const orthogonalTol = 1e-8

// finding is shorthand for building a ValidationError.
func finding(id NodeID, sev ValidationSeverity, format string, args ...interface{}) ValidationError {
	return ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: sev}
}

// validateParameters checks the payload of every node against the ranges
// the build accepts.
func validateParameters(p *Plan) []ValidationError {
	var errs []ValidationError
	setNames := make(map[NodeID]map[string]bool)

	for _, id := range sortedIDs(p) {
		n := p.Nodes[id]
		switch d := n.Data.(type) {
		case GeometryData:
			errs = append(errs, validateGeometry(n.ID, d)...)
		case CylinderData:
			if d.InnerRadius < 0 || d.InnerRadius >= d.OuterRadius {
				errs = append(errs, finding(n.ID, SeverityError,
					"cylinder inner radius %g must be >= 0 and less than outer radius %g", d.InnerRadius, d.OuterRadius))
			}
			if d.Height <= 0 {
				errs = append(errs, finding(n.ID, SeverityError, "cylinder height %g must be positive", d.Height))
			}
			errs = append(errs, validateAngle(n.ID, d.RevolutionAngle)...)
		case SphereData:
			if d.InnerRadius < 0 || d.InnerRadius >= d.OuterRadius {
				errs = append(errs, finding(n.ID, SeverityError,
					"sphere inner radius %g must be >= 0 and less than outer radius %g", d.InnerRadius, d.OuterRadius))
			}
			if _, err := coords.ParseQuadrant(string(d.Quadrant)); err != nil {
				errs = append(errs, finding(n.ID, SeverityError, "%v", err))
			}
			errs = append(errs, validateAngle(n.ID, d.RevolutionAngle)...)
		case PartitionData:
			errs = append(errs, validatePartition(n.ID, d)...)
		case NodeSetData:
			if d.Name == "" {
				errs = append(errs, finding(n.ID, SeverityError, "node set has no name"))
			}
			if d.Tolerance < 0 {
				errs = append(errs, finding(n.ID, SeverityError, "node set tolerance %g must not be negative", d.Tolerance))
			}
			names := setNames[n.Target()]
			if names == nil {
				names = make(map[string]bool)
				setNames[n.Target()] = names
			}
			if d.Name != "" && names[d.Name] {
				errs = append(errs, finding(n.ID, SeverityError, "duplicate node set %q on the same part", d.Name))
			}
			names[d.Name] = true
		case MeshData:
			if d.GlobalSeed <= 0 {
				errs = append(errs, finding(n.ID, SeverityError, "global seed %g must be positive", d.GlobalSeed))
			}
		case ExportData:
			if d.OutputFile == "" {
				errs = append(errs, finding(n.ID, SeverityError, "export has no output file"))
			}
		case ImageData:
			if d.OutputFile == "" {
				errs = append(errs, finding(n.ID, SeverityError, "image has no output file"))
			}
			if d.Width <= 0 || d.Height <= 0 {
				errs = append(errs, finding(n.ID, SeverityError, "image size %dx%d must be positive", d.Width, d.Height))
			}
		case nil:
			errs = append(errs, finding(n.ID, SeverityError, "%s node has no data", n.Kind))
		}
	}
	return errs
}

func validateGeometry(id NodeID, d GeometryData) []ValidationError {
	var errs []ValidationError
	switch {
	case d.InputFile == "" && len(d.Points) == 0:
		errs = append(errs, finding(id, SeverityError, "geometry needs an input file or inline points"))
	case d.InputFile != "" && len(d.Points) > 0:
		errs = append(errs, finding(id, SeverityError, "geometry has both an input file and inline points"))
	case d.InputFile == "" && len(d.Points) < 3:
		errs = append(errs, finding(id, SeverityError, "geometry needs at least 3 inline points, got %d", len(d.Points)))
	}
	if d.UnitConversion == 0 {
		errs = append(errs, finding(id, SeverityError, "unit conversion must not be zero"))
	}
	if d.EuclideanDistance < 0 {
		errs = append(errs, finding(id, SeverityError, "euclidean distance %g must not be negative", d.EuclideanDistance))
	}
	if d.Read.HeaderLines < 0 {
		errs = append(errs, finding(id, SeverityError, "header lines %d must not be negative", d.Read.HeaderLines))
	}
	if d.Tolerance.Rtol < 0 || d.Tolerance.Atol < 0 {
		errs = append(errs, finding(id, SeverityError, "tolerances must not be negative"))
	}
	if d.Planar && d.RevolutionAngle != DefaultRevolutionAngle && d.RevolutionAngle != 0 {
		errs = append(errs, finding(id, SeverityWarning, "revolution angle %g is ignored for a planar part", d.RevolutionAngle))
	}
	if !d.Planar {
		errs = append(errs, validateAngle(id, d.RevolutionAngle)...)
	}
	return errs
}

func validateAngle(id NodeID, angle float64) []ValidationError {
	if math.Abs(angle) > 360 {
		return []ValidationError{finding(id, SeverityError, "revolution angle %g exceeds a full turn", angle)}
	}
	return nil
}

func validatePartition(id NodeID, d PartitionData) []ValidationError {
	var errs []ValidationError
	if r3.Norm(d.XVector) == 0 {
		errs = append(errs, finding(id, SeverityError, "partition xvector must not be zero"))
	}
	if r3.Norm(d.ZVector) == 0 {
		errs = append(errs, finding(id, SeverityError, "partition zvector must not be zero"))
	}
	if len(errs) == 0 {
		f := partition.DeriveFrame(d.XVector, d.ZVector)
		if !f.Orthogonal(orthogonalTol) {
			errs = append(errs, finding(id, SeverityError, "partition xvector %v and zvector %v are not orthogonal", d.XVector, d.ZVector))
		}
	}
	if d.BigNumber <= 0 {
		errs = append(errs, finding(id, SeverityError, "big number %g must be positive", d.BigNumber))
	}
	return errs
}

// validateCoverage warns about parts that produce nothing and about steps
// that override an earlier one.
func validateCoverage(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, part := range p.Parts() {
		steps := p.StepsFor(part.ID)
		if len(steps) == 0 {
			errs = append(errs, finding(part.ID, SeverityWarning, "part %q has no steps and produces no output", part.Name))
		}
		meshes := 0
		for _, s := range steps {
			if s.Kind == NodeMesh {
				meshes++
			}
		}
		if meshes > 1 {
			errs = append(errs, finding(part.ID, SeverityWarning, "part %q is meshed %d times; the last mesh step wins", part.Name, meshes))
		}
	}
	return errs
}
