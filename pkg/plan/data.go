package plan

import (
	"github.com/kyle-brindley/turbo-turtle/pkg/coords"
	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Parts
// ---------------------------------------------------------------------------

// GeometryData builds a part from 2D coordinates, either read from
// InputFile or given inline as Points.
type GeometryData struct {
	InputFile         string            `json:"input_file,omitempty"`
	Points            []segment.Point   `json:"points,omitempty"`
	Read              coords.ReadOptions `json:"read"`
	UnitConversion    float64           `json:"unit_conversion"`
	EuclideanDistance float64           `json:"euclidean_distance"`
	Tolerance         segment.Tolerance `json:"tolerance"`
	Planar            bool              `json:"planar"`
	RevolutionAngle   float64           `json:"revolution_angle"` // degrees, 0 = axisymmetric 2D
	YOffset           float64           `json:"y_offset"`
}

func (GeometryData) nodeData() {}

// NewGeometryData returns geometry settings with the command line defaults.
func NewGeometryData() GeometryData {
	return GeometryData{
		Read:              coords.ReadOptions{Delimiter: coords.DefaultDelimiter},
		UnitConversion:    coords.DefaultUnitConversion,
		EuclideanDistance: segment.DefaultEuclideanDistance,
		RevolutionAngle:   DefaultRevolutionAngle,
		YOffset:           coords.DefaultYOffset,
	}
}

// CylinderData is a hollow right circular cylinder.
type CylinderData struct {
	InnerRadius     float64 `json:"inner_radius"`
	OuterRadius     float64 `json:"outer_radius"`
	Height          float64 `json:"height"`
	RevolutionAngle float64 `json:"revolution_angle"`
	YOffset         float64 `json:"y_offset"`
}

func (CylinderData) nodeData() {}

// SphereData is a hollow sphere centered on the revolution axis at YOffset.
type SphereData struct {
	InnerRadius     float64         `json:"inner_radius"`
	OuterRadius     float64         `json:"outer_radius"`
	Quadrant        coords.Quadrant `json:"quadrant"`
	RevolutionAngle float64         `json:"revolution_angle"`
	YOffset         float64         `json:"y_offset"`
}

func (SphereData) nodeData() {}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

// PartitionData places the turtle-shell partition.
type PartitionData struct {
	Center    r3.Vec  `json:"center"`
	XVector   r3.Vec  `json:"xvector"`
	ZVector   r3.Vec  `json:"zvector"`
	BigNumber float64 `json:"big_number"`
}

func (PartitionData) nodeData() {}

// NewPartitionData returns a partition about the origin in the global frame.
func NewPartitionData() PartitionData {
	return PartitionData{
		XVector:   r3.Vec{X: 1},
		ZVector:   r3.Vec{Z: 1},
		BigNumber: DefaultBigNumber,
	}
}

// NodeSetData names the mesh nodes lying on a plane. A zero Normal selects
// the single node nearest to Point.
type NodeSetData struct {
	Name      string  `json:"name"`
	Point     r3.Vec  `json:"point"`
	Normal    r3.Vec  `json:"normal"`
	Tolerance float64 `json:"tolerance"`
}

func (NodeSetData) nodeData() {}

// MeshData seeds the part mesh.
type MeshData struct {
	GlobalSeed  float64 `json:"global_seed"`
	ElementType string  `json:"element_type,omitempty"`
}

func (MeshData) nodeData() {}

// ExportData writes the part's orphan mesh. Parts exporting to the same
// file share it.
type ExportData struct {
	OutputFile  string `json:"output_file"`
	ElementType string `json:"element_type,omitempty"`
	Assembly    bool   `json:"assembly"`
}

func (ExportData) nodeData() {}

// ImageData renders the part's mesh.
type ImageData struct {
	OutputFile string  `json:"output_file"`
	XAngle     float64 `json:"x_angle"`
	YAngle     float64 `json:"y_angle"`
	ZAngle     float64 `json:"z_angle"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

func (ImageData) nodeData() {}
