// Package coords reads 2D boundary coordinates and builds the profiles of
// the parametric primitives (cylinder, sphere).
package coords

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kyle-brindley/turbo-turtle/pkg/segment"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'turtle.coords'.
func tracer() tracing.Trace {
	return tracing.Select("turtle.coords")
}

// Default reader and transformation settings.
const (
	DefaultDelimiter      = ","
	DefaultHeaderLines    = 0
	DefaultUnitConversion = 1.0
	DefaultYOffset        = 0.0
)

var (
	// ErrColumns is returned for rows that do not hold exactly two values.
	ErrColumns = errors.New("coords: expected 2 columns")
	// ErrNoData is returned when a file holds no coordinate rows.
	ErrNoData = errors.New("coords: no coordinate rows")
	// ErrParse is returned for values that are not numbers.
	ErrParse = errors.New("coords: value is not a number")
)

// ReadOptions configures Read. The zero value reads comma separated values
// without a header.
type ReadOptions struct {
	Delimiter   string
	HeaderLines int
}

func (o ReadOptions) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// splitRow splits a row by delim. Whitespace delimiters collapse runs of
// blanks.
func splitRow(line, delim string) []string {
	if strings.TrimSpace(delim) == "" {
		return strings.Fields(line)
	}
	fields := strings.Split(line, delim)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// Read parses an [N, 2] table of coordinates. Header lines are skipped and
// blank lines are ignored.
func Read(r io.Reader, opts ReadOptions) ([]segment.Point, error) {
	scanner := bufio.NewScanner(r)
	delim := opts.delimiter()
	var out []segment.Point
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= opts.HeaderLines {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := splitRow(line, delim)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d has %d", ErrColumns, lineNo, len(fields))
		}
		var p [2]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q", ErrParse, lineNo, f)
			}
			p[i] = v
		}
		out = append(out, segment.Point{X: p[0], Y: p[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("coords: read: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// ReadFile reads coordinates from the named file.
func ReadFile(path string, opts ReadOptions) ([]segment.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coords: %w", err)
	}
	defer f.Close()
	pts, err := Read(f, opts)
	if err != nil {
		tracer().Errorf("reading %s: %v", path, err)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tracer().Debugf("read %d coordinates from %s", len(pts), path)
	return pts, nil
}

// ScaleAndOffset multiplies every coordinate by unitConversion and then shifts
// it vertically by yOffset. The input is not modified.
func ScaleAndOffset(pts []segment.Point, unitConversion, yOffset float64) []segment.Point {
	out := make([]segment.Point, len(pts))
	for i, p := range pts {
		out[i] = segment.Point{X: p.X * unitConversion, Y: p.Y*unitConversion + yOffset}
	}
	return out
}
