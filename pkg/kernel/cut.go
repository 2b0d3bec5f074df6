package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrCutMissed marks a cut whose tool does not intersect the part. This
	// is the expected outcome for diagonal cuts on partial bodies such as a
	// quarter sphere.
	ErrCutMissed = errors.New("kernel: cut does not intersect the part")
	// ErrEmptyRegion marks a partition region that holds no material.
	ErrEmptyRegion = errors.New("kernel: partition region is empty")
)

// CutOutcome is the result of one attempted partition cut.
type CutOutcome struct {
	Cut string
	Err error
}

// OK reports whether the cut succeeded.
func (o CutOutcome) OK() bool {
	return o.Err == nil
}

func (o CutOutcome) String() string {
	if o.OK() {
		return o.Cut + ": ok"
	}
	return fmt.Sprintf("%s: %v", o.Cut, o.Err)
}

// CutReport collects the outcomes of a best-effort partition.
type CutReport struct {
	Outcomes []CutOutcome
}

// Record appends the outcome of one cut.
func (r *CutReport) Record(cut string, err error) {
	r.Outcomes = append(r.Outcomes, CutOutcome{Cut: cut, Err: err})
	if err != nil {
		tracer().Debugf("cut %s failed: %v", cut, err)
	}
}

// Succeeded returns the number of successful cuts.
func (r CutReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed returns the outcomes of the cuts that did not succeed.
func (r CutReport) Failed() []CutOutcome {
	var out []CutOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Unexpected returns the failures that are not ErrCutMissed or
// ErrEmptyRegion.
func (r CutReport) Unexpected() []CutOutcome {
	var out []CutOutcome
	for _, o := range r.Failed() {
		if !errors.Is(o.Err, ErrCutMissed) && !errors.Is(o.Err, ErrEmptyRegion) {
			out = append(out, o)
		}
	}
	return out
}

// Err joins the unexpected failures, or returns nil.
func (r CutReport) Err() error {
	var errs []error
	for _, o := range r.Unexpected() {
		errs = append(errs, fmt.Errorf("%s: %w", o.Cut, o.Err))
	}
	return errors.Join(errs...)
}

// Merge appends the outcomes of o.
func (r *CutReport) Merge(o CutReport) {
	r.Outcomes = append(r.Outcomes, o.Outcomes...)
}
