package errors

import (
	"math"
	"regexp"
)

// MaxCanvasSize bounds canvas width and height.
const MaxCanvasSize = 20000

var scenarioIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateScenarioID accepts scenario short codes such as "s0020". Ids are
// interpolated into API paths, so anything outside [A-Za-z0-9_-] is
// rejected.
func ValidateScenarioID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScenario, "scenario id cannot be empty")
	}
	if !scenarioIDPattern.MatchString(id) {
		return New(ErrCodeInvalidScenario, "invalid scenario id %q", id)
	}
	return nil
}

// ValidateDimensions checks that a canvas is finite, positive and within
// MaxCanvasSize.
func ValidateDimensions(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		switch {
		case math.IsNaN(d.v) || math.IsInf(d.v, 0):
			return New(ErrCodeInvalidDimensions, "%s must be a finite number", d.name)
		case d.v <= 0:
			return New(ErrCodeInvalidDimensions, "%s must be positive, got %g", d.name, d.v)
		case d.v > MaxCanvasSize:
			return New(ErrCodeInvalidDimensions, "%s too large (max %d), got %g", d.name, MaxCanvasSize, d.v)
		}
	}
	return nil
}
