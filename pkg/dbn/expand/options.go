package expand

import (
	"fmt"
	"strings"

	"github.com/matzehuels/dbnplot/pkg/errors"
)

// Default expansion values, matching the classic t-1, t, t+1 drawing.
const (
	DefaultSliceBefore  = 1
	DefaultSliceAfter   = 1
	DefaultNodeSpacing  = 1.0
	DefaultCenterSuffix = `\tau`
)

// MaxSlices bounds the number of slices a single expansion may draw.
const MaxSlices = 1000

// Options is an expansion request.
type Options struct {
	// SliceBefore is the number of slices shown before the anchor slice.
	SliceBefore int `json:"slice_before"`
	// SliceAfter is the number of slices shown after the anchor slice.
	SliceAfter int `json:"slice_after"`
	// NodeSpacing scales grid units; must be positive.
	NodeSpacing float64 `json:"node_spacing"`
	// CenterSuffix is written in front of slice offsets. Empty selects
	// absolute slice numbering.
	CenterSuffix string `json:"center_suffix"`
	// Dots selects the ellipsis markers.
	Dots DotsConfig `json:"dots"`
	// Margin is a fixed border around the canvas, in grid units.
	Margin float64 `json:"margin,omitempty"`
}

// DefaultOptions returns the options used when a caller specifies nothing.
func DefaultOptions() Options {
	return Options{
		SliceBefore:  DefaultSliceBefore,
		SliceAfter:   DefaultSliceAfter,
		NodeSpacing:  DefaultNodeSpacing,
		CenterSuffix: DefaultCenterSuffix,
		Dots:         DotsDisabled,
	}
}

// Validate checks the numeric preconditions. Violations carry
// [errors.ErrCodeInvalidParameter].
func (o Options) Validate() error {
	if o.SliceBefore < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "slice before must be >= 0, got %d", o.SliceBefore)
	}
	if o.SliceAfter < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "slice after must be >= 0, got %d", o.SliceAfter)
	}
	if o.SliceBefore >= MaxSlices || o.SliceAfter >= MaxSlices || o.AmountSlices() > MaxSlices {
		return errors.New(errors.ErrCodeInvalidParameter,
			"at most %d slices can be drawn, got %d before and %d after", MaxSlices, o.SliceBefore, o.SliceAfter)
	}
	if !(o.NodeSpacing > 0) {
		return errors.New(errors.ErrCodeInvalidParameter, "node spacing must be > 0, got %g", o.NodeSpacing)
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "margin must be >= 0, got %g", o.Margin)
	}
	if !o.Dots.valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown dots configuration %s", o.Dots)
	}
	return nil
}

// AmountSlices returns SliceBefore + SliceAfter + 1.
func (o Options) AmountSlices() int { return o.SliceBefore + o.SliceAfter + 1 }

// Centered reports whether labels are offsets around an anchor slice.
func (o Options) Centered() bool { return o.CenterSuffix != "" }

// Offset maps a slice index to its signed offset from the anchor slice.
func (o Options) Offset(sid int) int { return sid - o.SliceBefore }

// DotsConfig controls the ellipsis markers that signal a sequence continuing
// beyond the drawn slices.
type DotsConfig int

const (
	// DotsDisabled draws no markers.
	DotsDisabled DotsConfig = iota
	// DotsOnlyFirst draws a leading marker only.
	DotsOnlyFirst
	// DotsOnlyLast draws a trailing marker only.
	DotsOnlyLast
	// DotsBoth draws both markers.
	DotsBoth
	// DotsAuto always draws the trailing marker, and the leading marker only
	// in centered mode.
	DotsAuto
)

var dotsNames = [...]string{
	DotsDisabled:  "disabled",
	DotsOnlyFirst: "first",
	DotsOnlyLast:  "last",
	DotsBoth:      "both",
	DotsAuto:      "auto",
}

func (c DotsConfig) valid() bool { return c >= DotsDisabled && c <= DotsAuto }

// String returns the name accepted by [ParseDotsConfig].
func (c DotsConfig) String() string {
	if !c.valid() {
		return fmt.Sprintf("DotsConfig(%d)", int(c))
	}
	return dotsNames[c]
}

// ParseDotsConfig parses a dots configuration name. The empty string means
// [DotsDisabled].
func ParseDotsConfig(s string) (DotsConfig, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "disabled", "none", "off":
		return DotsDisabled, nil
	case "first", "only-first", "leading":
		return DotsOnlyFirst, nil
	case "last", "only-last", "trailing":
		return DotsOnlyLast, nil
	case "both":
		return DotsBoth, nil
	case "auto":
		return DotsAuto, nil
	default:
		return DotsDisabled, errors.New(errors.ErrCodeInvalidParameter,
			"unknown dots configuration %q (must be one of: disabled, first, last, both, auto)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c DotsConfig) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DotsConfig) UnmarshalText(b []byte) error {
	v, err := ParseDotsConfig(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Resolve reports which markers are drawn for the given display mode.
func (c DotsConfig) Resolve(centered bool) (leading, trailing bool) {
	switch c {
	case DotsDisabled:
		return false, false
	case DotsOnlyFirst:
		return true, false
	case DotsOnlyLast:
		return false, true
	case DotsBoth:
		return true, true
	case DotsAuto:
		return centered, true
	default:
		return false, false
	}
}
