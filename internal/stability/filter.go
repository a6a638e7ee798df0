// Package stability de-flickers per-window classifications by requiring
// N consecutive qualifying predictions before a sign is reported stable.
package stability

// State describes where the filter is in its confirmation cycle.
type State int

const (
	// StateEmpty: no qualifying prediction seen since creation or the
	// last confidence reset.
	StateEmpty State = iota
	// StateFilling: a run is building and no sign has been confirmed yet.
	StateFilling
	// StateCandidate: a sign is already confirmed and a different label
	// is accruing a fresh run.
	StateCandidate
	// StateStable: the current run has reached the stability window.
	StateStable
)

// Decision is the per-frame output of the filter.
type Decision struct {
	// Sign is the confirmed sign when stable, otherwise the incoming label.
	Sign string
	// IsStable is true once the current label has held for a full window.
	IsStable bool
	// IsNewSign fires exactly once, on the frame where the confirmed sign
	// first changes. Holding a sign keeps re-confirming without re-firing.
	IsNewSign bool
}

// Filter tracks the run length of the current qualifying label. One
// instance per session; not safe for concurrent use.
type Filter struct {
	window    int
	threshold float64

	runLabel string
	runLen   int
	current  string // last emitted stable sign
}

// New creates a filter requiring window consecutive predictions at or
// above threshold.
func New(window int, threshold float64) *Filter {
	if window < 1 {
		window = 1
	}
	return &Filter{window: window, threshold: threshold}
}

// Update feeds one classification into the filter.
//
// A prediction below the threshold does not qualify: the run resets but
// the last confirmed sign is kept, so a transient low-confidence frame
// never forgets what the user was signing.
func (f *Filter) Update(label string, confidence float64) Decision {
	if confidence < f.threshold {
		f.runLabel = ""
		f.runLen = 0
		return Decision{Sign: label}
	}

	if label == f.runLabel {
		if f.runLen < f.window {
			f.runLen++
		}
	} else {
		f.runLabel = label
		f.runLen = 1
	}

	if f.runLen < f.window {
		return Decision{Sign: label}
	}

	d := Decision{Sign: f.runLabel, IsStable: true}
	if f.runLabel != f.current {
		d.IsNewSign = true
		f.current = f.runLabel
	}
	return d
}

// StableSign returns the last confirmed sign, or "" if none yet.
func (f *Filter) StableSign() string { return f.current }

// State reports the filter's phase, mainly for diagnostics.
func (f *Filter) State() State {
	switch {
	case f.runLen >= f.window:
		return StateStable
	case f.runLen == 0:
		return StateEmpty
	case f.current != "" && f.runLabel != f.current:
		return StateCandidate
	default:
		return StateFilling
	}
}
