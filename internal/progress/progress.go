// Package progress carries calculation progress from calculators to the
// presentation layers (spinner, TUI) without either side knowing the other.
package progress

// ProgressUpdate is a single progress notification from one calculator.
type ProgressUpdate struct {
	// CalculatorIndex identifies the calculator among those running
	// concurrently.
	CalculatorIndex int
	// Value is the completed fraction in [0, 1].
	Value float64
}

// ProgressCallback receives the completed fraction of a calculation.
type ProgressCallback func(progress float64)

// ReportThreshold is the minimum progress delta between two reports.
// Smaller changes are dropped to keep the channel quiet.
const ReportThreshold = 0.01

// Reporter throttles a ProgressCallback so that it fires only when progress
// advanced by at least ReportThreshold, and always on completion.
type Reporter struct {
	cb   ProgressCallback
	last float64
}

// NewReporter wraps cb. A nil cb yields a Reporter that does nothing.
func NewReporter(cb ProgressCallback) *Reporter {
	return &Reporter{cb: cb, last: -1}
}

// Report forwards value to the callback when it moved enough since the last
// forwarded value. Values are clamped to [0, 1].
func (r *Reporter) Report(value float64) {
	if r == nil || r.cb == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	if value-r.last < ReportThreshold && value < 1 {
		return
	}
	if value == r.last {
		return
	}
	r.last = value
	r.cb(value)
}

// Step reports progress for a loop at iteration done out of total.
func (r *Reporter) Step(done, total uint64) {
	if total == 0 {
		r.Report(1)
		return
	}
	r.Report(float64(done) / float64(total))
}

// ChannelCallback returns a ProgressCallback that sends updates tagged with
// index on ch. Sends never block: when the channel is full the update is
// dropped, since a later one supersedes it. A nil channel yields a no-op.
func ChannelCallback(ch chan<- ProgressUpdate, index int) ProgressCallback {
	if ch == nil {
		return func(float64) {}
	}
	return func(v float64) {
		select {
		case ch <- ProgressUpdate{CalculatorIndex: index, Value: v}:
		default:
		}
	}
}
