package adapter

// Progress phases reported to a ProgressCallback.
const (
	PhaseLoading     = "loading"
	PhaseReading     = "reading"
	PhaseProgramming = "programming"
)

// Progress carries the state of a long-running flash operation.
type Progress struct {
	// Phase identifies the operation in progress
	Phase string

	// Current is the number of words handled so far
	Current int

	// Total is the number of words the operation covers
	Total int

	// Percentage is Current/Total as a value between 0 and 100
	Percentage float64
}

// ProgressCallback is invoked during executive loading and bulk
// read/program operations. Callbacks run on the calling goroutine and
// should return quickly.
type ProgressCallback func(p Progress)

func (a *Adapter) reportProgress(phase string, current, total int) {
	if a.cfg.progress == nil || total == 0 {
		return
	}
	a.cfg.progress(Progress{
		Phase:      phase,
		Current:    current,
		Total:      total,
		Percentage: float64(current) / float64(total) * 100,
	})
}
