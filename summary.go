package html2png

import "time"

// Run status values reported by Summary.Status.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Summary aggregates the outcomes of one run.
// Outcomes are stored in job order, one per job, including jobs that were
// never attempted because the run stopped early.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Outcomes  []Outcome
}

// Total returns the number of jobs in the run.
func (s *Summary) Total() int {
	return len(s.Outcomes)
}

// Succeeded counts jobs that produced an image.
func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Attempted counts jobs the run actually processed, successful or not.
func (s *Summary) Attempted() int {
	n := 0
	for _, o := range s.Outcomes {
		if !o.Skipped {
			n++
		}
	}
	return n
}

// Failed counts jobs that produced no image.
func (s *Summary) Failed() int {
	return s.Total() - s.Succeeded()
}

// Failures returns the failed outcomes in job order.
func (s *Summary) Failures() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Status distinguishes full success from partial and total failure.
// An empty run is ok.
func (s *Summary) Status() string {
	switch succeeded := s.Succeeded(); {
	case succeeded == s.Total():
		return StatusOK
	case succeeded > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
