package migration

import "time"

type OutcomeKind int

const (
	OutcomeMigrated OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMigrated:
		return "migrated"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the settled result of one record's task.
type Outcome struct {
	Index      int
	Name       string
	ImageURL   string
	Kind       OutcomeKind
	AssetID    string
	DocumentID string
	Reason     string
	Err        error
}

type Summary struct {
	Total    int
	Migrated int
	Skipped  int
	Failed   int
	Duration time.Duration
	Outcomes []Outcome
}

func summarize(outcomes []Outcome, elapsed time.Duration) Summary {
	s := Summary{Total: len(outcomes), Duration: elapsed, Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeMigrated:
			s.Migrated++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}
