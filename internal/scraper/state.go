package scraper

// State is the position of a run in Started -> Simulating -> Completed.
type State int

const (
	Started State = iota
	Simulating
	Completed
)

func (s State) String() string {
	switch s {
	case Started:
		return "started"
	case Simulating:
		return "simulating"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}
