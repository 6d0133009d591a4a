package api

// Status is the outcome reported in a run record.
type Status string

// Success is the only outcome a completed run reports.
const Success Status = "success"

// TimeLayout is the layout of RunRecord.CompletionTime.
const TimeLayout = "2006-01-02 15:04:05"

// RunRecord is the summary of one instance run. It is printed once, as the
// last line of standard output, for the manager to parse.
type RunRecord struct {
	Status Status `json:"status"`

	ContainerId string `json:"container_id"`
	ManagerId   string `json:"manager_id"`

	// SpawnTime is passed through verbatim from the manager.
	SpawnTime string `json:"spawn_time"`
	// CompletionTime is taken from the container clock, see TimeLayout.
	CompletionTime string `json:"completion_time"`
}
