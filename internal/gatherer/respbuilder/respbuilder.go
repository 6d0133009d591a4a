package respbuilder

import (
	"time"

	"github.com/programme-lv/scraper-instance/api"
	"github.com/programme-lv/scraper-instance/internal"
)

var _ internal.ResultGatherer = (*Builder)(nil)

// Builder gathers run events and fills an api.RunRecord as the fields
// become known.
type Builder struct {
	now func() time.Time

	containerId string
	managerId   string
	spawnTime   string

	finished *time.Time
}

// New creates a builder that stamps the completion time from now.
func New(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// StartJob implements ResultGatherer.
func (b *Builder) StartJob(containerId string, managerId string, spawnTime string) {
	b.containerId = containerId
	b.managerId = managerId
	b.spawnTime = spawnTime
}

// StartScrape implements ResultGatherer.
func (b *Builder) StartScrape() {}

// ReachStep implements ResultGatherer.
func (b *Builder) ReachStep(step int, percent int) {}

// FinishScrape implements ResultGatherer.
func (b *Builder) FinishScrape() {
	at := b.now()
	b.finished = &at
}

// FinishJob implements ResultGatherer.
func (b *Builder) FinishJob(rec api.RunRecord) error { return nil }

// Record builds the api.RunRecord from gathered data.
func (b *Builder) Record() api.RunRecord {
	completion := ""
	if b.finished != nil {
		completion = b.finished.Format(api.TimeLayout)
	}
	return api.RunRecord{
		Status:         api.Success,
		ContainerId:    b.containerId,
		ManagerId:      b.managerId,
		SpawnTime:      b.spawnTime,
		CompletionTime: completion,
	}
}
