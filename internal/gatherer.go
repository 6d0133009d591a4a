package internal

import "github.com/programme-lv/scraper-instance/api"

// ResultGatherer receives the events of a single run in order:
// StartJob, StartScrape, ReachStep (once per step), FinishScrape, FinishJob.
type ResultGatherer interface {
	StartJob(containerId string, managerId string, spawnTime string)

	StartScrape()
	ReachStep(step int, percent int)
	FinishScrape()

	FinishJob(rec api.RunRecord) error
}
