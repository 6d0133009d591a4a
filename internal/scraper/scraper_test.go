package scraper_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/programme-lv/scraper-instance/api"
	"github.com/programme-lv/scraper-instance/internal/environment"
	"github.com/programme-lv/scraper-instance/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGatherer struct {
	events  []string
	records []api.RunRecord
	onStep  func(step int)
}

func (g *recordingGatherer) StartJob(containerId string, managerId string, spawnTime string) {
	g.events = append(g.events, fmt.Sprintf("start %s %s %s", containerId, managerId, spawnTime))
}

func (g *recordingGatherer) StartScrape() {
	g.events = append(g.events, "scrape")
}

func (g *recordingGatherer) ReachStep(step int, percent int) {
	g.events = append(g.events, fmt.Sprintf("step %d %d%%", step, percent))
	if g.onStep != nil {
		g.onStep(step)
	}
}

func (g *recordingGatherer) FinishScrape() {
	g.events = append(g.events, "done")
}

func (g *recordingGatherer) FinishJob(rec api.RunRecord) error {
	g.events = append(g.events, "record")
	g.records = append(g.records, rec)
	return nil
}

func testConfig() *environment.Config {
	cfg := environment.Default()
	cfg.ManagerId = "test"
	cfg.SpawnTime = "2025-04-15 18:00:00"
	cfg.ContainerId = "c0ffee"
	cfg.StepInterval = 0
	return cfg
}

func TestRun(t *testing.T) {
	finished := time.Date(2025, 4, 15, 18, 0, 7, 0, time.Local)
	s := scraper.New(testConfig(), scraper.WithClock(func() time.Time { return finished }))
	require.Equal(t, scraper.Started, s.State())

	g := &recordingGatherer{}
	g.onStep = func(int) { assert.Equal(t, scraper.Simulating, s.State()) }

	rec, err := s.Run(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, scraper.Completed, s.State())

	require.Equal(t, []string{
		"start c0ffee test 2025-04-15 18:00:00",
		"scrape",
		"step 0 0%",
		"step 1 20%",
		"step 2 40%",
		"step 3 60%",
		"step 4 80%",
		"done",
		"record",
	}, g.events)

	want := api.RunRecord{
		Status:         api.Success,
		ContainerId:    "c0ffee",
		ManagerId:      "test",
		SpawnTime:      "2025-04-15 18:00:00",
		CompletionTime: "2025-04-15 18:00:07",
	}
	require.Equal(t, want, *rec)
	require.Equal(t, []api.RunRecord{want}, g.records)
}

func TestRunWithoutSteps(t *testing.T) {
	cfg := testConfig()
	cfg.Steps = 0

	g := &recordingGatherer{}
	_, err := scraper.New(cfg).Run(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, []string{"start c0ffee test 2025-04-15 18:00:00", "scrape", "done", "record"}, g.events)
}

func TestRunCompletionAfterStart(t *testing.T) {
	cfg := testConfig()
	cfg.StepInterval = time.Millisecond

	start := time.Now().Truncate(time.Second)
	rec, err := scraper.New(cfg).Run(context.Background(), &recordingGatherer{})
	require.NoError(t, err)

	completed, err := time.ParseInLocation(api.TimeLayout, rec.CompletionTime, time.Local)
	require.NoError(t, err)
	require.False(t, completed.Before(start))
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.StepInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	g := &recordingGatherer{onStep: func(step int) {
		if step == 0 {
			cancel()
		}
	}}

	s := scraper.New(cfg)
	rec, err := s.Run(ctx, g)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, rec)
	require.Empty(t, g.records)
	require.Equal(t, scraper.Simulating, s.State())
}

func TestProgress(t *testing.T) {
	var percents []int
	for _, p := range scraper.Progress(4) {
		percents = append(percents, p)
	}
	require.Equal(t, []int{0, 25, 50, 75}, percents)

	for range scraper.Progress(0) {
		t.Fatal("no steps expected")
	}

	var first []int
	for step := range scraper.Progress(10) {
		first = append(first, step)
		if step == 2 {
			break
		}
	}
	require.Equal(t, []int{0, 1, 2}, first)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "started", scraper.Started.String())
	require.Equal(t, "simulating", scraper.Simulating.String())
	require.Equal(t, "completed", scraper.Completed.String())
	require.Equal(t, "unknown", scraper.State(42).String())
}
