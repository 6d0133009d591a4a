package scraper

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/programme-lv/scraper-instance/api"
	"github.com/programme-lv/scraper-instance/internal"
	"github.com/programme-lv/scraper-instance/internal/environment"
	"github.com/programme-lv/scraper-instance/internal/gatherer/respbuilder"
)

// Scraper runs the mock scraping job of one instance.
type Scraper struct {
	cfg    *environment.Config
	logger *slog.Logger
	now    func() time.Time
	state  State
}

type Option func(*Scraper)

// WithClock replaces time.Now as the source of the completion time.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

func New(cfg *environment.Config, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
		state:  Started,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) State() State {
	return s.state
}

// Run executes the job and reports every step to gath. The returned record
// is the same one handed to gath.FinishJob. Run fails only when ctx is done
// during a pause or the record cannot be delivered.
func (s *Scraper) Run(ctx context.Context, gath internal.ResultGatherer) (*api.RunRecord, error) {
	resp := respbuilder.New(s.now)
	gaths := []internal.ResultGatherer{resp, gath}

	for _, g := range gaths {
		g.StartJob(s.cfg.ContainerId, s.cfg.ManagerId, s.cfg.SpawnTime)
	}

	s.setState(Simulating)
	for _, g := range gaths {
		g.StartScrape()
	}
	for step, percent := range Progress(s.cfg.Steps) {
		for _, g := range gaths {
			g.ReachStep(step, percent)
		}
		if err := sleep(ctx, s.cfg.StepInterval); err != nil {
			return nil, fmt.Errorf("interrupted at step %d of %d: %w", step+1, s.cfg.Steps, err)
		}
	}
	for _, g := range gaths {
		g.FinishScrape()
	}

	rec := resp.Record()
	for _, g := range gaths {
		if err := g.FinishJob(rec); err != nil {
			return nil, err
		}
	}
	s.setState(Completed)
	return &rec, nil
}

func (s *Scraper) setState(state State) {
	s.logger.Debug("scraper state changed", "from", s.state, "to", state)
	s.state = state
}

// Progress yields (step, percent) for each of the given number of steps.
// Percent starts at 0 and never reaches 100.
func Progress(steps int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i := 0; i < steps; i++ {
			if !yield(i, i*100/steps) {
				return
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
