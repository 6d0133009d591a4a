package termgath

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/programme-lv/scraper-instance/api"
)

// TerminalGatherer prints a run as human readable lines followed by the run
// record as a single JSON line. Its output is what ends up in container logs.
type TerminalGatherer struct {
	StartedAt time.Time

	w     io.Writer
	alive *color.Color
	done  *color.Color
}

func New(w io.Writer) *TerminalGatherer {
	return &TerminalGatherer{
		StartedAt: time.Now(),
		w:         w,
		alive:     color.New(color.FgHiGreen, color.Bold),
		done:      color.New(color.FgHiGreen),
	}
}

// Alive announces that the instance has started.
func (t *TerminalGatherer) Alive() {
	t.alive.Fprintln(t.w, "I'm alive!")
}

func (t *TerminalGatherer) StartJob(containerId string, managerId string, spawnTime string) {
	fmt.Fprintf(t.w, "Hello World! I'm %s, son of %s, spawned at %s.\n",
		oneLine(containerId), oneLine(managerId), oneLine(spawnTime))
}

// oneLine quotes s when it holds control characters so that a value can
// never start a line of its own.
func oneLine(s string) string {
	if strings.ContainsFunc(s, unicode.IsControl) {
		return strconv.Quote(s)
	}
	return s
}

func (t *TerminalGatherer) StartScrape() {
	fmt.Fprintln(t.w, "Starting mock scraping task...")
}

func (t *TerminalGatherer) ReachStep(step int, percent int) {
	fmt.Fprintf(t.w, "Scraping progress: %d%%\n", percent)
}

func (t *TerminalGatherer) FinishScrape() {
	t.done.Fprintln(t.w, "Scraping completed successfully!")
}

// FinishJob writes the record as the last line of output.
func (t *TerminalGatherer) FinishJob(rec api.RunRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	b = append(b, '\n')
	if _, err := t.w.Write(b); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	return nil
}
