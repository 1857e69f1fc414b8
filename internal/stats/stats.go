// Package stats computes session summaries and renders reports.
package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/ilkkao/taito/internal/model"
	"github.com/ilkkao/taito/internal/session"
)

// ErrIncompleteSession reports a summary request for a session that has
// not completed. This is a caller precondition violation, not a runtime
// condition to recover from.
var ErrIncompleteSession = errors.New("session is not complete")

const sparkChars = " .:-=+*#%@"

// Summarize turns a completed session's raw counters into its figures.
// Accuracy over zero attempts is defined as 100: no attempts recorded is
// treated as vacuously perfect rather than an error.
func Summarize(s *session.Session) (model.Summary, error) {
	if !s.Complete {
		return model.Summary{}, ErrIncompleteSession
	}
	attempts := s.WrongCount
	for i := range s.Items {
		attempts += s.Items[i].CorrectCount
	}
	accuracy := 100
	if attempts > 0 {
		accuracy = int(math.Round(100 * float64(attempts-s.WrongCount) / float64(attempts)))
	}
	return model.Summary{
		TimeMs:         s.EndedAt.Sub(s.StartedAt).Milliseconds(),
		Accuracy:       accuracy,
		WrongCount:     s.WrongCount,
		TotalQuestions: len(s.Items),
		Perfect:        s.WrongCount == 0,
	}, nil
}

// FormatDuration renders milliseconds as m:ss.t for display.
func FormatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	minutes := int64(d.Minutes())
	seconds := d.Seconds() - float64(minutes)*60
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}

// RenderBestTimes prints the best-time table.
func RenderBestTimes(w io.Writer, entries []model.BestTime) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No best times yet.")
		return err
	}
	headers := []string{"Mode", "Levels", "Best"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		levels := model.LevelKey(e.Levels)
		if levels == "" {
			levels = "-"
		}
		rows = append(rows, []string{string(e.Mode), levels, FormatDuration(e.TimeMs)})
	}
	lines := formatTable(headers, rows, map[int]bool{2: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderExport prints the flattened best-time list with fixed column
// order mode, levels, time.
func RenderExport(w io.Writer, entries []model.BestTime) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", e.Mode, model.LevelKey(e.Levels), e.TimeMs); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints recent sessions with a duration sparkline sized to
// the given width.
func RenderHistory(w io.Writer, records []model.SessionRecord, width int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded.")
		return err
	}
	headers := []string{"When", "Mode", "Levels", "Time", "Wrong", "Accuracy"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		levels := model.LevelKey(r.Levels)
		if levels == "" {
			levels = "-"
		}
		rows = append(rows, []string{
			r.EndedAt.Format("2006-01-02 15:04"),
			string(r.Mode),
			levels,
			FormatDuration(r.TimeMs),
			fmt.Sprintf("%d", r.WrongCount),
			fmt.Sprintf("%d%%", r.Accuracy),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	durations := make([]float64, len(records))
	for i, r := range records {
		durations[i] = float64(r.TimeMs)
	}
	if width > 0 && len(durations) > width {
		durations = durations[len(durations)-width:]
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Duration trend: %s\n", Sparkline(durations)); err != nil {
		return err
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
