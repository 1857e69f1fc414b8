// Package progress tracks best times and mode unlocks across sessions.
package progress

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/ilkkao/taito/internal/model"
	"github.com/ilkkao/taito/internal/session"
)

// unlockChain is the verb-drill progression. Only modes listed here can
// unlock anything; a perfect completion of the key unlocks the value.
var unlockChain = map[model.Mode]model.Mode{
	model.ModeRecall:       model.ModeActiveRecall,
	model.ModeActiveRecall: model.ModeConjugation,
	model.ModeConjugation:  model.ModeImperfect,
}

// Persister is the durable storage the tracker writes through to.
type Persister interface {
	UpsertBestTime(ctx context.Context, entry model.BestTime) error
	InsertUnlock(ctx context.Context, mode model.Mode) error
	InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error)
	Reset(ctx context.Context) error
}

// Tracker holds the player state. It is loaded once at startup and only
// mutated on the synchronous session-completion path.
type Tracker struct {
	persister Persister
	bestTimes map[string]model.BestTime
	unlocked  map[model.Mode]struct{}
}

// NewTracker builds a tracker seeded with persisted state. A nil persister
// keeps the state in memory only.
func NewTracker(p Persister, bestTimes []model.BestTime, unlocked []model.Mode) *Tracker {
	t := &Tracker{
		persister: p,
		bestTimes: make(map[string]model.BestTime, len(bestTimes)),
		unlocked:  make(map[model.Mode]struct{}, len(unlocked)),
	}
	for _, e := range bestTimes {
		t.bestTimes[key(e.Mode, e.Levels)] = e
	}
	for _, m := range unlocked {
		t.unlocked[m] = struct{}{}
	}
	return t
}

// Record upserts the best time for the session's (mode, level set) key
// when the summary beats the stored time. An equal time is not a new
// record; the first achieved value persists.
func (t *Tracker) Record(ctx context.Context, mode model.Mode, scope model.Scope, summary model.Summary) (bool, error) {
	levels := recordLevels(mode, scope)
	k := key(mode, levels)
	if existing, ok := t.bestTimes[k]; ok && summary.TimeMs >= existing.TimeMs {
		return false, nil
	}
	entry := model.BestTime{Mode: mode, Levels: levels, TimeMs: summary.TimeMs}
	t.bestTimes[k] = entry
	if t.persister != nil {
		if err := t.persister.UpsertBestTime(ctx, entry); err != nil {
			return true, err
		}
	}
	return true, nil
}

// CheckUnlock applies the fixed unlock table: only a perfect completion
// of a mode with a defined successor unlocks anything.
func (t *Tracker) CheckUnlock(mode model.Mode, perfect bool) (model.Mode, bool) {
	if !perfect {
		return "", false
	}
	next, ok := unlockChain[mode]
	return next, ok
}

// Unlock persists an earned unlock.
func (t *Tracker) Unlock(ctx context.Context, mode model.Mode) error {
	if _, ok := t.unlocked[mode]; ok {
		return nil
	}
	t.unlocked[mode] = struct{}{}
	if t.persister != nil {
		return t.persister.InsertUnlock(ctx, mode)
	}
	return nil
}

// IsUnlocked reports whether a mode is playable. The first verb mode and
// every non-verb mode are always available.
func (t *Tracker) IsUnlocked(mode model.Mode) bool {
	needsUnlock := false
	for _, successor := range unlockChain {
		if successor == mode {
			needsUnlock = true
			break
		}
	}
	if !needsUnlock {
		return true
	}
	_, ok := t.unlocked[mode]
	return ok
}

// BestTimes returns the tracked records ordered by mode and levels.
func (t *Tracker) BestTimes() []model.BestTime {
	entries := lo.Values(t.bestTimes)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Mode != entries[j].Mode {
			return entries[i].Mode < entries[j].Mode
		}
		return model.LevelKey(entries[i].Levels) < model.LevelKey(entries[j].Levels)
	})
	return entries
}

// AppendHistory records one completed session in the history log.
func (t *Tracker) AppendHistory(ctx context.Context, rec model.SessionRecord) error {
	if t.persister == nil {
		return nil
	}
	_, err := t.persister.InsertSession(ctx, rec)
	return err
}

// Reset clears all best times, unlocks, and history. Irreversible;
// confirmation, if any, is a presentation concern.
func (t *Tracker) Reset(ctx context.Context) error {
	t.bestTimes = map[string]model.BestTime{}
	t.unlocked = map[model.Mode]struct{}{}
	if t.persister != nil {
		return t.persister.Reset(ctx)
	}
	return nil
}

func recordLevels(mode model.Mode, scope model.Scope) []string {
	if !session.Leveled(mode) {
		return nil
	}
	return scope.Levels()
}

func key(mode model.Mode, levels []string) string {
	return string(mode) + "|" + model.LevelKey(levels)
}
