// Package model defines shared data structures.
package model

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Mode identifies a drill type. The string value is the persisted tag.
type Mode string

// Drill modes.
const (
	ModeRecall       Mode = "recall"
	ModeActiveRecall Mode = "active-recall"
	ModeConjugation  Mode = "conjugation"
	ModeImperfect    Mode = "imperfect"
	ModeVocabulary   Mode = "vocabulary"
	ModeCases        Mode = "cases"
	ModeGradation    Mode = "gradation"
	ModeReading      Mode = "reading"
)

// Modes lists all drill modes in menu order.
func Modes() []Mode {
	return []Mode{
		ModeRecall,
		ModeActiveRecall,
		ModeConjugation,
		ModeImperfect,
		ModeVocabulary,
		ModeCases,
		ModeGradation,
		ModeReading,
	}
}

// Scope is the user-chosen corpus subset for a session. Each mode accepts
// exactly one variant.
type Scope interface {
	// Levels returns the level set used as the best-time key, sorted and
	// deduplicated. Scope-less variants return nil.
	Levels() []string
	isScope()
}

// LevelScope selects verbs by level and tavoite.
type LevelScope struct {
	LevelSet   []string
	TavoiteSet []string
}

// Levels implements Scope.
func (s LevelScope) Levels() []string {
	levels := lo.Uniq(s.LevelSet)
	sort.Strings(levels)
	return levels
}

func (LevelScope) isScope() {}

// CycleScope selects vocabulary by cycle ids.
type CycleScope struct {
	CycleIDs []string
}

// Levels implements Scope. Cycle selections do not key best times.
func (CycleScope) Levels() []string { return nil }

func (CycleScope) isScope() {}

// CategoryScope selects case or gradation tasks by category.
type CategoryScope struct {
	Categories []string
}

// Levels implements Scope.
func (CategoryScope) Levels() []string { return nil }

func (CategoryScope) isScope() {}

// ReadingScope selects one reading passage by chapter id.
type ReadingScope struct {
	ChapterID int
}

// Levels implements Scope.
func (ReadingScope) Levels() []string { return nil }

func (ReadingScope) isScope() {}

// LevelKey flattens a level set into the persisted best-time key column.
func LevelKey(levels []string) string {
	return strings.Join(levels, ",")
}

// BestTime is one persisted best-time record.
type BestTime struct {
	Mode   Mode
	Levels []string
	TimeMs int64
}

// Summary holds the figures computed from a completed session.
type Summary struct {
	TimeMs         int64
	Accuracy       int
	WrongCount     int
	TotalQuestions int
	Perfect        bool
}

// SessionRecord is one row of persisted session history.
type SessionRecord struct {
	ID         int64
	Mode       Mode
	Levels     []string
	EndedAt    time.Time
	TimeMs     int64
	WrongCount int
	Accuracy   int
	Questions  int
}
