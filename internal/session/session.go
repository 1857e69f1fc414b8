// Package session implements the per-drill session state machine.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilkkao/taito/internal/corpus"
	"github.com/ilkkao/taito/internal/cycle"
	"github.com/ilkkao/taito/internal/model"
)

// ErrEmptyScope reports a scope that resolves to zero drillable items. No
// session is created; the caller keeps its prior state.
var ErrEmptyScope = errors.New("scope has no drillable items")

// Item is one drillable question. Answers holds the primary answer first,
// followed by accepted synonyms and alternate forms.
type Item struct {
	Prompt       string
	Context      string
	Answers      []string
	CorrectCount int
}

// Session is one in-flight or completed drill run. A completed session is
// never mutated again; a fresh session must be started to play again.
type Session struct {
	Mode  model.Mode
	Scope model.Scope

	Items []Item
	// Queue is the visiting order over Items by index. Mastery modes append
	// missed indices to the end, so it can grow past len(Items).
	Queue  []int
	Cursor int

	WrongCount int
	StartedAt  time.Time
	EndedAt    time.Time
	Complete   bool
}

// Result reports the outcome of one submitted answer.
type Result struct {
	Correct  bool
	Expected string
}

type behavior struct {
	build   func(*corpus.Corpus, model.Scope) ([]Item, error)
	requeue bool
	mastery bool
	leveled bool
}

// behaviors is the per-mode dispatch table. Adding a mode means adding a
// row here, not a branch elsewhere.
var behaviors = map[model.Mode]behavior{
	model.ModeRecall:       {build: buildRecall, requeue: true, mastery: true, leveled: true},
	model.ModeActiveRecall: {build: buildActiveRecall, requeue: true, mastery: true, leveled: true},
	model.ModeConjugation:  {build: buildConjugation(func(v corpus.Verb) map[string]string { return v.Present }), requeue: true, mastery: true, leveled: true},
	model.ModeImperfect:    {build: buildConjugation(func(v corpus.Verb) map[string]string { return v.Imperfect }), requeue: true, mastery: true, leveled: true},
	model.ModeVocabulary:   {build: buildVocabulary, requeue: true, mastery: true},
	model.ModeCases:        {build: buildCases},
	model.ModeGradation:    {build: buildGradation},
	model.ModeReading:      {build: buildReading},
}

// Start builds a session for the mode and scope. It returns ErrEmptyScope
// when the scope resolves to no items.
func Start(c *corpus.Corpus, mode model.Mode, scope model.Scope) (*Session, error) {
	b, ok := behaviors[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	items, err := b.build(c, scope)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyScope
	}
	queue := make([]int, len(items))
	for i := range queue {
		queue[i] = i
	}
	return &Session{
		Mode:      mode,
		Scope:     scope,
		Items:     items,
		Queue:     queue,
		StartedAt: time.Now(),
	}, nil
}

// Current returns the index of the item under the cursor.
func (s *Session) Current() (int, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Queue) {
		return 0, false
	}
	return s.Queue[s.Cursor], true
}

// Submit checks a normalized answer against the item's accepted set. A
// match increments the item's correct count; a mismatch increments the
// session wrong count. Blank input is a mismatch. Completed sessions are
// not touched.
func (s *Session) Submit(item int, input string) Result {
	if s.Complete || item < 0 || item >= len(s.Items) {
		return Result{}
	}
	it := &s.Items[item]
	res := Result{Expected: it.Answers[0]}
	normalized := normalize(input)
	if normalized != "" {
		for _, answer := range it.Answers {
			if normalize(answer) == normalized {
				it.CorrectCount++
				res.Correct = true
				return res
			}
		}
	}
	s.WrongCount++
	return res
}

// Advance moves the cursor to the next item. Mastery modes re-queue an
// unanswered item at the end of the queue instead of dropping it;
// single-pass modes move linearly regardless of correctness.
func (s *Session) Advance() {
	if s.Complete {
		return
	}
	cur, ok := s.Current()
	if !ok {
		return
	}
	if behaviors[s.Mode].requeue && s.Items[cur].CorrectCount == 0 {
		s.Queue = append(s.Queue, cur)
	}
	s.Cursor++
}

// CheckCompletion evaluates the mode's completion predicate and, the first
// time it holds, marks the session complete and stamps the end time.
// Further calls are no-ops.
func (s *Session) CheckCompletion() bool {
	if s.Complete {
		return true
	}
	if behaviors[s.Mode].mastery {
		for i := range s.Items {
			if s.Items[i].CorrectCount == 0 {
				return false
			}
		}
	} else if s.Cursor < len(s.Queue) {
		return false
	}
	s.Complete = true
	s.EndedAt = time.Now()
	return true
}

// Remaining counts items that still need a correct answer (mastery modes)
// or queue entries left to visit (single-pass modes).
func (s *Session) Remaining() int {
	if behaviors[s.Mode].mastery {
		n := 0
		for i := range s.Items {
			if s.Items[i].CorrectCount == 0 {
				n++
			}
		}
		return n
	}
	if s.Cursor >= len(s.Queue) {
		return 0
	}
	return len(s.Queue) - s.Cursor
}

// Leveled reports whether the mode keys best times by level set.
func Leveled(mode model.Mode) bool {
	return behaviors[mode].leveled
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func buildRecall(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
	sc, err := levelScope(scope)
	if err != nil || len(sc.LevelSet) == 0 {
		return nil, err
	}
	var items []Item
	for _, v := range c.VerbsFor(sc.LevelSet, sc.TavoiteSet) {
		items = append(items, Item{Prompt: v.Fi, Answers: v.En})
	}
	return items, nil
}

func buildActiveRecall(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
	sc, err := levelScope(scope)
	if err != nil || len(sc.LevelSet) == 0 {
		return nil, err
	}
	var items []Item
	for _, v := range c.VerbsFor(sc.LevelSet, sc.TavoiteSet) {
		items = append(items, Item{Prompt: v.En[0], Answers: []string{v.Fi}})
	}
	return items, nil
}

func buildConjugation(table func(corpus.Verb) map[string]string) func(*corpus.Corpus, model.Scope) ([]Item, error) {
	return func(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
		sc, err := levelScope(scope)
		if err != nil || len(sc.LevelSet) == 0 {
			return nil, err
		}
		var items []Item
		for _, v := range c.VerbsFor(sc.LevelSet, sc.TavoiteSet) {
			forms := table(v)
			for _, person := range corpus.Persons {
				form, ok := forms[person]
				if !ok {
					continue
				}
				items = append(items, Item{
					Prompt:  fmt.Sprintf("%s (%s)", v.Fi, person),
					Answers: []string{form},
				})
			}
		}
		return items, nil
	}
}

func buildVocabulary(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
	sc, ok := scope.(model.CycleScope)
	if !ok {
		return nil, fmt.Errorf("vocabulary requires a cycle scope, got %T", scope)
	}
	var items []Item
	for _, id := range sc.CycleIDs {
		cy, ok := cycle.Resolve(c, id)
		if !ok {
			// Stale cycle ids are skipped, matching the forgiving
			// word-count policy.
			continue
		}
		for _, w := range cy.Words {
			items = append(items, Item{Prompt: w.Fi, Answers: w.En})
		}
	}
	return items, nil
}

func buildCases(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
	sc, ok := scope.(model.CategoryScope)
	if !ok {
		return nil, fmt.Errorf("cases requires a category scope, got %T", scope)
	}
	if len(sc.Categories) == 0 {
		return nil, nil
	}
	var items []Item
	for _, t := range c.CaseTasksFor(sc.Categories) {
		items = append(items, Item{
			Prompt:  t.Sentence,
			Context: t.Category,
			Answers: append([]string{t.Answer}, t.Alternatives...),
		})
	}
	return items, nil
}

func buildGradation(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
	sc, ok := scope.(model.CategoryScope)
	if !ok {
		return nil, fmt.Errorf("gradation requires a category scope, got %T", scope)
	}
	if len(sc.Categories) == 0 {
		return nil, nil
	}
	var items []Item
	for _, t := range c.GradationTasksFor(sc.Categories) {
		items = append(items, Item{
			Prompt:  t.Base,
			Context: t.Pattern,
			Answers: []string{t.Inflected},
		})
	}
	return items, nil
}

func buildReading(c *corpus.Corpus, scope model.Scope) ([]Item, error) {
	sc, ok := scope.(model.ReadingScope)
	if !ok {
		return nil, fmt.Errorf("reading requires a reading scope, got %T", scope)
	}
	passage, ok := c.Passage(sc.ChapterID)
	if !ok {
		return nil, nil
	}
	var items []Item
	for _, line := range passage.Lines {
		items = append(items, Item{
			Prompt:  line.Question,
			Context: line.Text,
			Answers: append([]string{line.Answer}, line.Alternatives...),
		})
	}
	return items, nil
}

// levelScope unwraps a verb-drill scope. Zero levels selected means an
// empty scope; zero tavoites means all tavoites within the levels.
func levelScope(scope model.Scope) (model.LevelScope, error) {
	sc, ok := scope.(model.LevelScope)
	if !ok {
		return model.LevelScope{}, fmt.Errorf("verb drill requires a level scope, got %T", scope)
	}
	return sc, nil
}
