package session

import (
	"testing"
	"time"

	"github.com/ilkkao/taito/internal/corpus"
	"github.com/ilkkao/taito/internal/model"
)

func testCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		Chapters: []corpus.Chapter{
			{ID: 1, Title: "Koti", Words: []corpus.Word{
				{Fi: "talo", En: []string{"house"}},
				{Fi: "äiti", En: []string{"mother", "mom"}},
			}},
		},
		Verbs: []corpus.Verb{
			{
				Fi: "puhua", En: []string{"speak", "talk"}, Level: "A1", Tavoite: "T1",
				Present:   map[string]string{"minä": "puhun", "sinä": "puhut", "hän": "puhuu", "me": "puhumme", "te": "puhutte", "he": "puhuvat"},
				Imperfect: map[string]string{"minä": "puhuin", "sinä": "puhuit", "hän": "puhui", "me": "puhuimme", "te": "puhuitte", "he": "puhuivat"},
			},
			{
				Fi: "syödä", En: []string{"eat"}, Level: "A2", Tavoite: "T1",
				Present:   map[string]string{"minä": "syön", "sinä": "syöt", "hän": "syö", "me": "syömme", "te": "syötte", "he": "syövät"},
				Imperfect: map[string]string{"minä": "söin", "sinä": "söit", "hän": "söi", "me": "söimme", "te": "söitte", "he": "söivät"},
			},
		},
		CaseTasks: []corpus.CaseTask{
			{Sentence: "Asun ___ (talo).", Answer: "talossa", Category: "inessiivi"},
			{Sentence: "Juon ___ (kahvi).", Answer: "kahvia", Category: "partitiivi"},
		},
		GradationTasks: []corpus.GradationTask{
			{Base: "kukka", Inflected: "kukan", Pattern: "kk-k"},
		},
		Passages: []corpus.Passage{
			{ChapterID: 1, Title: "Koti", Lines: []corpus.ReadingLine{
				{Text: "Asun talossa.", Question: "Missä asun?", Answer: "talossa", Alternatives: []string{"talo"}},
				{Text: "Talo on pieni.", Question: "Millainen talo on?", Answer: "pieni"},
			}},
		},
	}
}

func TestStartEmptyScope(t *testing.T) {
	c := testCorpus()
	cases := []struct {
		name  string
		mode  model.Mode
		scope model.Scope
	}{
		{"no levels", model.ModeRecall, model.LevelScope{}},
		{"unknown level", model.ModeConjugation, model.LevelScope{LevelSet: []string{"C2"}}},
		{"no cycles", model.ModeVocabulary, model.CycleScope{}},
		{"stale cycles only", model.ModeVocabulary, model.CycleScope{CycleIDs: []string{"9z"}}},
		{"no categories", model.ModeCases, model.CategoryScope{}},
		{"unknown chapter", model.ModeReading, model.ReadingScope{ChapterID: 42}},
	}
	for _, tc := range cases {
		if _, err := Start(c, tc.mode, tc.scope); err != ErrEmptyScope {
			t.Fatalf("%s: expected ErrEmptyScope, got %v", tc.name, err)
		}
	}
}

func TestStartBuildsItems(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeRecall, model.LevelScope{LevelSet: []string{"A1"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(s.Items) != 1 || s.Items[0].Prompt != "puhua" {
		t.Fatalf("unexpected items: %+v", s.Items)
	}
	if s.WrongCount != 0 || s.Cursor != 0 || s.Complete {
		t.Fatalf("fresh session not in created state: %+v", s)
	}
	if s.StartedAt.IsZero() {
		t.Fatalf("expected start time to be set")
	}

	s, err = Start(c, model.ModeConjugation, model.LevelScope{LevelSet: []string{"A1", "A2"}})
	if err != nil {
		t.Fatalf("start conjugation: %v", err)
	}
	if len(s.Items) != 12 {
		t.Fatalf("expected 12 conjugation items, got %d", len(s.Items))
	}
}

func TestSubmitNormalization(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeRecall, model.LevelScope{LevelSet: []string{"A1"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, input := range []string{"speak", "  Speak  ", "TALK"} {
		if res := s.Submit(0, input); !res.Correct {
			t.Fatalf("expected %q to be accepted", input)
		}
	}
	if s.Items[0].CorrectCount != 3 {
		t.Fatalf("expected correct count 3, got %d", s.Items[0].CorrectCount)
	}
	if res := s.Submit(0, ""); res.Correct {
		t.Fatalf("blank input must be incorrect")
	}
	if res := s.Submit(0, "walk"); res.Correct {
		t.Fatalf("wrong answer accepted")
	}
	if s.WrongCount != 2 {
		t.Fatalf("expected wrong count 2, got %d", s.WrongCount)
	}
}

func TestWrongCountMonotonic(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeVocabulary, model.CycleScope{CycleIDs: []string{"1a"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	prev := 0
	inputs := []string{"nope", "house", "", "mom", "x"}
	for i, input := range inputs {
		s.Submit(i%len(s.Items), input)
		if s.WrongCount < prev {
			t.Fatalf("wrong count decreased: %d -> %d", prev, s.WrongCount)
		}
		prev = s.WrongCount
	}
}

func TestAdvanceRequeuesMissedItems(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeVocabulary, model.CycleScope{CycleIDs: []string{"1a"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(s.Queue) != 2 {
		t.Fatalf("expected queue of 2, got %d", len(s.Queue))
	}

	cur, _ := s.Current()
	s.Submit(cur, "wrong")
	s.Advance()
	if len(s.Queue) != 3 {
		t.Fatalf("missed item not re-queued: queue %v", s.Queue)
	}
	if s.Queue[len(s.Queue)-1] != cur {
		t.Fatalf("re-queued wrong index: queue %v", s.Queue)
	}
	if s.CheckCompletion() {
		t.Fatalf("session complete with unanswered items")
	}

	// Answer everything; the re-queued visit resolves the missed item.
	for {
		cur, ok := s.Current()
		if !ok {
			break
		}
		s.Submit(cur, s.Items[cur].Answers[0])
		s.Advance()
		if s.CheckCompletion() {
			break
		}
	}
	if !s.Complete {
		t.Fatalf("expected completion after all items answered")
	}
}

func TestSinglePassCompletion(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeCases, model.CategoryScope{Categories: []string{"inessiivi", "partitiivi"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// Wrong answers still advance a single-pass drill.
	cur, _ := s.Current()
	s.Submit(cur, "wrong")
	s.Advance()
	if len(s.Queue) != 2 {
		t.Fatalf("single-pass mode re-queued an item: %v", s.Queue)
	}
	if s.CheckCompletion() {
		t.Fatalf("complete before the pass ended")
	}
	cur, _ = s.Current()
	s.Submit(cur, s.Items[cur].Answers[0])
	s.Advance()
	if !s.CheckCompletion() {
		t.Fatalf("expected completion at end of pass")
	}
	if s.Items[0].CorrectCount != 0 {
		t.Fatalf("missed item gained a correct count")
	}
}

func TestCompletionImmutability(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeGradation, model.CategoryScope{Categories: []string{"kk-k"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cur, _ := s.Current()
	s.Submit(cur, "kukan")
	s.Advance()
	if !s.CheckCompletion() {
		t.Fatalf("expected completion")
	}
	endedAt := s.EndedAt
	wrong := s.WrongCount
	correct := s.Items[0].CorrectCount

	time.Sleep(time.Millisecond)
	s.Submit(0, "kukan")
	s.Submit(0, "wrong")
	s.Advance()
	if !s.CheckCompletion() {
		t.Fatalf("completion must stay true")
	}
	if s.EndedAt != endedAt {
		t.Fatalf("end time changed after completion")
	}
	if s.WrongCount != wrong || s.Items[0].CorrectCount != correct {
		t.Fatalf("counters changed after completion")
	}
}

func TestReadingItemsCarryContext(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeReading, model.ReadingScope{ChapterID: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}
	if s.Items[0].Context != "Asun talossa." {
		t.Fatalf("missing line context: %+v", s.Items[0])
	}
	if res := s.Submit(0, "talo"); !res.Correct {
		t.Fatalf("alternative answer rejected")
	}
}

func TestLeveled(t *testing.T) {
	leveled := []model.Mode{model.ModeRecall, model.ModeActiveRecall, model.ModeConjugation, model.ModeImperfect}
	for _, mode := range leveled {
		if !Leveled(mode) {
			t.Fatalf("expected %s to be leveled", mode)
		}
	}
	for _, mode := range []model.Mode{model.ModeVocabulary, model.ModeCases, model.ModeGradation, model.ModeReading} {
		if Leveled(mode) {
			t.Fatalf("expected %s not to be leveled", mode)
		}
	}
}

func TestShuffleOnlyBeforePlay(t *testing.T) {
	c := testCorpus()
	s, err := Start(c, model.ModeCases, model.CategoryScope{Categories: []string{"inessiivi", "partitiivi"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cur, _ := s.Current()
	s.Submit(cur, s.Items[cur].Answers[0])
	s.Advance()
	before := append([]int(nil), s.Queue...)
	NewShuffler().Shuffle(s)
	for i := range before {
		if s.Queue[i] != before[i] {
			t.Fatalf("shuffle reordered a session in flight")
		}
	}
}
