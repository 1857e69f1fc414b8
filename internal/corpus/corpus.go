// Package corpus loads the embedded drill data.
package corpus

import (
	"embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

//go:embed data/*.toml
var dataFS embed.FS

// Persons lists the grammatical persons of a conjugation table in drill order.
var Persons = []string{"minä", "sinä", "hän", "me", "te", "he"}

// Word is one vocabulary entry. En holds the primary translation first,
// followed by accepted synonyms.
type Word struct {
	Fi string   `toml:"fi"`
	En []string `toml:"en"`
}

// Chapter is a named, ordered block of vocabulary.
type Chapter struct {
	ID    int    `toml:"id"`
	Title string `toml:"title"`
	Words []Word `toml:"words"`
}

// Verb is one verb entry with its conjugation tables keyed by person.
type Verb struct {
	Fi        string            `toml:"fi"`
	En        []string          `toml:"en"`
	Level     string            `toml:"level"`
	Tavoite   string            `toml:"tavoite"`
	Present   map[string]string `toml:"present"`
	Imperfect map[string]string `toml:"imperfect"`
}

// CaseTask is a fill-in-the-blank sentence drilling one case form.
type CaseTask struct {
	Sentence     string   `toml:"sentence"`
	Answer       string   `toml:"answer"`
	Alternatives []string `toml:"alternatives"`
	Category     string   `toml:"category"`
}

// GradationTask is a consonant-gradation pair.
type GradationTask struct {
	Base      string `toml:"base"`
	Inflected string `toml:"inflected"`
	Pattern   string `toml:"pattern"`
}

// ReadingLine is one passage line with its comprehension question.
type ReadingLine struct {
	Text         string   `toml:"text"`
	Question     string   `toml:"question"`
	Answer       string   `toml:"answer"`
	Alternatives []string `toml:"alternatives"`
}

// Passage is a reading-comprehension text tied to a chapter.
type Passage struct {
	ChapterID int           `toml:"chapter"`
	Title     string        `toml:"title"`
	Lines     []ReadingLine `toml:"lines"`
}

// Corpus holds the full decoded drill data.
type Corpus struct {
	Chapters       []Chapter
	Verbs          []Verb
	CaseTasks      []CaseTask
	GradationTasks []GradationTask
	Passages       []Passage
}

type wordsFile struct {
	Chapters []Chapter `toml:"chapter"`
}

type verbsFile struct {
	Verbs []Verb `toml:"verb"`
}

type casesFile struct {
	Tasks []CaseTask `toml:"task"`
}

type gradationFile struct {
	Tasks []GradationTask `toml:"task"`
}

type readingFile struct {
	Passages []Passage `toml:"passage"`
}

// Load decodes the embedded data files.
func Load() (*Corpus, error) {
	var words wordsFile
	if err := decodeData("data/words.toml", &words); err != nil {
		return nil, err
	}
	var verbs verbsFile
	if err := decodeData("data/verbs.toml", &verbs); err != nil {
		return nil, err
	}
	var cases casesFile
	if err := decodeData("data/cases.toml", &cases); err != nil {
		return nil, err
	}
	var gradation gradationFile
	if err := decodeData("data/gradation.toml", &gradation); err != nil {
		return nil, err
	}
	var reading readingFile
	if err := decodeData("data/reading.toml", &reading); err != nil {
		return nil, err
	}
	return &Corpus{
		Chapters:       words.Chapters,
		Verbs:          verbs.Verbs,
		CaseTasks:      cases.Tasks,
		GradationTasks: gradation.Tasks,
		Passages:       reading.Passages,
	}, nil
}

func decodeData(path string, target any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Chapter returns the chapter with the given id.
func (c *Corpus) Chapter(id int) (Chapter, bool) {
	for _, ch := range c.Chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return Chapter{}, false
}

// Levels returns the sorted set of verb levels.
func (c *Corpus) Levels() []string {
	levels := lo.Uniq(lo.Map(c.Verbs, func(v Verb, _ int) string { return v.Level }))
	sort.Strings(levels)
	return levels
}

// Tavoites returns the sorted set of tavoites present within the given levels.
// An empty level filter means all levels.
func (c *Corpus) Tavoites(levels []string) []string {
	levelSet := toSet(levels)
	var tavoites []string
	for _, v := range c.Verbs {
		if len(levelSet) > 0 {
			if _, ok := levelSet[v.Level]; !ok {
				continue
			}
		}
		tavoites = append(tavoites, v.Tavoite)
	}
	tavoites = lo.Uniq(tavoites)
	sort.Strings(tavoites)
	return tavoites
}

// VerbsFor returns verbs matching the level and tavoite filters, in corpus
// order. An empty filter matches everything.
func (c *Corpus) VerbsFor(levels, tavoites []string) []Verb {
	levelSet := toSet(levels)
	tavoiteSet := toSet(tavoites)
	var out []Verb
	for _, v := range c.Verbs {
		if len(levelSet) > 0 {
			if _, ok := levelSet[v.Level]; !ok {
				continue
			}
		}
		if len(tavoiteSet) > 0 {
			if _, ok := tavoiteSet[v.Tavoite]; !ok {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// CaseCategories returns the sorted set of case-task categories.
func (c *Corpus) CaseCategories() []string {
	categories := lo.Uniq(lo.Map(c.CaseTasks, func(t CaseTask, _ int) string { return t.Category }))
	sort.Strings(categories)
	return categories
}

// CaseTasksFor returns case tasks in the given categories, in corpus order.
func (c *Corpus) CaseTasksFor(categories []string) []CaseTask {
	set := toSet(categories)
	var out []CaseTask
	for _, t := range c.CaseTasks {
		if len(set) > 0 {
			if _, ok := set[t.Category]; !ok {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// GradationPatterns returns the sorted set of gradation patterns.
func (c *Corpus) GradationPatterns() []string {
	patterns := lo.Uniq(lo.Map(c.GradationTasks, func(t GradationTask, _ int) string { return t.Pattern }))
	sort.Strings(patterns)
	return patterns
}

// GradationTasksFor returns gradation tasks matching the pattern filter.
func (c *Corpus) GradationTasksFor(patterns []string) []GradationTask {
	set := toSet(patterns)
	var out []GradationTask
	for _, t := range c.GradationTasks {
		if len(set) > 0 {
			if _, ok := set[t.Pattern]; !ok {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Passage returns the reading passage for a chapter.
func (c *Corpus) Passage(chapterID int) (Passage, bool) {
	for _, p := range c.Passages {
		if p.ChapterID == chapterID {
			return p, true
		}
	}
	return Passage{}, false
}

// PassageChapters returns the chapter ids that have a reading passage, sorted.
func (c *Corpus) PassageChapters() []int {
	ids := lo.Map(c.Passages, func(p Passage, _ int) int { return p.ChapterID })
	sort.Ints(ids)
	return ids
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
