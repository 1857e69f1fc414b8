// Package cycle partitions vocabulary chapters into fixed-size cycles.
package cycle

import (
	"errors"
	"strconv"

	"github.com/samber/lo"

	"github.com/ilkkao/taito/internal/corpus"
)

// Size is the maximum number of words per cycle.
const Size = 20

// ErrChapterNotFound reports a partition request for an unknown chapter.
var ErrChapterNotFound = errors.New("chapter not found")

// Cycle is a contiguous slice of a chapter's words, at most Size long.
type Cycle struct {
	ID        string
	ChapterID int
	Words     []corpus.Word
}

// Partition slices a chapter's words into cycles of at most Size words,
// in chapter order. The cycle id is the chapter id followed by a letter
// assigned by slice position (a, b, c, ...). Partitioning is pure
// recomputation: the same chapter always yields identical cycles.
func Partition(c *corpus.Corpus, chapterID int) ([]Cycle, error) {
	chapter, ok := c.Chapter(chapterID)
	if !ok {
		return nil, ErrChapterNotFound
	}
	var cycles []Cycle
	for i := 0; i*Size < len(chapter.Words); i++ {
		start := i * Size
		end := start + Size
		if end > len(chapter.Words) {
			end = len(chapter.Words)
		}
		cycles = append(cycles, Cycle{
			ID:        strconv.Itoa(chapterID) + string(rune('a'+i)),
			ChapterID: chapterID,
			Words:     chapter.Words[start:end],
		})
	}
	return cycles, nil
}

// Resolve parses a cycle id, re-derives the owning chapter's partition, and
// returns the matching cycle. An unknown chapter, an unparseable id, or a
// letter beyond the chapter's last slice reports ok = false.
func Resolve(c *corpus.Corpus, id string) (Cycle, bool) {
	chapterID, ok := splitID(id)
	if !ok {
		return Cycle{}, false
	}
	cycles, err := Partition(c, chapterID)
	if err != nil {
		return Cycle{}, false
	}
	for _, cy := range cycles {
		if cy.ID == id {
			return cy, true
		}
	}
	return Cycle{}, false
}

// WordCount sums the word counts of the resolved cycles. Ids that do not
// resolve contribute zero, so a stale selection never breaks counting.
func WordCount(c *corpus.Corpus, ids []string) int {
	return lo.SumBy(ids, func(id string) int {
		cy, ok := Resolve(c, id)
		if !ok {
			return 0
		}
		return len(cy.Words)
	})
}

// splitID extracts the leading digit run of a cycle id as the chapter id.
func splitID(id string) (int, bool) {
	digits := 0
	for digits < len(id) && id[digits] >= '0' && id[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	chapterID, err := strconv.Atoi(id[:digits])
	if err != nil {
		return 0, false
	}
	return chapterID, true
}
