package cycle

import (
	"fmt"
	"testing"

	"github.com/ilkkao/taito/internal/corpus"
)

func testCorpus(wordCount int) *corpus.Corpus {
	words := make([]corpus.Word, wordCount)
	for i := range words {
		words[i] = corpus.Word{Fi: fmt.Sprintf("sana%d", i), En: []string{fmt.Sprintf("word%d", i)}}
	}
	return &corpus.Corpus{Chapters: []corpus.Chapter{{ID: 7, Title: "Testi", Words: words}}}
}

func TestPartitionSizesAndIDs(t *testing.T) {
	c := testCorpus(45)
	cycles, err := Partition(c, 7)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(cycles) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(cycles))
	}
	wantSizes := []int{20, 20, 5}
	wantIDs := []string{"7a", "7b", "7c"}
	for i, cy := range cycles {
		if len(cy.Words) != wantSizes[i] {
			t.Fatalf("cycle %d: expected %d words, got %d", i, wantSizes[i], len(cy.Words))
		}
		if cy.ID != wantIDs[i] {
			t.Fatalf("cycle %d: expected id %q, got %q", i, wantIDs[i], cy.ID)
		}
	}
}

func TestPartitionCompleteness(t *testing.T) {
	for _, n := range []int{1, 19, 20, 21, 40, 45, 61} {
		c := testCorpus(n)
		cycles, err := Partition(c, 7)
		if err != nil {
			t.Fatalf("partition %d words: %v", n, err)
		}
		var rebuilt []corpus.Word
		for i, cy := range cycles {
			if len(cy.Words) > Size {
				t.Fatalf("%d words: cycle %d longer than %d", n, i, Size)
			}
			if i < len(cycles)-1 && len(cy.Words) != Size {
				t.Fatalf("%d words: non-final cycle %d has %d words", n, i, len(cy.Words))
			}
			rebuilt = append(rebuilt, cy.Words...)
		}
		if len(rebuilt) != n {
			t.Fatalf("%d words: rebuilt %d", n, len(rebuilt))
		}
		for i, w := range rebuilt {
			if w.Fi != fmt.Sprintf("sana%d", i) {
				t.Fatalf("%d words: item %d out of order: %q", n, i, w.Fi)
			}
		}
	}
}

func TestPartitionUnknownChapter(t *testing.T) {
	c := testCorpus(5)
	if _, err := Partition(c, 99); err != ErrChapterNotFound {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
}

func TestResolveDeterminism(t *testing.T) {
	c := testCorpus(45)
	first, ok := Resolve(c, "7b")
	if !ok {
		t.Fatalf("expected 7b to resolve")
	}
	second, ok := Resolve(c, "7b")
	if !ok {
		t.Fatalf("expected 7b to resolve twice")
	}
	if first.ID != second.ID || len(first.Words) != len(second.Words) {
		t.Fatalf("resolve not deterministic: %+v vs %+v", first, second)
	}
	for i := range first.Words {
		if first.Words[i].Fi != second.Words[i].Fi {
			t.Fatalf("word %d differs between resolutions", i)
		}
	}
}

func TestResolveFailures(t *testing.T) {
	c := testCorpus(25)
	for _, id := range []string{"", "a", "7", "7z", "99a", "x7a"} {
		if _, ok := Resolve(c, id); ok {
			t.Fatalf("expected %q not to resolve", id)
		}
	}
}

func TestWordCount(t *testing.T) {
	c := testCorpus(25)
	if got := WordCount(c, []string{"7a", "7b"}); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	// Unresolved ids contribute zero instead of failing.
	if got := WordCount(c, []string{"7a", "9z", "bogus"}); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	if got := WordCount(c, nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
