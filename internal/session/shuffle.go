package session

import (
	"math/rand"
	"time"
)

// Shuffler randomizes drill order.
type Shuffler struct {
	rnd *rand.Rand
}

// NewShuffler returns a Shuffler seeded with the current time.
func NewShuffler() *Shuffler {
	return &Shuffler{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Shuffle reorders the session's visiting queue. It only applies before
// the first answer; a session in flight keeps its order.
func (sh *Shuffler) Shuffle(s *Session) {
	if s.Cursor > 0 || s.WrongCount > 0 || s.Complete {
		return
	}
	for i := range s.Items {
		if s.Items[i].CorrectCount > 0 {
			return
		}
	}
	sh.rnd.Shuffle(len(s.Queue), func(i, j int) {
		s.Queue[i], s.Queue[j] = s.Queue[j], s.Queue[i]
	})
}
