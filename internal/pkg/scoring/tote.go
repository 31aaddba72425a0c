package scoring

import (
	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/tables"
)

const (
	toteSize = 24
	// MaxBoosts is the capacity of a BoostRing.
	MaxBoosts = 4
)

// Tote accumulates per-script language scores for one chunk. It holds at
// most toteSize languages; ties are won by the language added first.
type Tote struct {
	keys   [toteSize]uint8
	scores [toteSize]int
	n      int
	slot   [256]uint8
}

// Reinit empties the tote.
func (t *Tote) Reinit() {
	for i := 0; i < t.n; i++ {
		t.slot[t.keys[i]] = 0
	}
	t.n = 0
}

// Add adds n to key's score. Key 0 and keys beyond capacity are ignored.
func (t *Tote) Add(key uint8, n int) {
	if key == 0 {
		return
	}
	i := t.slot[key]
	if i == 0 {
		if t.n == toteSize {
			return
		}
		t.keys[t.n] = key
		t.scores[t.n] = 0
		t.n++
		i = uint8(t.n)
		t.slot[key] = i
	}
	t.scores[i-1] += n
}

// AddProbSet adds every vote of ps.
func (t *Tote) AddProbSet(ps tables.ProbSet) {
	for _, lp := range ps.Probs[:ps.N] {
		t.Add(lp.Lang, int(lp.Prob))
	}
}

// SetScore overwrites key's score if key is present.
func (t *Tote) SetScore(key uint8, score int) {
	if i := t.slot[key]; i != 0 {
		t.scores[i-1] = score
	}
}

// Score returns key's score.
func (t *Tote) Score(key uint8) int {
	if i := t.slot[key]; i != 0 {
		return t.scores[i-1]
	}
	return 0
}

// Top3 returns the three highest scoring keys, in order. Keys with no
// positive score are reported as 0.
func (t *Tote) Top3() (keys [3]uint8, scores [3]int) {
	for i := 0; i < t.n; i++ {
		s := t.scores[i]
		if s <= 0 {
			continue
		}
		for j := 0; j < 3; j++ {
			if keys[j] == 0 || s > scores[j] {
				copy(keys[j+1:], keys[j:2])
				copy(scores[j+1:], scores[j:2])
				keys[j], scores[j] = t.keys[i], s
				break
			}
		}
	}
	return keys, scores
}

// Boost is a language vote kept across chunks.
type Boost struct {
	Lang langdata.Language
	Prob uint8
}

// BoostRing keeps the MaxBoosts most recent boosts. The zero value is an
// empty ring.
type BoostRing struct {
	items [MaxBoosts]Boost
	n     int
	next  int
}

// Push adds b, evicting the oldest entry when the ring is full.
func (r *BoostRing) Push(b Boost) {
	r.items[r.next] = b
	r.next = (r.next + 1) % MaxBoosts
	if r.n < MaxBoosts {
		r.n++
	}
}

// Len returns the number of boosts held.
func (r *BoostRing) Len() int {
	return r.n
}

// Each calls fn for every boost, oldest first.
func (r *BoostRing) Each(fn func(Boost)) {
	start := (r.next - r.n + MaxBoosts) % MaxBoosts
	for i := 0; i < r.n; i++ {
		fn(r.items[(start+i)%MaxBoosts])
	}
}
