package scoring

import (
	"cmp"

	"langindexer/internal/pkg/tables"
)

const (
	// ChunkSizeQuads is the number of base hits per chunk for quadgram scripts.
	ChunkSizeQuads = 20
	// ChunkSizeUnis is the number of base hits per chunk for CJK.
	ChunkSizeUnis = 50

	defaultProb = 1
)

type cursor struct {
	hits  []Hit
	kind  HitKind
	table *tables.Table
	next  int
}

func (c *cursor) done() bool { return c.next >= len(c.hits) }

func (c *cursor) head() Hit { return c.hits[c.next] }

func kindRank(k HitKind) int {
	switch k {
	case KindDelta:
		return 0
	case KindDistinct:
		return 1
	}
	return 2
}

// hitOrder orders hits by offset. At equal offsets delta and distinct hits
// come before base hits.
func hitOrder(a, b *cursor) int {
	if c := cmp.Compare(a.head().Offset, b.head().Offset); c != 0 {
		return c
	}
	return cmp.Compare(kindRank(a.kind), kindRank(b.kind))
}

// mergeCursors emits the heads of cs in the order given by order until all
// cursors are drained. Ties keep cursor order.
func mergeCursors(cs []*cursor, order func(a, b *cursor) int, emit func(*cursor, Hit)) {
	for {
		var best *cursor
		for _, c := range cs {
			if c.done() {
				continue
			}
			if best == nil || order(c, best) < 0 {
				best = c
			}
		}
		if best == nil {
			return
		}
		emit(best, best.head())
		best.next++
	}
}

// Linearize merges the base, delta and distinct hits of hb into hb.Linear.
// The stream starts with a default-language entry for defaultLang (a
// per-script number), drops votes whose probabilities are all zero, and
// ends with a sentinel at the pass end offset.
func Linearize(hb *HitBuffer, base, delta, distinct *tables.Table, defaultLang uint8) {
	hb.Linear = hb.Linear[:0]
	n := len(hb.Base) - 1
	sentinel := hb.Base[n]

	lowest := sentinel.Offset
	for _, hits := range [][]Hit{hb.Base[:n], hb.Delta, hb.Distinct} {
		if len(hits) > 0 && hits[0].Offset < lowest {
			lowest = hits[0].Offset
		}
	}
	hb.Linear = append(hb.Linear, LinearHit{
		Offset: lowest,
		Kind:   KindDefault,
		Probs:  tables.Single(defaultLang, defaultProb),
	})

	cursors := [3]cursor{
		{hits: hb.Delta, kind: KindDelta, table: delta},
		{hits: hb.Distinct, kind: KindDistinct, table: distinct},
		{hits: hb.Base[:n], kind: KindBase, table: base},
	}
	mergeCursors([]*cursor{&cursors[0], &cursors[1], &cursors[2]}, hitOrder, func(c *cursor, h Hit) {
		if c.table == nil {
			return
		}
		for _, ps := range c.table.Decode(h.Indirect) {
			if ps.Empty() {
				continue
			}
			hb.Linear = append(hb.Linear, LinearHit{Offset: h.Offset, Kind: c.kind, Probs: ps})
		}
	})

	hb.Linear = append(hb.Linear, LinearHit{Offset: sentinel.Offset, Kind: KindSentinel})
}

// ChunkAll fills hb.ChunkStart with the index of the first linear entry of
// each chunk, plus a final entry pointing at the sentinel. Chunks hold
// chunkSize base hits; a remainder under 1.5 chunks becomes the last chunk
// and a remainder under two chunks is split into two near-equal halves. A
// stream with no base hits becomes a single chunk.
func ChunkAll(hb *HitBuffer, chunkSize int) {
	hb.ChunkStart = append(hb.ChunkStart[:0], 0)
	end := len(hb.Linear) - 1

	remaining := 0
	for _, lh := range hb.Linear[:end] {
		if lh.Kind == KindBase {
			remaining++
		}
	}

	idx := 0
	for remaining > 0 {
		take := chunkSize
		switch {
		case remaining < chunkSize+chunkSize/2:
			take = remaining
		case remaining < 2*chunkSize:
			take = (remaining + 1) / 2
		}
		for seen := 0; idx < end && seen < take; idx++ {
			if hb.Linear[idx].Kind == KindBase {
				seen++
			}
		}
		remaining -= take
		if remaining > 0 {
			hb.ChunkStart = append(hb.ChunkStart, idx)
		}
	}
	hb.ChunkStart = append(hb.ChunkStart, end)
}
