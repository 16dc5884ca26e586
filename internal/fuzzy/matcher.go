package fuzzy

import "sort"

// autojunkMinLen is the length at which popular runes stop seeding matches.
const autojunkMinLen = 200

type block struct {
	a, b, size int
}

// matcher finds matching blocks between two rune sequences using the
// longest-common-block recursion. Runes occurring in more than 1% of a long b
// sequence are ignored when seeding matches, although they may still extend a
// match at its edges.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	if n := len(b); n >= autojunkMinLen {
		limit := n/100 + 1
		for r, idxs := range m.b2j {
			if len(idxs) > limit {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

func (m *matcher) longestMatch(alo, ahi, blo, bhi int) block {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return block{a: besti, b: bestj, size: bestsize}
}

// matchingBlocks returns the non-adjacent matching blocks ordered by position,
// terminated by the sentinel {len(a), len(b), 0}.
func (m *matcher) matchingBlocks() []block {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var found []block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if x.size == 0 {
			continue
		}
		found = append(found, x)
		if s.alo < x.a && s.blo < x.b {
			queue = append(queue, span{s.alo, x.a, s.blo, x.b})
		}
		if x.a+x.size < s.ahi && x.b+x.size < s.bhi {
			queue = append(queue, span{x.a + x.size, s.ahi, x.b + x.size, s.bhi})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].a != found[j].a {
			return found[i].a < found[j].a
		}
		return found[i].b < found[j].b
	})

	collapsed := make([]block, 0, len(found)+1)
	cur := block{}
	for _, x := range found {
		if cur.a+cur.size == x.a && cur.b+cur.size == x.b {
			cur.size += x.size
			continue
		}
		if cur.size > 0 {
			collapsed = append(collapsed, cur)
		}
		cur = x
	}
	if cur.size > 0 {
		collapsed = append(collapsed, cur)
	}
	return append(collapsed, block{a: len(m.a), b: len(m.b)})
}

// similarity returns 2*M/T for the two sequences, 1 when both are empty.
func similarity(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	matches := 0
	for _, x := range newMatcher(a, b).matchingBlocks() {
		matches += x.size
	}
	return 2 * float64(matches) / float64(total)
}
