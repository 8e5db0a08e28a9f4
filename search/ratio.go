package search

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Candidates at least this long drop their most frequent runes from match
// seeding, like difflib's autojunk heuristic.
const autojunkMinLen = 200

// Ratio returns the similarity of a and b in [0, 1]: twice the number of runes
// found in common matching blocks divided by the total number of runes.
//
// Matching blocks are found by repeatedly taking the longest common run and
// recursing on both sides of it. Runes of b that are not letters, digits or
// underscores are junk: they never start a match but may extend one.
func Ratio(a, b string) float64 {
	ra := []rune(norm.NFC.String(a))
	rb := []rune(norm.NFC.String(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(newMatcher(ra, rb).matches()) / float64(total)
}

func isJunk(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

type matcher struct {
	a, b     []rune
	b2j      map[rune][]int
	junk     map[rune]bool
	j2len    map[int]int
	newj2len map[int]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{
		a:        a,
		b:        b,
		b2j:      make(map[rune][]int),
		junk:     make(map[rune]bool),
		j2len:    make(map[int]int),
		newj2len: make(map[int]int),
	}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	for r := range m.b2j {
		if isJunk(r) {
			m.junk[r] = true
			delete(m.b2j, r)
		}
	}
	if n := len(b); n >= autojunkMinLen {
		limit := n/100 + 1
		for r, js := range m.b2j {
			if len(js) > limit {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

// matches returns the total size of the matching blocks of a and b.
func (m *matcher) matches() int {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	total := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longestMatch finds the longest matching block in a[alo:ahi] and b[blo:bhi].
// Among blocks of equal size it returns the one starting earliest in a, then
// earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	clear(m.j2len)
	for i := alo; i < ahi; i++ {
		clear(m.newj2len)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := m.j2len[j-1] + 1
			m.newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		m.j2len, m.newj2len = m.newj2len, m.j2len
	}

	a, b := m.a, m.b
	// Extend with non-junk runes first, then with junk, on both sides.
	for besti > alo && bestj > blo && !m.junk[b[bestj-1]] && a[besti-1] == b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && !m.junk[b[bestj+bestsize]] &&
		a[besti+bestsize] == b[bestj+bestsize] {
		bestsize++
	}
	for besti > alo && bestj > blo && m.junk[b[bestj-1]] && a[besti-1] == b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.junk[b[bestj+bestsize]] &&
		a[besti+bestsize] == b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}
