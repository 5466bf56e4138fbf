package repository

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/okian/castaway/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then key ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the board from
// best to worst.

// scoreScale converts points to fixed point with six decimals.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*scoreScale >= math.MaxInt64:
		return scoreFP(math.MaxInt64)
	case x*scoreScale <= math.MinInt64:
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// record is the best entry stored for a key.
type record struct {
	score scoreFP
	entry Entry
}

type node struct {
	key   string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore scoreFP, aKey string, bScore scoreFP, bKey string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aKey < bKey
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority hashes the key (FNV-1a) so tree shape does not depend on
// insertion order.
func priority(key string) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= 1099511628211
	}
	return h
}

func insert(n *node, key string, score scoreFP) *node {
	if n == nil {
		return &node{key: key, score: score, prio: priority(key), size: 1}
	}
	if less(score, key, n.score, n.key) {
		n.left = insert(n.left, key, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, key string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && key == n.key:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, key, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, key, score)
		}
	case less(score, key, n.score, n.key):
		n.left = deleteNode(n.left, key, score)
	default:
		n.right = deleteNode(n.right, key, score)
	}
	fix(n)
	return n
}

// last returns the lowest ranked node.
func last(n *node) *node {
	for n != nil && n.right != nil {
		n = n.right
	}
	return n
}

// position returns the number of nodes ranked before (score, key).
func position(n *node, key string, score scoreFP) int {
	pos := 0
	for n != nil {
		switch {
		case score == n.score && key == n.key:
			return pos + nsize(n.left)
		case less(score, key, n.score, n.key):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return pos
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, ok := records[n.key]; ok {
			*out = append(*out, rec.entry)
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// Board is an ordered, concurrency-safe leaderboard of roster compositions.
type Board struct {
	mu       sync.RWMutex
	root     *node
	byKey    map[string]record
	capacity int
}

var _ Store = (*Board)(nil)

// NewBoard constructs an empty board.
func NewBoard(opts ...Option) *Board {
	b := &Board{byKey: make(map[string]record)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// UpdateBest implements Store.UpdateBest with O(log n) expected time.
func (b *Board) UpdateBest(_ context.Context, e Entry) (bool, error) {
	if e.Key == "" {
		metrics.RecordErrorByComponent("repository", "empty_key")
		return false, ErrEmptyKey
	}
	ns := toFixedPoint(e.Score)
	e.Score = toFloat(ns)
	e.Rank = 0
	e.Members = slices.Clone(e.Members)

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.byKey[e.Key]; ok {
		if ns <= old.score {
			return false, nil
		}
		b.root = deleteNode(b.root, e.Key, old.score)
	} else if b.capacity > 0 && len(b.byKey) >= b.capacity {
		worst := last(b.root)
		if !less(ns, e.Key, worst.score, worst.key) {
			return false, nil
		}
		b.root = deleteNode(b.root, worst.key, worst.score)
		delete(b.byKey, worst.key)
	}
	b.byKey[e.Key] = record{score: ns, entry: e}
	b.root = insert(b.root, e.Key, ns)
	return true, nil
}

// Rank returns the dense rank and best entry for key: equal scores share
// a rank. Cost is linear in the number of entries ranked ahead.
func (b *Board) Rank(_ context.Context, key string) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.byKey[key]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	// The empty key sorts first among equal scores, so position counts
	// only strictly better entries.
	ahead := position(b.root, "", rec.score)
	head := make([]Entry, 0, ahead)
	collectTopN(b.root, ahead, b.byKey, &head)
	assignRanksWithTies(head)

	e := rec.entry
	e.Rank = 1
	if len(head) > 0 {
		e.Rank = head[len(head)-1].Rank + 1
	}
	return e, nil
}

// TopN returns the top n entries ordered by score desc.
func (b *Board) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(b.byKey)))
	collectTopN(b.root, n, b.byKey, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of keys on the board.
func (b *Board) Count(_ context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byKey)
}

// assignRanksWithTies assigns dense ranks: equal scores share a rank and
// the next score takes the following one.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}
}
