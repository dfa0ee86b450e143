package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/goldedge/rewards/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: total DESC, then userID ASC (deterministic). "less" means ranks
// earlier, so in-order traversal yields the leaderboard from best to worst.
// Nodes carry subtree sizes, which gives ranks in O(log n).

// cents is a KES amount in fixed point, so repeated additions stay exact.
type cents int64

func toCents(x float64) cents {
	return cents(math.Round(x * 100))
}

func (c cents) float() float64 {
	return float64(c) / 100
}

// record holds the per-user totals.
type record struct {
	total      cents
	events     int
	lastSource string
}

type node struct {
	id    string
	total cents
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

// less returns true if (aTotal, aID) should appear before (bTotal, bID).
func less(aTotal cents, aID string, bTotal cents, bID string) bool {
	if aTotal != bTotal {
		return aTotal > bTotal
	}
	return aID < bID
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

func insert(n *node, id string, total cents, prio uint64) *node {
	if n == nil {
		return &node{id: id, total: total, prio: prio, size: 1}
	}
	if less(total, id, n.total, n.id) {
		n.left = insert(n.left, id, total, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, total, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, total cents) *node {
	if n == nil {
		return nil
	}
	switch {
	case total == n.total && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, total)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, total)
		}
	case less(total, id, n.total, n.id):
		n.left = deleteNode(n.left, id, total)
	default:
		n.right = deleteNode(n.right, id, total)
	}
	fix(n)
	return n
}

// countAbove returns how many users earned strictly more than total.
func countAbove(n *node, total cents) int {
	count := 0
	for n != nil {
		if n.total > total {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		rec := records[n.id]
		*out = append(*out, Entry{UserID: n.id, Total: rec.total.float(), Events: rec.events, LastSource: rec.lastSource})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// assignRanks gives equal totals the same rank and skips the ranks they
// occupy (1, 1, 3). Entries must be a prefix of the leaderboard.
func assignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Total == entries[i-1].Total {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// TreapStore is the in-memory leaderboard. It is safe for concurrent use.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	rng  *rand.Rand
}

// NewTreapStore constructs an empty leaderboard.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]record),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // tree balancing only
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateLeaderboardUsers(0)
	return s
}

// Add implements Store.Add in O(log n) expected time.
func (s *TreapStore) Add(_ context.Context, userID string, amount float64, source string) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardLatency("add", float64(time.Since(start).Microseconds())/1000)
	}()

	if userID == "" {
		return 0, fmt.Errorf("%w: empty user id", ErrInvalidAmount)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	rec, existed := s.byID[userID]
	if existed {
		s.root = deleteNode(s.root, userID, rec.total)
	}
	rec.total += toCents(amount)
	rec.events++
	rec.lastSource = source
	s.byID[userID] = rec
	s.root = insert(s.root, userID, rec.total, s.rng.Uint64())
	count := len(s.byID)
	s.mu.Unlock()

	if !existed {
		metrics.UpdateLeaderboardUsers(count)
	}
	return rec.total.float(), nil
}

// Rank returns the current rank and total for a user in O(log n).
func (s *TreapStore) Rank(_ context.Context, userID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardLatency("rank", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{
		Rank:       countAbove(s.root, rec.total) + 1,
		UserID:     userID,
		Total:      rec.total.float(),
		Events:     rec.events,
		LastSource: rec.lastSource,
	}, nil
}

// TopN returns the top N entries ordered by total desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardLatency("top", float64(time.Since(start).Microseconds())/1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, s.byID, &out)
	assignRanks(out)
	return out, nil
}

// Count returns the number of ranked users.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
