package routes

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
)

// Ranking selects the score a Store orders routes by
type Ranking int

const (
	RankExperience Ranking = iota
	RankMoney
)

func (r Ranking) String() string {
	switch r {
	case RankExperience:
		return "experience"
	case RankMoney:
		return "money"
	default:
		return fmt.Sprintf("Ranking(%d)", int(r))
	}
}

// Score returns the route's overall multiplier for this ranking
func (r Ranking) Score(route Route) float64 {
	if r == RankMoney {
		return route.MoneyMultiplier()
	}
	return route.ExpMultiplier()
}

// Store keeps the best routes for one ranking, bounded to roughly limit routes.
// Routes sharing an exact score share a bucket. Only positive scores are kept,
// and scores at or below the reject threshold are discarded without taking the lock.
type Store struct {
	ranking Ranking
	limit   int

	mu      sync.Mutex
	keys    *btree.BTreeG[float64]
	buckets map[float64][]Route
	size    int

	// math.Float64bits of the threshold; 0 until the store first drops a bucket
	threshold atomic.Uint64
}

const storeDegree = 32

func lessScore(a, b float64) bool { return a < b }

// NewStore creates an empty store that keeps the best limit routes
func NewStore(ranking Ranking, limit int) *Store {
	if limit < 0 {
		limit = 0
	}
	return &Store{
		ranking: ranking,
		limit:   limit,
		keys:    btree.NewG[float64](storeDegree, lessScore),
		buckets: make(map[float64][]Route),
	}
}

func (s *Store) Ranking() Ranking { return s.ranking }
func (s *Store) Limit() int       { return s.limit }

func (s *Store) loadThreshold() float64 {
	return math.Float64frombits(s.threshold.Load())
}

// raiseThreshold never lowers the threshold. Callers hold mu.
func (s *Store) raiseThreshold(v float64) {
	if v > s.loadThreshold() {
		s.threshold.Store(math.Float64bits(v))
	}
}

// Threshold returns the reject threshold and whether it has been raised
func (s *Store) Threshold() (float64, bool) {
	v := s.loadThreshold()
	return v, v > 0
}

// Accepts reports whether a route with this score could currently be inserted
func (s *Store) Accepts(score float64) bool {
	return !math.IsNaN(score) && score > s.loadThreshold()
}

// Add inserts the route under its score for the store's ranking
func (s *Store) Add(route Route) bool {
	return s.Insert(route, s.ranking.Score(route))
}

// Insert adds route to the bucket for score. It returns false when the route
// was rejected by the threshold or evicted straight away.
func (s *Store) Insert(route Route, score float64) bool {
	if !s.Accepts(score) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The threshold may have moved while we waited for the lock.
	if !s.Accepts(score) {
		return false
	}

	if bucket, ok := s.buckets[score]; ok {
		s.buckets[score] = append(bucket, route)
		s.size++
		return true
	}

	s.keys.ReplaceOrInsert(score)
	s.buckets[score] = []Route{route}
	s.size++

	if s.keys.Len() > s.limit {
		lowest, _ := s.keys.DeleteMin()
		s.size -= len(s.buckets[lowest])
		delete(s.buckets, lowest)
		if next, ok := s.keys.Min(); ok {
			s.raiseThreshold(next)
		}
		if lowest == score {
			return false
		}
	}
	return true
}

// Trim keeps the highest-scoring buckets until at least limit routes are
// kept and drops the rest. The last kept bucket may push the total past limit.
func (s *Store) Trim() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := 0
	cutoff := math.Inf(1)
	s.keys.Descend(func(score float64) bool {
		if kept >= s.limit {
			return false
		}
		kept += len(s.buckets[score])
		cutoff = score
		return true
	})

	var firstDiscarded float64
	discarded := false
	for {
		lowest, ok := s.keys.Min()
		if !ok || lowest >= cutoff {
			break
		}
		s.keys.DeleteMin()
		s.size -= len(s.buckets[lowest])
		delete(s.buckets, lowest)
		firstDiscarded, discarded = lowest, true
	}
	if !discarded {
		return
	}
	s.raiseThreshold(firstDiscarded)

	invariant(s.size == kept, "trim kept %d routes but store holds %d", kept, s.size)
}

// Reset empties the store and lowers the threshold back to zero
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys.Clear(false)
	s.buckets = make(map[float64][]Route)
	s.size = 0
	s.threshold.Store(0)
}

// Len returns the number of routes held
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Buckets returns the number of distinct scores held
func (s *Store) Buckets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys.Len()
}

// Scores returns the distinct scores, highest first
func (s *Store) Scores() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make([]float64, 0, s.keys.Len())
	s.keys.Descend(func(score float64) bool {
		scores = append(scores, score)
		return true
	})
	return scores
}

// Bucket returns a copy of the routes sharing score
func (s *Store) Bucket(score float64) []Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.buckets[score])
}

// Routes returns every route, highest score first
func (s *Store) Routes() []Route {
	return s.Best(-1)
}

// Best returns up to n routes, highest score first. A negative n returns all.
func (s *Store) Best(n int) []Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 || n > s.size {
		n = s.size
	}
	out := make([]Route, 0, n)
	s.keys.Descend(func(score float64) bool {
		for _, r := range s.buckets[score] {
			if len(out) == n {
				return false
			}
			out = append(out, r)
		}
		return len(out) < n
	})
	return out
}

// invariant panics when a programming invariant does not hold
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("routes: invariant violated: "+format, args...))
	}
}
