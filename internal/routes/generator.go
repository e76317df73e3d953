package routes

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"traderoute/internal/log"
	"traderoute/internal/world"
)

// ErrInvalidParams is returned when generation parameters are out of range
var ErrInvalidParams = errors.New("invalid route parameters")

// Params describe one generation
type Params struct {
	MaxPorts  int                 // most legs a loop may have
	NumRoutes int                 // routes kept per ranking
	Goods     map[world.Good]bool // enabled goods, world.Nothing included
	Races     map[int]bool        // permitted races by id
	Focus     int                 // only legs touching this sector; NoFocus for all
}

// DefaultParams enables every good and keeps the best 100 two-port loops
func DefaultParams() Params {
	return Params{
		MaxPorts:  2,
		NumRoutes: 100,
		Goods:     world.AllGoods(),
		Races:     map[int]bool{},
		Focus:     NoFocus,
	}
}

// Validate checks the numeric parameters
func (p Params) Validate() error {
	if p.MaxPorts < 1 {
		return fmt.Errorf("%w: max ports must be at least 1, got %d", ErrInvalidParams, p.MaxPorts)
	}
	if p.NumRoutes < 0 {
		return fmt.Errorf("%w: number of routes must not be negative, got %d", ErrInvalidParams, p.NumRoutes)
	}
	if p.Focus < 0 && p.Focus != NoFocus {
		return fmt.Errorf("%w: invalid focus sector %d", ErrInvalidParams, p.Focus)
	}
	return nil
}

// Result holds the best routes of a finished generation
type Result struct {
	Exp     *Store
	Money   *Store
	Origins int
	Edges   int
	Elapsed time.Duration
}

// Store returns the result store for a ranking
func (r *Result) Store(ranking Ranking) *Store {
	if ranking == RankMoney {
		return r.Money
	}
	return r.Exp
}

// Generator runs route generations on a fixed-size worker pool. Generations
// on the same Generator run one at a time.
type Generator struct {
	mu       sync.Mutex
	workers  int
	progress ProgressObserver
}

// Option configures a Generator
type Option func(*Generator)

// WithWorkers sets the worker pool width; values below 1 are ignored
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithProgress sets the observer told about finished origin tasks
func WithProgress(observer ProgressObserver) Option {
	return func(g *Generator) {
		g.progress = observer
	}
}

// NewGenerator creates a generator using one worker per CPU by default
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Workers returns the worker pool width
func (g *Generator) Workers() int {
	return g.workers
}

// GenerateMultiPortRoutes finds closed trade loops of up to p.MaxPorts legs and
// keeps the best p.NumRoutes by experience and by money. If ctx is cancelled
// the generation is abandoned and no result is returned.
func (g *Generator) GenerateMultiPortRoutes(ctx context.Context, p Params, sectors map[int]*world.Sector, distances world.Distances) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	edges := BuildOneWayRoutes(sectors, distances, p.Goods, p.Races, p.Focus)
	return g.findMultiPortRoutes(ctx, p, edges)
}

func (g *Generator) findMultiPortRoutes(ctx context.Context, p Params, edges EdgeIndex) (*Result, error) {
	start := time.Now()
	gen := newGeneration(edges, p.MaxPorts, p.NumRoutes)
	origins := edges.Origins()
	tracker := newProgressTracker(g.progress, len(origins))

	log.Info("starting multi-port generation",
		"origins", len(origins), "edges", edges.Count(), "max_ports", p.MaxPorts,
		"routes", p.NumRoutes, "workers", g.workers)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, origin := range origins {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := newSearcher(gen, origin).run(egCtx, edges[origin]); err != nil {
				return err
			}
			tracker.done()
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		gen.discard()
		log.Warn("multi-port generation aborted", "error", err)
		return nil, fmt.Errorf("route generation aborted: %w", err)
	}

	result := &Result{
		Exp:     gen.exp,
		Money:   gen.money,
		Origins: len(origins),
		Edges:   edges.Count(),
		Elapsed: time.Since(start),
	}
	log.Info("multi-port generation finished",
		"exp_routes", result.Exp.Len(), "money_routes", result.Money.Len(),
		"limit", result.Exp.Limit(), "elapsed", result.Elapsed)
	return result, nil
}

// GenerateOneWayRoutes ranks single legs instead of true loops: every one-way
// route is paired with a free empty return and scored like a two-leg loop.
func (g *Generator) GenerateOneWayRoutes(ctx context.Context, p Params, sectors map[int]*world.Sector, distances world.Distances) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	edges := BuildOneWayRoutes(sectors, distances, p.Goods, p.Races, p.Focus)
	gen := newGeneration(edges, p.MaxPorts, p.NumRoutes)
	for _, origin := range edges.Origins() {
		if err := ctx.Err(); err != nil {
			gen.discard()
			return nil, fmt.Errorf("route generation aborted: %w", err)
		}
		for _, owr := range edges[origin] {
			gen.submit(oneWayLoop(owr))
		}
	}
	gen.trim()

	result := &Result{
		Exp:     gen.exp,
		Money:   gen.money,
		Origins: len(edges),
		Edges:   edges.Count(),
		Elapsed: time.Since(start),
	}
	log.Info("one-way generation finished",
		"edges", result.Edges, "exp_routes", result.Exp.Len(), "money_routes", result.Money.Len())
	return result, nil
}
