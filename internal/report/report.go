// Package report prints generated routes for humans.
package report

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"traderoute/internal/routes"
)

// Options control a report
type Options struct {
	Limit  int          // routes printed; 0 prints all
	Locale language.Tag // number formatting
	BBCode bool         // print legs with forum sector tags instead of plain ids
}

// DefaultOptions prints the ten best routes with English number formatting
func DefaultOptions() Options {
	return Options{Limit: 10, Locale: language.English, BBCode: true}
}

// ParseLocale returns the tag for s, falling back to English
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// WriteResult prints the header of a finished generation and its best routes for ranking
func WriteResult(w io.Writer, res *routes.Result, ranking routes.Ranking, opts Options) error {
	p := message.NewPrinter(opts.Locale)
	store := res.Store(ranking)
	if _, err := p.Fprintf(w, "%d routes by %s from %d origins and %d legs in %s\n",
		store.Len(), ranking, res.Origins, res.Edges, res.Elapsed.Round(time.Millisecond)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return WriteRoutes(w, store.Best(limit(opts.Limit)), ranking, opts)
}

// WriteRoutes prints routes in the given order with both multipliers
func WriteRoutes(w io.Writer, rs []routes.Route, ranking routes.Ranking, opts Options) error {
	p := message.NewPrinter(opts.Locale)
	if opts.Limit > 0 && len(rs) > opts.Limit {
		rs = rs[:opts.Limit]
	}
	for i, r := range rs {
		if _, err := p.Fprintf(w, "#%d  %s %.2f  exp %.2f  money %.2f  %d legs\n",
			i+1, ranking, ranking.Score(r), r.ExpMultiplier(), r.MoneyMultiplier(), r.Turns()); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		for _, leg := range r.Legs() {
			if _, err := fmt.Fprintf(w, "    %s\n", legLine(leg, opts.BBCode)); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
	}
	return nil
}

func legLine(leg *routes.OneWayRoute, bbcode bool) string {
	if bbcode {
		return leg.String()
	}
	return fmt.Sprintf("%d -> %d (%d turns) %s", leg.SellSector, leg.BuySector, leg.Distance.Turns, leg.Good.Name())
}

func limit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
