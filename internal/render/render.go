// Package render draws trade loops as a sector map.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/png"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/mattn/go-sixel"
	xdraw "golang.org/x/image/draw"

	"traderoute/internal/routes"
	"traderoute/internal/world"
)

// ErrNoRoutes is returned when there is nothing to draw
var ErrNoRoutes = errors.New("no routes to render")

// Format is an output format
type Format string

const (
	FormatDOT   Format = "dot"
	FormatPNG   Format = "png"
	FormatSixel Format = "sixel"
)

// FormatFor picks the format from an output path; "sixel" or "-" mean the terminal
func FormatFor(output string) Format {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".dot", ".gv":
		return FormatDOT
	case ".png":
		return FormatPNG
	}
	return FormatSixel
}

// Options control rendering
type Options struct {
	Format Format
	Width  int  // sixel width in pixels; 0 keeps the rendered size
	Dither bool // dithered sixel encoding
}

// routeColors cycles over loops so overlapping loops stay apart
var routeColors = []string{"firebrick", "royalblue", "forestgreen", "darkorange", "purple", "teal", "goldenrod", "deeppink"}

// Render writes a map of rs to w
func Render(ctx context.Context, w io.Writer, rs []routes.Route, opts Options) error {
	if len(rs) == 0 {
		return ErrNoRoutes
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	g, err := buildGraph(gv, rs)
	if err != nil {
		return err
	}
	defer g.Close()

	switch opts.Format {
	case FormatDOT:
		if err := gv.Render(ctx, g, "dot", w); err != nil {
			return fmt.Errorf("failed to render dot: %w", err)
		}
		return nil
	case FormatPNG:
		if err := gv.Render(ctx, g, graphviz.PNG, w); err != nil {
			return fmt.Errorf("failed to render png: %w", err)
		}
		return nil
	case FormatSixel:
		var buf bytes.Buffer
		if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
			return fmt.Errorf("failed to render png: %w", err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("failed to decode rendered png: %w", err)
		}
		if opts.Width > 0 {
			img = Scale(img, opts.Width)
		}
		return WriteSixel(w, img, opts.Dither)
	default:
		return fmt.Errorf("unknown render format %q", opts.Format)
	}
}

// buildGraph adds one node per sector and one edge per leg, colored by loop.
// Empty legs are dashed and the legs closing a loop are bold.
func buildGraph(gv *graphviz.Graphviz, rs []routes.Route) (*graphviz.Graph, error) {
	g, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz graph: %w", err)
	}
	g.SetRankDir(cgraph.LRRank)
	if _, err := g.Attr(int(cgraph.NODE), "shape", "box"); err != nil {
		return nil, fmt.Errorf("failed to set node defaults: %w", err)
	}

	nodes := make(map[int]*graphviz.Node)
	node := func(sector int, origin bool) (*graphviz.Node, error) {
		if n, ok := nodes[sector]; ok {
			if origin {
				n.SetStyle("filled,rounded")
			}
			return n, nil
		}
		n, err := g.CreateNodeByName(fmt.Sprintf("s%d", sector))
		if err != nil {
			return nil, fmt.Errorf("failed to create node for sector %d: %w", sector, err)
		}
		n.SetLabel(fmt.Sprintf("%d", sector))
		n.SetFillColor("lightyellow")
		n.SetStyle("rounded")
		if origin {
			n.SetStyle("filled,rounded")
		}
		nodes[sector] = n
		return n, nil
	}

	for i, r := range rs {
		color := routeColors[i%len(routeColors)]
		forward, closing := r.Legs(), []*routes.OneWayRoute(nil)
		if mpr, ok := r.(*routes.MultiplePortRoute); ok {
			forward, closing = mpr.Forward().Legs(), mpr.Return().Legs()
		}
		legs := append(slices.Clone(forward), closing...)

		for j, leg := range legs {
			from, err := node(leg.SellSector, j == 0)
			if err != nil {
				return nil, err
			}
			to, err := node(leg.BuySector, false)
			if err != nil {
				return nil, err
			}
			e, err := g.CreateEdgeByName(fmt.Sprintf("r%d_l%d", i, j), from, to)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge %d of route %d: %w", j, i, err)
			}
			e.SetColor(color)
			e.SetFontColor(color)
			e.SetLabel(leg.Good.Name())

			var styles []string
			if leg.Good == world.Nothing {
				styles = append(styles, "dashed")
			}
			if j >= len(forward) {
				styles = append(styles, "bold")
			}
			if len(styles) > 0 {
				e.SetStyle(cgraph.EdgeStyle(strings.Join(styles, ",")))
			}
		}
	}
	return g, nil
}

// Scale resizes img to width pixels keeping its aspect ratio
func Scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || width <= 0 {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// WriteSixel encodes img as sixel graphics. Dithered output goes through the
// sixel encoder; otherwise the image is mapped onto the Plan 9 palette.
func WriteSixel(w io.Writer, img image.Image, dither bool) error {
	if dither {
		enc := sixel.NewEncoder(w)
		enc.Dither = true
		if err := enc.Encode(img); err != nil {
			return fmt.Errorf("failed to encode sixel: %w", err)
		}
		return nil
	}

	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
	if err := rasterm.SixelWriteImage(w, paletted); err != nil {
		return fmt.Errorf("failed to encode sixel: %w", err)
	}
	return nil
}
