package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"traderoute/internal/config"
	"traderoute/internal/database"
	"traderoute/internal/log"
	"traderoute/internal/render"
	"traderoute/internal/report"
	"traderoute/internal/routes"
	"traderoute/internal/world"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("GLOBAL PANIC recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "traderoute crashed: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Close()
		os.Exit(1)
	}
	log.Close()
}

// options are the command line settings that are not part of the config file
type options struct {
	configPath  string
	limit       int
	save        bool
	stored      bool
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "traderoute %s (%s, %s)\n", version, commit, date)
		return nil
	}

	if cfg.LogFile != "" {
		if err := log.SetFileOutput(cfg.LogFile); err != nil {
			fmt.Fprintf(stderr, "Warning: Could not configure logging to file: %v\n", err)
		}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ranking := routes.RankExperience
	if cfg.Ranking == "money" {
		ranking = routes.RankMoney
	}
	reportOpts := report.Options{Limit: opts.limit, Locale: report.ParseLocale(cfg.Locale), BBCode: true}

	if opts.stored {
		rs, err := db.LoadRoutes(ctx, ranking)
		if err != nil {
			return err
		}
		if err := report.WriteRoutes(stdout, rs, ranking, reportOpts); err != nil {
			return err
		}
		return renderRoutes(ctx, cfg, rs, stdout)
	}

	w, err := db.LoadWorld(ctx)
	if err != nil {
		return err
	}
	if len(w.Sectors) == 0 {
		return fmt.Errorf("database %s holds no world; import one with importworld first", cfg.Database)
	}

	distances, err := world.ComputeDistances(w, cfg.DistanceOptions())
	if err != nil {
		return err
	}

	genOpts := []routes.Option{routes.WithWorkers(cfg.Workers)}
	if f, ok := stderr.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		genOpts = append(genOpts, routes.WithProgress(terminalProgress(stderr)))
	}
	gen := routes.NewGenerator(genOpts...)
	log.Info("generating routes", "database", db.Filename(), "sectors", len(w.Sectors),
		"distance_pairs", distances.Pairs(), "workers", gen.Workers(), "one_way", cfg.OneWay)

	params := routes.Params{
		MaxPorts:  cfg.MaxPorts,
		NumRoutes: cfg.NumRoutes,
		Goods:     cfg.GoodsMap(),
		Races:     cfg.RacesMap(w),
		Focus:     cfg.Focus,
	}

	generate := gen.GenerateMultiPortRoutes
	if cfg.OneWay {
		generate = gen.GenerateOneWayRoutes
	}
	res, err := generate(ctx, params, w.Sectors, distances)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	if err := report.WriteResult(stdout, res, ranking, reportOpts); err != nil {
		return err
	}

	if opts.save {
		for _, r := range []routes.Ranking{routes.RankExperience, routes.RankMoney} {
			if err := db.SaveResult(ctx, r, res.Store(r).Routes()); err != nil {
				return err
			}
		}
	}

	return renderRoutes(ctx, cfg, res.Store(ranking).Routes(), stdout)
}

func parseFlags(args []string, stderr io.Writer) (*config.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("traderoute", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := config.Default()
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.IntVar(&opts.limit, "limit", 10, "routes printed per ranking (0 = all kept)")
	fs.BoolVar(&opts.save, "save", false, "store the generated routes in the database")
	fs.BoolVar(&opts.stored, "stored", false, "print routes stored by an earlier -save run instead of generating")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	db := fs.String("db", def.Database, "SQLite world database")
	logFile := fs.String("log", def.LogFile, "log file (default stderr)")
	logLevel := fs.String("log-level", def.LogLevel, "debug, info, warn or error")
	maxPorts := fs.Int("max-ports", def.MaxPorts, "most ports per loop")
	numRoutes := fs.Int("routes", def.NumRoutes, "routes kept per ranking")
	focus := fs.Int("focus", def.Focus, "only trade legs touching this sector (-1 = all)")
	workers := fs.Int("workers", def.Workers, "search workers (0 = one per CPU)")
	oneWay := fs.Bool("one-way", def.OneWay, "rank single legs with a free empty return")
	ranking := fs.String("ranking", def.Ranking, "experience or money")
	goods := fs.String("goods", "", "comma separated goods to trade (default all)")
	races := fs.String("races", "", "comma separated race ids to trade with (default all)")
	maxDistance := fs.Int("max-distance", def.MaxDistance, "skip port pairs further apart in turns (0 = unlimited)")
	renderOut := fs.String("render", "", "draw the best loops to a .dot or .png file, or sixel for the terminal")
	dither := fs.Bool("dither", def.Render.Dither, "dither sixel output")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := def
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database = *db
		case "log":
			cfg.LogFile = *logFile
		case "log-level":
			cfg.LogLevel = *logLevel
		case "max-ports":
			cfg.MaxPorts = *maxPorts
		case "routes":
			cfg.NumRoutes = *numRoutes
		case "focus":
			cfg.Focus = *focus
		case "workers":
			cfg.Workers = *workers
		case "one-way":
			cfg.OneWay = *oneWay
		case "ranking":
			cfg.Ranking = *ranking
		case "goods":
			cfg.Goods = splitList(*goods)
		case "races":
			ids, err := parseIDs(*races)
			if err != nil {
				parseErr = err
			}
			cfg.Races = ids
		case "max-distance":
			cfg.MaxDistance = *maxDistance
		case "render":
			cfg.Render.Enabled = *renderOut != ""
			cfg.Render.Output = *renderOut
		case "dither":
			cfg.Render.Dither = *dither
		}
	})
	if parseErr != nil {
		return nil, opts, parseErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range splitList(s) {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid race id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// terminalProgress redraws a single status line
func terminalProgress(w io.Writer) routes.ProgressFunc {
	return func(completed, total int) {
		fmt.Fprintf(w, "\rsearching origins %d/%d", completed, total)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}

func renderRoutes(ctx context.Context, cfg *config.Config, rs []routes.Route, stdout io.Writer) error {
	if !cfg.Render.Enabled || len(rs) == 0 {
		return nil
	}
	if n := cfg.Render.Routes; n > 0 && len(rs) > n {
		rs = rs[:n]
	}

	opts := render.Options{
		Format: render.FormatFor(cfg.Render.Output),
		Width:  cfg.Render.Width,
		Dither: cfg.Render.Dither,
	}
	if opts.Format == render.FormatSixel {
		if f, ok := stdout.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
			log.Warn("sixel output needs a terminal, skipping map")
			return nil
		}
		return render.Render(ctx, stdout, rs, opts)
	}

	f, err := os.Create(cfg.Render.Output)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer f.Close()
	if err := render.Render(ctx, f, rs, opts); err != nil {
		return err
	}
	log.Info("route map written", "file", cfg.Render.Output, "routes", len(rs))
	return nil
}
