// Command importworld loads a YAML universe into a route database, or
// exports the stored world back to YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"traderoute/internal/database"
	"traderoute/internal/log"
	"traderoute/internal/world"
)

func main() {
	var (
		input  = flag.String("in", "universe.yaml", "YAML universe to import")
		dbPath = flag.String("db", "world.db", "SQLite database to write")
		export = flag.String("export", "", "write the stored world to this YAML file instead of importing (- for stdout)")
		quiet  = flag.Bool("q", false, "only log warnings and errors")
	)
	flag.Parse()

	if *quiet {
		log.SetLevel(slog.LevelWarn)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if *export != "" {
		if err := exportWorld(ctx, db, *export); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting world: %v\n", err)
			os.Exit(1)
		}
		return
	}

	w, err := importWorld(ctx, db, *input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing world: %v\n", err)
		os.Exit(1)
	}
	planets, located := 0, 0
	for _, s := range w.Sectors {
		if s.HasPlanet() {
			planets++
		}
		if s.HasLocation() {
			located++
		}
	}
	fmt.Printf("Imported %d sectors (%d ports, %d planets, %d with locations) into %s\n",
		len(w.Sectors), len(w.PortSectors()), planets, located, db.Filename())
}

func importWorld(ctx context.Context, db *database.DB, path string) (*world.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := decodeUniverse(f)
	if err != nil {
		return nil, err
	}
	if err := db.SaveWorld(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func exportWorld(ctx context.Context, db *database.DB, path string) error {
	w, err := db.LoadWorld(ctx)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return encodeUniverse(out, w)
}
