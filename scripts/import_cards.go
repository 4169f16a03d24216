package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/catalog"
	"github.com/datadeck/datadeck-server-go/internal/config"
	"github.com/datadeck/datadeck-server-go/internal/repository"
)

// Imports deck lists into the Postgres card store.
//
//	go run ./scripts/import_cards.go [-config config/config.yaml] [-deck name] [-dry-run] decks.csv|catalog.yaml
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	only := flag.String("deck", "", "import only this deck")
	dryRun := flag.Bool("dry-run", false, "validate the input without writing to the database")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to read .env: %v", err)
	}

	path := "data/decks.csv"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== Datadeck Card Import ===")
	fmt.Printf("Input file: %s\n", absPath)

	cat, err := readCatalog(absPath)
	if err != nil {
		log.Fatalf("Failed to read deck lists: %v", err)
	}

	names := cat.Names()
	if *only != "" {
		if _, err := cat.Deck(*only); err != nil {
			log.Fatalf("Deck %q not found in input (have %s)", *only, strings.Join(names, ", "))
		}
		names = []string{*only}
	}
	for _, name := range names {
		fmt.Printf("  %-20s %d cards\n", name, len(cat.Decks[name]))
	}
	if *dryRun {
		fmt.Println("✓ Input is valid (dry run, nothing written)")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("Connecting to database...")
	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("✓ Database connection established")

	repo := repository.NewCardRepository(db)
	start := time.Now()
	imported := 0
	for _, name := range names {
		defs := cat.Decks[name]
		if err := repo.ReplaceDeck(ctx, name, defs); err != nil {
			log.Fatalf("Failed to import deck %s: %v", name, err)
		}
		imported += len(defs)
	}

	fmt.Printf("✓ Imported %d cards into %d decks in %s\n", imported, len(names), time.Since(start).Round(time.Millisecond))
}

func readCatalog(path string) (*catalog.Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return catalog.LoadFile(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return catalog.ReadCSV(f)
	}
}
