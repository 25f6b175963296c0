package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/meur/gearforge/internal/catalog"
	"github.com/meur/gearforge/internal/config"
	"github.com/meur/gearforge/internal/console"
	"github.com/meur/gearforge/internal/extract"
	"github.com/meur/gearforge/internal/logger"
	"github.com/meur/gearforge/internal/models"
	"github.com/meur/gearforge/internal/storage"
)

func main() {
	out := console.New()
	if err := run(os.Args[1:], out); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		out.Fail("Failed to import items: %v", err)
		os.Exit(1)
	}
}

func run(args []string, out *console.Printer) error {
	fs := flag.NewFlagSet("import_items", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("GEARFORGE_CONFIG"), "YAML config file")
	dbPath := fs.String("db", "", "SQLite database path")
	summaryPath := fs.String("summary", "", "Summary JSON written by extract_items")
	htmlPath := fs.String("html", "", "Import straight from a saved guide page instead of the summary")
	gameID := fs.String("game-id", "", "Game ID")
	sheetID := fs.String("sheet-id", "", "Sheet ID")
	dryRun := fs.Bool("dry-run", false, "Print summary without writing to the database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *summaryPath != "" {
		cfg.Extract.SummaryPath = *summaryPath
	}
	if *gameID != "" {
		cfg.Database.GameID = *gameID
	}
	if *sheetID != "" {
		cfg.Database.SheetID = *sheetID
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	var records []extract.Record
	if *htmlPath != "" {
		records, err = recordsFromHTML(*htmlPath, cfg.Extract.Strategy)
	} else {
		records, err = recordsFromSummary(cfg.Extract.SummaryPath)
	}
	if err != nil {
		return err
	}
	out.Info("📦 Loaded %d items", len(records))

	store, err := openStore(cfg.Database.Path, *dryRun)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	existing := map[string]string{}
	if store != nil {
		defer store.Close()
		existing, err = store.ItemImageIDs(cfg.Database.GameID, cfg.Database.SheetID)
		if err != nil {
			return fmt.Errorf("read existing items: %w", err)
		}
	}

	items := buildItems(cfg.Database.GameID, cfg.Database.SheetID, records)
	created, updated := 0, 0
	for _, item := range items {
		if _, ok := existing[item.Name]; ok {
			updated++
		} else {
			created++
		}
	}
	removed := 0
	for name := range existing {
		if !containsName(items, name) {
			removed++
		}
	}

	if *dryRun {
		out.Info("Dry run: would import %d items (created %d, updated %d, removed %d). Existing items: %d",
			len(items), created, updated, removed, len(existing))
		return nil
	}

	if err := store.SaveGame(models.DiabloIV(cfg.Database.GameID, cfg.Database.SheetID)); err != nil {
		return fmt.Errorf("create game record: %w", err)
	}
	if err := store.ReplaceSheetItems(cfg.Database.GameID, cfg.Database.SheetID, items); err != nil {
		return err
	}

	log.Debug("Imported items",
		logger.String("db", cfg.Database.Path),
		logger.String("game_id", cfg.Database.GameID),
		logger.String("sheet_id", cfg.Database.SheetID),
		logger.Int("items", len(items)),
	)
	out.Success("Imported %d items (created %d, updated %d, removed %d)", len(items), created, updated, removed)
	return nil
}

// openStore opens the catalog for writing, or read-only for a dry run. A dry
// run against a missing database returns a nil store and creates nothing.
func openStore(path string, dryRun bool) (*storage.Store, error) {
	if !dryRun {
		return storage.New(path)
	}
	store, err := storage.OpenReadOnly(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return store, err
}

func recordsFromSummary(path string) ([]extract.Record, error) {
	summary, err := catalog.ReadSummary(path)
	if err != nil {
		return nil, fmt.Errorf("read summary %s: %w", path, err)
	}
	records := make([]extract.Record, 0, len(summary.Items))
	for _, name := range catalog.SortedNames(summary.Items) {
		records = append(records, extract.Record{Name: name, ImageID: summary.Items[name]})
	}
	return records, nil
}

func recordsFromHTML(path, strategy string) ([]extract.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := extract.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	return extract.New(extract.WithStrategy(s)).Records(string(data))
}

// buildItems collapses records by name, last one wins, keeping first-seen order.
func buildItems(gameID, sheetID string, records []extract.Record) []models.Item {
	index := make(map[string]int, len(records))
	items := make([]models.Item, 0, len(records))
	for _, rec := range records {
		item := models.Item{
			ID:       models.StableItemID(gameID, sheetID, rec.Name),
			GameID:   gameID,
			SheetID:  sheetID,
			Name:     rec.Name,
			ImageID:  rec.ImageID,
			Icon:     catalog.ImageURL(rec.ImageID),
			Category: string(rec.Category),
			Data: map[string]interface{}{
				"image_id": rec.ImageID,
				"category": string(rec.Category),
			},
		}
		if i, ok := index[rec.Name]; ok {
			items[i] = item
			continue
		}
		index[rec.Name] = len(items)
		items = append(items, item)
	}
	return items
}

func containsName(items []models.Item, name string) bool {
	for _, item := range items {
		if item.Name == name {
			return true
		}
	}
	return false
}
