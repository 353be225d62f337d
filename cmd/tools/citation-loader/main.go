// cmd/tools/citation-loader/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"legal-rag-workers/internal/common/config"
	"legal-rag-workers/internal/common/database"
	"legal-rag-workers/internal/stores/graphstore"
)

// Loads a JSON citation dataset into the SQLite citation graph:
//
//	{"cases": [{"caseId": "...", "court": "...", "courtLevel": 4, "decidedYear": 1990}],
//	 "citations": [{"citing": "...", "cited": "..."}]}
func main() {
	file := flag.String("file", "", "Citation dataset (JSON)")
	dbPath := flag.String("db", "", "Graph database path; defaults to database.graph.path from config")
	timeout := flag.Duration("timeout", 5*time.Minute, "Import timeout")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	path := *dbPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: no -db given and config load failed: %v\n", err)
			os.Exit(1)
		}
		path = cfg.Database.Graph.Path
	}

	if err := run(*file, path, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file, path string, timeout time.Duration) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	var ds graphstore.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewSQLite(config.GraphConfig{Path: path})
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := graphstore.New(ctx, db.DB)
	if err != nil {
		return err
	}
	stats, err := store.Import(ctx, ds)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d cases and %d citations into %s (%d skipped)\n",
		stats.Cases, stats.Citations, path, stats.Skipped)
	return nil
}
