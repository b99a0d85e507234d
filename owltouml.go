// Package owltouml converts an OWL ontology into an Enterprise Architect native
// XML file. Convert runs the whole pipeline: the ontology is loaded into a fact
// store, mapped onto a logical model and exported as six interlinked tables.
package owltouml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/mangle/factstore"
	"github.com/reycs/OwlToUml/builder"
	"github.com/reycs/OwlToUml/config"
	"github.com/reycs/OwlToUml/eaxml"
	"github.com/reycs/OwlToUml/ontology"
	"github.com/reycs/OwlToUml/store"
	"github.com/rs/zerolog"
)

// Result describes a finished conversion.
type Result struct {
	// Path is the written interchange file.
	Path string
	// Facts is the number of triple atoms loaded.
	Facts int
	// Report summarizes the logical model.
	Report builder.Report
}

// Convert loads, maps and exports the ontology described by cfg. The fact store
// is opened for the duration of the call.
func Convert(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := ontology.ParseFormat(cfg.Ontology.Format)
	if err != nil {
		return Result{}, err
	}

	facts, closeStore, err := openStore(cfg.Store, log)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("failed to close fact store")
		}
	}()

	if cfg.Ontology.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Ontology.Timeout)
		defer cancel()
	}
	onto, err := ontology.Load(ctx, cfg.Ontology.Locator, ontology.Options{
		Format:        format,
		Namespaces:    cfg.Ontology.Namespaces,
		FollowImports: cfg.Ontology.FollowImports,
		Timeout:       cfg.Ontology.Timeout,
		Store:         facts,
		Logger:        log,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to load ontology: %w", err)
	}

	if cfg.Store.DumpPath != "" {
		if err := dumpFacts(cfg.Store.DumpPath, onto.Facts()); err != nil {
			return Result{}, err
		}
	}

	model, report := builder.Build(onto, cfg.Export.ShortName, log)

	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	exporter := eaxml.NewExporter(model,
		eaxml.WithDiagrams(cfg.Export.Diagrams),
		eaxml.WithLogger(log))
	path, err := exporter.Export(cfg.Export.OutputDir, cfg.Export.ShortName)
	if err != nil {
		return Result{}, err
	}

	return Result{Path: path, Facts: facts.EstimateFactCount(), Report: report}, nil
}

// openStore opens the configured fact store and returns a func releasing it.
// A database store is emptied first so that every run maps only the ontology it
// loads, whatever an earlier run left in the same file or server.
func openStore(cfg config.StoreConfig, log zerolog.Logger) (factstore.FactStore, func() error, error) {
	opts := []store.StoreOption{store.WithLogger(log)}
	for k, v := range cfg.Pragmas {
		opts = append(opts, store.WithPragma(k, v))
	}

	var (
		db  *store.DB
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory, "":
		mem := factstore.NewSimpleInMemoryStore()
		return &mem, func() error { return nil }, nil
	case config.BackendSQLite:
		db, err = store.NewSQLite(cfg.DSN, opts...)
	case config.BackendPostgres:
		db, err = store.NewPostgres(cfg.DSN, opts...)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	if err := db.Truncate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, db.Close, nil
}

// dumpFacts writes the loaded statements to path. A .nq or .nt file gets
// N-Quads, anything else one JSON atom per line.
func dumpFacts(path string, facts factstore.ReadOnlyFactStore) error {
	dump := store.Dump
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nq", ".nt":
		dump = ontology.WriteNQuads
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create fact dump: %w", err)
	}
	if _, err := dump(f, facts); err != nil {
		f.Close()
		return fmt.Errorf("failed to dump facts: %w", err)
	}
	return f.Close()
}
