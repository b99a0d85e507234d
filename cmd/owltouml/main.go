// Package main provides the owltouml binary entry point.
// owltouml converts an OWL ontology into an Enterprise Architect native XML
// file that can be imported as a package of UML classes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/mattn/go-colorable"
	owltouml "github.com/reycs/OwlToUml"
	"github.com/reycs/OwlToUml/config"
	"github.com/reycs/OwlToUml/eaxml"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "owltouml"
)

func main() {
	cmd := rootCmd()
	cmd.SetErr(colorable.NewColorableStderr())
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath    string
	locator       string
	short         string
	namespaces    []string
	format        string
	outputDir     string
	backend       string
	dsn           string
	dumpPath      string
	diagrams      bool
	followImports bool
	timeout       time.Duration
	logLevel      string
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName + " -o <ontology> -p <prefix>",
		Short: "Convert an OWL ontology into an Enterprise Architect native XML file",
		Long: `owltouml reads an OWL ontology (JSON-LD, Turtle, RDF/XML or N-Triples/N-Quads, from a file
or an http(s) URL) and writes <prefix>.xml, an Enterprise Architect native XML
package with one UML package per namespace prefix:

- classes become UML classes, annotations become notes
- data properties become attributes of their domain classes
- object properties become associations between domain and range classes
- subclass axioms become generalizations; classes without one specialize owl:Thing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.locator, "ontology", "o", "", "Ontology file path or URL")
	cmd.Flags().StringVarP(&f.short, "prefix", "p", "", "Short name for the default namespace and the output file")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringArrayVar(&f.namespaces, "namespace", nil, "Namespace declaration prefix=IRI (repeatable)")
	cmd.Flags().StringVar(&f.format, "format", "", "Ontology format (auto, jsonld, nquads, turtle, rdfxml)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Directory to write the XML file to")
	cmd.Flags().StringVar(&f.backend, "store", "", "Fact store backend (memory, sqlite, postgres)")
	cmd.Flags().StringVar(&f.dsn, "store-dsn", "", "SQLite path or PostgreSQL connection string")
	cmd.Flags().StringVar(&f.dumpPath, "dump-facts", "", "Write the loaded statements to this file (N-Quads for .nq/.nt, JSON lines otherwise)")
	cmd.Flags().BoolVar(&f.diagrams, "diagrams", false, "Add one logical diagram per package")
	cmd.Flags().BoolVar(&f.followImports, "follow-imports", false, "Load owl:imports targets as well")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Timeout for fetching remote documents")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("ontology")
	_ = cmd.MarkFlagRequired("prefix")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <file.xml>",
		Short: "Print the row count of every table in an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.OutOrStdout(), args[0])
		},
	})

	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := owltouml.Convert(ctx, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05.000",
	}).Level(level).With().Timestamp().Logger()
}

// loadConfig layers the config file over the defaults and the flags that were
// set over both.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		fileCfg, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = fileCfg
	}

	namespaces, err := parseNamespaces(f.namespaces)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	overrides := &config.Config{}
	overrides.Ontology.Locator = f.locator
	overrides.Export.ShortName = f.short
	overrides.Ontology.Namespaces = namespaces
	if set("format") {
		overrides.Ontology.Format = f.format
	}
	if set("output-dir") {
		overrides.Export.OutputDir = f.outputDir
	}
	if set("store") {
		overrides.Store.Backend = f.backend
	}
	if set("store-dsn") {
		overrides.Store.DSN = f.dsn
	}
	if set("dump-facts") {
		overrides.Store.DumpPath = f.dumpPath
	}
	if set("timeout") {
		overrides.Ontology.Timeout = f.timeout
	}
	if set("log-level") {
		overrides.Log.Level = f.logLevel
	}
	overrides.Export.Diagrams = f.diagrams
	overrides.Ontology.FollowImports = f.followImports

	cfg.Merge(overrides)
	return cfg, nil
}

// parseNamespaces turns "prefix=IRI" declarations into a prefix table. An empty
// prefix declares the default namespace.
func parseNamespaces(decls []string) (map[string]string, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(decls))
	for _, d := range decls {
		prefix, iri, ok := strings.Cut(d, "=")
		if !ok || iri == "" {
			return nil, fmt.Errorf("invalid namespace %q, want prefix=IRI", d)
		}
		out[strings.TrimSpace(prefix)] = strings.TrimSpace(iri)
	}
	return out, nil
}

// inspect prints the root package and the number of rows in each table.
func inspect(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	doc, err := xmlquery.Parse(file)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	root := xmlquery.FindOne(doc, "/Package")
	if root == nil {
		return fmt.Errorf("%s has no root Package element", path)
	}

	fmt.Fprintf(w, "package %s %s\n", root.SelectAttr("name"), root.SelectAttr("guid"))
	for _, table := range eaxml.Tables {
		rows := xmlquery.Find(root, "Table[@name='"+table+"']/Row")
		fmt.Fprintf(w, "%-18s %d\n", table, len(rows))
	}
	return nil
}
