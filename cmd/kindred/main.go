// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/kindred"
	"github.com/poiesic/kindred/align"
	"github.com/poiesic/kindred/config"
	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/httpapi"
	"github.com/poiesic/kindred/suggest"
	"github.com/poiesic/kindred/tabulate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "kindred",
		Usage: "Suggest articles related to a set of exemplar articles and align articles on a term",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "suggest",
				Usage:  "Print suggestions for exemplar articles as JSON",
				Action: suggestCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "ids",
						Aliases: []string{"i"},
						Usage:   "Exemplar article ids (uses the default exemplar when empty)",
					},
					&cli.IntFlag{
						Name:  "days-before",
						Usage: "Widen the search window this many days before the earliest exemplar",
					},
					&cli.IntFlag{
						Name:  "days-after",
						Usage: "Widen the search window this many days after the latest exemplar",
					},
					&cli.StringFlag{
						Name:  "ranking",
						Usage: "Order suggestions by score, date or title",
					},
					&cli.BoolFlag{
						Name:  "tabulate",
						Usage: "Include the day by score bucket table",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Lowest score to show in the table (defaults to suggest.threshold)",
					},
					&cli.BoolFlag{
						Name:  "upstream",
						Usage: "Read articles from the remote content API",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Remote content API key",
						EnvVars: []string{config.APIKeyEnv},
					},
					dbFlag(),
				},
			},
			{
				Name:   "align",
				Usage:  "Print the articles mentioning a term, split around it, as JSON",
				Action: alignCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "term",
						Aliases: []string{"t"},
						Usage:   "Term to align (defaults to align.default_term)",
					},
					&cli.IntFlag{
						Name:    "year",
						Aliases: []string{"y"},
						Usage:   "Only articles published in this year (0 for any year)",
					},
					&cli.StringFlag{
						Name:  "sort-by",
						Usage: "Line order: position, pre or post (defaults to align.sort_by)",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Text to align: all or title (defaults to align.source)",
					},
					&cli.BoolFlag{
						Name:  "search",
						Usage: "Print one page of matches without aligning them",
					},
					&cli.BoolFlag{
						Name:  "upstream",
						Usage: "Read articles from the remote content API",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Remote content API key",
						EnvVars: []string{config.APIKeyEnv},
					},
					dbFlag(),
				},
			},
			{
				Name:   "seed",
				Usage:  "Load articles from a JSON file into a local database",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB article database",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array of articles, or - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles to store in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N articles",
						Value: 100,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Remove every stored article before seeding",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve suggestions over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address (overrides server.addr)",
					},
					&cli.BoolFlag{
						Name:  "upstream",
						Usage: "Read articles from the remote content API",
					},
					dbFlag(),
				},
			},
		},
	}
}

func dbFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB article database (overrides store.path)",
	}
}

// seedArticle is the on-disk form read by the seed command.
type seedArticle struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Published   time.Time        `json:"publishedDate"`
	BodyXML     string           `json:"bodyXML"`
	Annotations []seedAnnotation `json:"annotations"`
}

type seedAnnotation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Predicate string `json:"predicate"`
	PrefLabel string `json:"prefLabel"`
}

func (s seedArticle) article() *core.Article {
	a := &core.Article{
		ID:        s.ID,
		Title:     s.Title,
		Published: s.Published,
		BodyXML:   s.BodyXML,
	}
	for _, ann := range s.Annotations {
		a.Annotations = append(a.Annotations, core.Annotation(ann))
	}
	return a
}

// tabulatedOutput is what suggest --tabulate prints.
type tabulatedOutput struct {
	*suggest.Result
	Tabulated *tabulate.Table `json:"tabulatedArticles"`
}

func suggestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	req := suggest.Request{
		ExemplarIDs: c.StringSlice("ids"),
		DaysBefore:  c.Int("days-before"),
		DaysAfter:   c.Int("days-after"),
	}
	if c.IsSet("ranking") {
		ranking, err := suggest.ParseRanking(c.String("ranking"))
		if err != nil {
			return err
		}
		req.Ranking = &ranking
	}

	if !c.Bool("tabulate") {
		result, err := engine.Suggest(c.Context, req)
		if err != nil {
			return fmt.Errorf("failed to suggest: %w", err)
		}
		return printJSON(c.App.Writer, result)
	}

	threshold := engine.Threshold()
	if c.IsSet("threshold") {
		threshold = c.Float64("threshold")
	}
	result, table, err := engine.SuggestTabulated(c.Context, req, threshold)
	if err != nil {
		return fmt.Errorf("failed to suggest: %w", err)
	}
	return printJSON(c.App.Writer, tabulatedOutput{Result: result, Tabulated: table})
}

func alignCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	req := align.Request{
		Term: c.String("term"),
		Year: c.Int("year"),
	}
	if c.IsSet("sort-by") {
		sortBy, err := align.ParseSortBy(c.String("sort-by"))
		if err != nil {
			return err
		}
		req.SortBy = &sortBy
	}
	if c.IsSet("source") {
		source, err := align.ParseSource(c.String("source"))
		if err != nil {
			return err
		}
		req.Source = &source
	}

	if c.Bool("search") {
		page, err := engine.SearchTerm(c.Context, req)
		if err != nil {
			return fmt.Errorf("failed to search: %w", err)
		}
		return printJSON(c.App.Writer, page)
	}
	result, err := engine.Align(c.Context, req)
	if err != nil {
		return fmt.Errorf("failed to align: %w", err)
	}
	return printJSON(c.App.Writer, result)
}

func seedCommand(c *cli.Context) error {
	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	reportInterval := c.Int("report-interval")
	if reportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	articles, err := readSeedFile(c.App.Reader, c.String("file"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.Store.Backend = config.BackendLocal
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	repo := engine.Articles()
	if c.Bool("reset") {
		if err := repo.Clear(c.Context); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		slog.Info("database reset", "db", cfg.Store.Path)
	}
	progress := newProgressTracker(c.App.ErrWriter, len(articles), reportInterval)
	progress.Start()
	for start := 0; start < len(articles); start += batchSize {
		batch := articles[start:min(start+batchSize, len(articles))]
		if err := repo.AddArticles(c.Context, batch...); err != nil {
			progress.Finish()
			return fmt.Errorf("failed to store articles %d-%d: %w", start, start+len(batch)-1, err)
		}
		progress.Increment(len(batch))
	}
	progress.Finish()

	slog.Info("seed complete", "articles", len(articles), "elapsed", progress.Elapsed())
	return nil
}

func readSeedFile(stdin io.Reader, path string) ([]*core.Article, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var seeds []seedArticle
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	articles := make([]*core.Article, len(seeds))
	for i, s := range seeds {
		articles[i] = s.article()
	}
	return articles, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	handler, err := httpapi.NewHandler(engine,
		httpapi.WithMetrics(engine.Metrics()),
		httpapi.WithStatsHistory(cfg.Server.StatsHistory),
		httpapi.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		httpapi.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "backend", cfg.Store.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadConfig reads --config and applies the store flags of the running command.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.Bool("upstream") {
		cfg.Store.Backend = config.BackendUpstream
	}
	if c.IsSet("api-key") {
		cfg.Upstream.APIKey = c.String("api-key")
	}
	if c.IsSet("db") {
		cfg.Store.Backend = config.BackendLocal
		cfg.Store.Path = c.String("db")
	}
	return cfg, nil
}

func openEngine(cfg *config.Config) (*kindred.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, kindred.WithLogger(slog.Default()))
	engine, err := kindred.Open(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
