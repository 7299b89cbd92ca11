/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command flatstore inspects and maintains the archived search tables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/suparena/flatstore"
	"github.com/suparena/flatstore/config"
	"github.com/suparena/flatstore/datastore/ddb"
	"github.com/suparena/flatstore/flatten"
	"github.com/suparena/flatstore/registry"
	"github.com/suparena/flatstore/storagemodels"
	"github.com/suparena/flatstore/youtube"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	envFile     = flag.String("env", ".env", "dotenv file to load")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
)

const usage = `usage: flatstore [flags] <command> [args]

commands:
  tables                          list the tables in the backing store
  count [table]                   count the rows of one or all tables
  distinct <table> <attribute>    list the distinct values of an attribute
  rows [-nested] <table> <attribute> <value>
                                  list the rows whose attribute equals value
  queries                         list the archived search terms
  responses <query>               list the response ids of a search term
  snippets <response_id>          list the snippets of a response
  recent <channelId> <duration>   list a channel's snippets published within duration
  dump <file.json>                write every table to a JSON file
  load <file.json>                load a JSON dump idempotently

flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *versionFlag || *vFlag {
		info := flatstore.GetVersionInfo()
		fmt.Printf("flatstore version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), logger, flag.Args(), os.Stdout); err != nil {
		logger.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

// app holds everything a command may need.
type app struct {
	client  ddb.Client
	store   *flatstore.Storage
	archive *youtube.Archive
	out     io.Writer
}

func setup(ctx context.Context, logger *slog.Logger, out io.Writer) (*app, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireSchemaPaths(); err != nil {
		return nil, err
	}

	schemas := registry.New()
	for _, path := range []string{cfg.ResponsesConfigPath, cfg.SnippetsConfigPath} {
		if _, err := schemas.LoadFile(path); err != nil {
			return nil, err
		}
	}

	client, err := ddb.NewDynamoDBClient(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, err
	}

	store := flatstore.New(flatstore.WithLogger(logger))
	for _, name := range schemas.Names() {
		schema, _ := schemas.Get(name)
		gw, err := ddb.NewGateway(ctx, client, schema, ddb.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open table %s: %w", name, err)
		}
		if err := store.Register(gw); err != nil {
			return nil, err
		}
	}

	archive, err := youtube.NewArchive(store, youtube.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &app{client: client, store: store, archive: archive, out: out}, nil
}

func run(ctx context.Context, logger *slog.Logger, args []string, out io.Writer) error {
	a, err := setup(ctx, logger, out)
	if err != nil {
		return err
	}

	command, args := args[0], args[1:]
	switch command {
	case "tables":
		return a.tables(ctx)
	case "count":
		return a.count(ctx, args)
	case "distinct":
		if len(args) != 2 {
			return usageError("distinct <table> <attribute>")
		}
		values, err := a.store.DistinctValues(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return a.printJSON(values)
	case "rows":
		return a.rows(ctx, args)
	case "queries":
		queries, err := a.archive.ListQueries(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Found %d queries\n", len(queries))
		for _, q := range queries {
			fmt.Fprintf(a.out, "Query: %s\n", q)
		}
		return nil
	case "responses":
		if len(args) != 1 {
			return usageError("responses <query>")
		}
		ids, err := a.archive.ListResponseIDsWithQuery(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Found %d response_ids\n", len(ids))
		for _, id := range ids {
			fmt.Fprintf(a.out, "response_id: %s\n", id)
		}
		return nil
	case "snippets":
		if len(args) != 1 {
			return usageError("snippets <response_id>")
		}
		snippets, err := a.archive.ListSnippetsWithResponseID(ctx, args[0])
		if err != nil {
			return err
		}
		return a.printSnippets(snippets)
	case "recent":
		if len(args) != 2 {
			return usageError("recent <channelId> <duration>")
		}
		window, err := time.ParseDuration(args[1])
		if err != nil {
			return usageError("recent <channelId> <duration>: " + err.Error())
		}
		snippets, err := a.archive.ListRecentChannelSnippets(ctx, args[0], window)
		if err != nil {
			return err
		}
		return a.printSnippets(snippets)
	case "dump":
		return a.dump(ctx, args)
	case "load":
		return a.load(ctx, args)
	}
	return usageError("unknown command " + command)
}

func usageError(msg string) error {
	return fmt.Errorf("usage: flatstore %s", msg)
}

func (a *app) tables(ctx context.Context) error {
	names, err := ddb.ListTableNames(ctx, a.client)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "num_dbTables: %d\n", len(names))
	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func (a *app) count(ctx context.Context, args []string) error {
	names := args
	if len(names) == 0 {
		names = a.store.Tables()
	}
	for _, name := range names {
		gw, err := a.store.Gateway(name)
		if err != nil {
			return err
		}
		n, err := gw.CountAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: %d\n", name, n)
	}
	return nil
}

func (a *app) rows(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rows", flag.ContinueOnError)
	nested := fs.Bool("nested", false, "print rows as nested documents")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return usageError("rows [-nested] <table> <attribute> <value>")
	}

	rows, err := a.store.RowsWithValue(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}
	if !*nested {
		return a.printJSON(rows)
	}
	docs := make([]storagemodels.RawDocument, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, flatten.Unflatten(storagemodels.FlatRecord(row)))
	}
	return a.printJSON(docs)
}

func (a *app) printSnippets(snippets []storagemodels.Item) error {
	t, err := a.store.Table(youtube.SnippetsTable)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Found %d snippets\n", len(snippets))
	for _, snippet := range snippets {
		fmt.Fprintf(a.out, "channelTitle: %v\n", snippet[t.AttributeName("channelTitle")])
		fmt.Fprintf(a.out, "  title: %v\n", snippet[t.AttributeName("title")])
		if best, ok := a.archive.BestThumbnail(snippet); ok {
			fmt.Fprintf(a.out, "    thumbnails.%s.url: %s\n", best.Size, best.URL)
			fmt.Fprintf(a.out, "    thumbnails.%s.width: %d\n", best.Size, best.Width)
		}
	}
	return nil
}

func (a *app) dump(ctx context.Context, args []string) error {
	if len(args) != 1 || !strings.HasSuffix(args[0], ".json") {
		return usageError("dump <file.json>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := a.store.Dump(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) load(ctx context.Context, args []string) error {
	if len(args) != 1 || !strings.HasSuffix(args[0], ".json") {
		return usageError("load <file.json>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	counts, err := a.store.Load(ctx, f)
	for _, name := range a.store.Tables() {
		if c, ok := counts[name]; ok {
			fmt.Fprintf(a.out, "%s: %d loaded, %d skipped, %d failed\n", name, c.Succeeded, c.Skipped, c.Failed)
		}
	}
	return err
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
