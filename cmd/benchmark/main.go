package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"featurestore/config"
	"featurestore/internal/adapter/memstore"
	"featurestore/internal/adapter/mongostore"
	"featurestore/internal/logging"
	"featurestore/internal/metrics"
	"featurestore/internal/table"
	"featurestore/internal/usecase"
)

const benchDB = "bench"

func main() {
	docs := flag.Int("docs", 200000, "Number of synthetic documents")
	batches := flag.String("batch", "1000,10000,50000", "Comma-separated batch sizes to compare")
	live := flag.String("live", "", "Benchmark this collection on the configured document store instead")
	dir := flag.String("dir", ".", "Directory holding featurestore.yaml (with -live)")
	flag.Parse()

	sizes, err := parseSizes(*batches)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -batch: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, cleanup, err := connect(ctx, *live, *dir, *docs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	collection := *live
	if collection == "" {
		collection = "synthetic"
	}

	fmt.Println("EXPORT PAGING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Source: %s.%s\n\n", conn.Name, collection)
	fmt.Printf("%-10s %8s %10s %8s %12s %14s\n", "batch", "pages", "rows", "cols", "elapsed", "rows/sec")
	fmt.Println(strings.Repeat("-", 70))

	for _, size := range sizes {
		cfg := config.DefaultConfig().Ingestion
		cfg.BatchSize = size
		exporter := usecase.NewExportUseCase(conn, cfg, metrics.New(), logging.Discard())

		start := time.Now()
		t, stats, err := exporter.Export(ctx, usecase.ExportRequest{Collection: collection, BatchSize: size})
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export with batch %d failed: %v\n", size, err)
			os.Exit(1)
		}

		rate := float64(t.Len()) / elapsed.Seconds()
		fmt.Printf("%-10d %8d %10d %8d %12s %14.0f\n", size, stats.Pages, t.Len(), stats.Columns, elapsed.Round(time.Millisecond), rate)
	}
	fmt.Println(strings.Repeat("=", 70))
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("batch size must be positive, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func connect(ctx context.Context, live, dir string, docs int) (*mongostore.Connection, func(), error) {
	if live == "" {
		st := memstore.NewMemoryStore()
		st.Insert(benchDB, "synthetic", syntheticDocs(docs)...)
		return &mongostore.Connection{Store: st, Database: st.Database(benchDB), Name: benchDB}, func() {}, nil
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, nil, err
	}
	provider := mongostore.NewProvider(cfg.Mongo, mongostore.WithLogger(logging.New(cfg.Logging, os.Stderr)))
	conn, err := provider.Open(ctx, cfg.Mongo.Database)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() { provider.Close(context.Background()) }, nil
}

func syntheticDocs(n int) []table.Record {
	continents := []string{"Asia", "Europe", "Africa", "Oceania", "North America", "South America"}
	docs := make([]table.Record, n)
	for i := range docs {
		var education any = "Bachelor's"
		if i%7 == 0 {
			education = "na"
		}
		docs[i] = table.Record{
			{Key: "_id", Value: fmt.Sprintf("%024x", i)},
			{Key: "case_id", Value: fmt.Sprintf("EZYV%d", i)},
			{Key: "continent", Value: continents[i%len(continents)]},
			{Key: "education_of_employee", Value: education},
			{Key: "no_of_employees", Value: 10 + i%5000},
			{Key: "prevailing_wage", Value: 1000.5 + float64(i%90000)},
			{Key: "case_status", Value: i%3 != 0},
		}
	}
	return docs
}
