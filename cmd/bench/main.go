package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/syllabus"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to add")
	adapters := flag.String("adapters", "fs,sqlite,memory", "Comma-separated adapters to benchmark")
	keep := flag.Bool("keep", false, "Keep the benchmark data after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "syllabus_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark (%d notes, every add rewrites the collection)\n", *count)
	for _, name := range strings.Split(*adapters, ",") {
		name = strings.TrimSpace(name)
		dir := filepath.Join(benchDir, name)
		opts := []syllabus.Option{
			syllabus.WithAdapter(name),
			syllabus.WithLogger(logger),
			syllabus.WithVersioning(false),
		}

		s, err := syllabus.Open(ctx, dir, opts...)
		if err != nil {
			fmt.Printf("  %-8s skipped: %v\n", name, err)
			continue
		}

		start := time.Now()
		for i := 0; i < *count; i++ {
			s.Notes().Add(ctx, syllabus.NoteDraft{
				Title:       fmt.Sprintf("Benchmark Note %d", i),
				Content:     "# Benchmark\nThis is a test note.",
				SubjectCode: fmt.Sprintf("SUB%d", i%10),
				SemesterID:  1 + i%8,
			})
		}
		add := time.Since(start)

		start = time.Now()
		matched := len(s.Notes().QueryByOwner("SUB3", 4))
		query := time.Since(start)

		if err := s.Close(ctx); err != nil {
			panic(err)
		}

		// memory does not survive a close, so its reload measures defaults only.
		start = time.Now()
		s2, err := syllabus.Open(ctx, dir, opts...)
		if err != nil {
			panic(err)
		}
		reload := time.Since(start)
		loaded := s2.Notes().Len()
		_ = s2.Close(ctx)

		fmt.Printf("  %-8s add: %-12v query: %-10v (%d hits) reload: %-10v (%d notes)\n",
			name, add, query, matched, reload, loaded)
	}
	fmt.Printf("--------------------------------------------------\n")
}
