package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/oratohq/orato/internal/progress"
	"github.com/oratohq/orato/internal/registry"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files or globs]",
	Short: "Parse, chunk, embed and index slide decks and PDFs",
	Long: `Ingests one or more .pptx or .pdf files into the vector collection.
Arguments may be file paths, directories (ingested recursively) or
doublestar globs such as 'decks/**/*.pptx'. Re-ingesting a file
overwrites its records.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("tables", false, "also index table contents (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if tables, _ := cmd.Flags().GetBool("tables"); tables {
		cfg.Ingest.IncludeTables = true
	}

	files, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .pptx or .pdf files matched")
	}

	embedder, err := createEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}
	reg, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	pipeline := buildPipeline(cfg, embedder, store)

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	// Files are independent; ingest them concurrently. The store
	// serializes collection writes itself.
	sem := make(chan struct{}, cfg.Ingest.MaxConcurrency)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		done      int
		failures  []error
		numChunks int
	)

	for _, file := range files {
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			docID := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			stats, err := pipeline.IngestFile(ctx, file, docID)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				failures = append(failures, fmt.Errorf("%s: %w", file, err))
				reporter.Update(done, fmt.Sprintf("failed %s", filepath.Base(file)))
				return
			}
			numChunks += stats.Chunks
			reporter.Update(done, filepath.Base(file))

			if err := reg.Upsert(registry.Document{
				ID:         docID,
				Filename:   filepath.Base(file),
				Collection: cfg.Collection,
				Chunks:     stats.Chunks,
			}); err != nil {
				failures = append(failures, fmt.Errorf("%s: register: %w", file, err))
			}
		}(file)
	}
	wg.Wait()
	reporter.Finish()

	fmt.Printf("Ingested %d/%d files (%d chunks) into collection %q\n",
		len(files)-len(failures), len(files), numChunks, cfg.Collection)

	for _, ferr := range failures {
		fmt.Fprintf(os.Stderr, "  %v\n", ferr)
	}
	if len(failures) == len(files) {
		return fmt.Errorf("all %d files failed", len(files))
	}
	return nil
}

// expandInputs resolves each argument as a file, a directory to walk, or a
// doublestar glob, keeping only supported extensions.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if supportedExt(path) && !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			err := filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", arg, err)
			}
		case err == nil:
			if !supportedExt(arg) {
				return nil, fmt.Errorf("unsupported file type: %s", arg)
			}
			add(arg)
		default:
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func supportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pptx", ".pdf":
		return true
	}
	return false
}
