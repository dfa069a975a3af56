package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/services"
	"github.com/custodia-labs/decker-cli/internal/logger"
)

var ingestWatch bool

// watchDebounce coalesces bursts of filesystem events into one re-ingest.
const watchDebounce = 2 * time.Second

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Build the knowledge base from a directory of documents",
	Long: `Loads all supported documents (.pdf, .docx, .txt, .md) under the
directory, splits them into chunks, embeds them and persists the vector
index. Re-running ingest fully replaces the previous index.

With --watch, keeps running and re-ingests whenever files change.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest on directory changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("directory %s: %w", dir, err)
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	_, settings, err := loadSettings()
	if err != nil {
		return err
	}

	rag, cleanup, err := newRAGService(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rag.Ingest(ctx, dir); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	cmd.Printf("Ingested documents from %s\n", dir)

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)\n", dir)
	return watchAndIngest(ctx, cmd, rag, dir)
}

// watchAndIngest re-runs ingestion whenever files under dir change,
// debouncing event bursts. Runs until the context is cancelled.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, rag *services.RAGService, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, dir); err != nil {
		return err
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be watched too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-pending:
			logger.Debug("Change detected, re-ingesting %s", dir)
			if err := rag.Ingest(ctx, dir); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Warn("Re-ingest failed: %v", err)
				continue
			}
			cmd.Printf("Re-ingested documents from %s\n", dir)
		}
	}
}

// watchRecursive adds dir and all its subdirectories to the watcher.
func watchRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && name != filepath.Base(dir) && len(name) > 0 && name[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
