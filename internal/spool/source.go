// Package spool reads raw items from a drop directory. Monitors write
// JSONL files (one RawItem per line) into the directory; each poll drains
// whatever has landed since the last one.
package spool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonesrussell/pharma-triggers/internal/domain"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
)

const doneSuffix = ".done"

// Source is a pipeline.ItemSource over a spool directory. Files read by
// Fetch stay pending until Commit retires them, so a failed batch is
// re-read on the next poll instead of lost. Not safe for concurrent use;
// the runner drives one source from one goroutine.
type Source struct {
	dir     string
	logger  logger.Logger
	pending []string
}

// New creates a source over dir. The directory must already exist.
func New(dir string, log logger.Logger) *Source {
	return &Source{dir: dir, logger: log}
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "spool:" + s.dir
}

// Fetch reads every pending .jsonl file, oldest first. The files are left
// in place until Commit; a crash or a failed batch re-reads them, and
// deduplication absorbs the replays. A malformed line is logged and
// skipped; one bad line must not sink the rest of the file.
func (s *Source) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	s.pending = s.pending[:0]
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read spool dir %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".jsonl") && !strings.HasSuffix(name, doneSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var items []domain.RawItem
	for _, name := range names {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		path := filepath.Join(s.dir, name)
		fileItems, err := s.readFile(path)
		if err != nil {
			s.logger.Error("failed to read spool file",
				logger.String("file", path),
				logger.Error(err))
			continue
		}
		items = append(items, fileItems...)
		s.pending = append(s.pending, path)
	}

	return items, nil
}

// Commit retires every file read by the last Fetch by renaming it to .done.
// Called by the runner only after the batch persisted; a rename failure
// leaves the remaining files pending for the next poll.
func (s *Source) Commit(_ context.Context) error {
	for len(s.pending) > 0 {
		path := s.pending[0]
		if err := os.Rename(path, path+doneSuffix); err != nil {
			return fmt.Errorf("failed to retire spool file %s: %w", path, err)
		}
		s.pending = s.pending[1:]
	}
	return nil
}

func (s *Source) readFile(path string) ([]domain.RawItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []domain.RawItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var item domain.RawItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			s.logger.Warn("skipping malformed spool line",
				logger.String("file", path),
				logger.Int("line", line),
				logger.Error(err))
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
