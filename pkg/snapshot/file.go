package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const backendFile = "file"

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path    string
	pending []enrich.Record
	pages   int
	logger  zerolog.Logger
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	return &FileStore{
		path:   path,
		logger: logging.NewLogger(logging.ComponentSnapshot),
	}, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Reset discards buffered pages. The file on disk is left alone until
// Flush replaces it.
func (s *FileStore) Reset(_ context.Context) error {
	s.pending = nil
	s.pages = 0
	return nil
}

// WritePage buffers the page until Flush.
func (s *FileStore) WritePage(_ context.Context, _ int, items []catalog.Item) error {
	s.pending = append(s.pending, enrich.Records(items)...)
	s.pages++
	SnapshotWrites.WithLabelValues(backendFile, "page").Inc()
	return nil
}

// Flush writes the buffered pages as one document.
func (s *FileStore) Flush(ctx context.Context) error {
	doc := newDocument(s.pending, s.pages)
	if err := s.write(doc); err != nil {
		SnapshotErrors.WithLabelValues(backendFile, "flush").Inc()
		return err
	}
	SnapshotWrites.WithLabelValues(backendFile, "flush").Inc()
	s.pending = nil
	return nil
}

// Load reads the snapshot file.
func (s *FileStore) Load(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		SnapshotErrors.WithLabelValues(backendFile, "load").Inc()
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		SnapshotErrors.WithLabelValues(backendFile, "load").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.ItemList == nil {
		doc.ItemList = []enrich.Record{}
	}

	SnapshotItems.WithLabelValues(backendFile).Set(float64(len(doc.ItemList)))
	return &doc, nil
}

// Save replaces the snapshot file with doc.
func (s *FileStore) Save(_ context.Context, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("snapshot document cannot be nil")
	}
	if err := s.write(doc); err != nil {
		SnapshotErrors.WithLabelValues(backendFile, "save").Inc()
		return err
	}
	SnapshotWrites.WithLabelValues(backendFile, "save").Inc()
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *FileStore) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	SnapshotItems.WithLabelValues(backendFile).Set(float64(len(doc.ItemList)))
	s.logger.Info().
		Str("path", s.path).
		Int("items", len(doc.ItemList)).
		Bool("enriched", doc.Enriched).
		Msg("Snapshot written")

	return nil
}
