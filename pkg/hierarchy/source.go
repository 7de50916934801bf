package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileDocument is the on-disk YAML shape of a hierarchy definition.
//
//	attributes:
//	  - id: identifier
//	    name: Identifier
//	    left: 1
//	    right: 10
//	purposes:
//	  - id: marketing
//	    ...
type FileDocument struct {
	Attributes []Node `yaml:"attributes"`
	Purposes   []Node `yaml:"purposes"`
}

// LoadFile reads a hierarchy definition from a YAML file and builds it.
func LoadFile(path string) (*Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy file: %w", err)
	}
	return Parse(data)
}

// Parse builds a hierarchy from YAML bytes.
func Parse(data []byte) (*Hierarchy, error) {
	var doc FileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy file: %w", err)
	}
	return New(doc.Attributes, doc.Purposes)
}

// FileSource loads a hierarchy from a YAML file into a registry and can
// watch the file for changes, reloading through an atomic Replace. A reload
// that fails validation is logged and discarded; the active hierarchy stays
// authoritative.
type FileSource struct {
	path     string
	registry *Registry
	logger   *slog.Logger

	// debounceInterval is how long to wait after a change event before
	// reloading, to avoid reload storms from editors writing in chunks.
	debounceInterval time.Duration
}

// NewFileSource creates a file source for the given path and registry.
func NewFileSource(path string, registry *Registry, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:             path,
		registry:         registry,
		logger:           logger,
		debounceInterval: 100 * time.Millisecond,
	}
}

// Load reads the file and installs the hierarchy, returning the new
// version token.
func (s *FileSource) Load() (string, error) {
	h, err := LoadFile(s.path)
	if err != nil {
		return "", err
	}

	version, err := s.registry.Replace(h)
	if err != nil {
		return "", err
	}

	s.logger.Info("hierarchy loaded",
		"path", s.path,
		"version", version,
		"attribute_count", h.Attributes().Len(),
		"purpose_count", h.Purposes().Len(),
	)
	return version, nil
}

// Watch blocks, reloading the hierarchy whenever the file changes, until
// the context is cancelled. Reload failures keep the previous hierarchy.
func (s *FileSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", s.path, err)
	}

	s.logger.Info("hierarchy watcher started", "path", s.path)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hierarchy watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: restart the timer on every event burst.
			if timer == nil {
				timer = time.NewTimer(s.debounceInterval)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.debounceInterval)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			if _, err := s.Load(); err != nil {
				s.logger.Error("hierarchy reload failed, keeping previous hierarchy",
					"path", s.path,
					"error", err,
				)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("hierarchy watcher error", "error", err)
		}
	}
}
