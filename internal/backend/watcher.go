package backend

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/olivoil/botdeck/internal/logging"
)

// ArtifactsChangedMsg is sent when a session archive in the watched directory
// is created, written, renamed or removed.
type ArtifactsChangedMsg struct {
	// Path is the file that changed.
	Path string
}

// Sender can receive messages (matches *tea.Program).
type Sender interface {
	Send(msg tea.Msg)
}

// Watcher monitors the import directory via fsnotify.
type Watcher struct {
	w      *fsnotify.Watcher
	sender Sender
	dir    string
	logger *slog.Logger
	done   chan struct{}
}

// NewWatcher creates a watcher for session archives in dir, creating dir if
// needed.
func NewWatcher(dir string, sender Sender, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	watcher := &Watcher{
		w:      fw,
		sender: sender,
		dir:    dir,
		logger: logger.With("component", "watcher"),
		done:   make(chan struct{}),
	}
	go watcher.loop()
	return watcher, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !isArchive(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.sender.Send(ArtifactsChangedMsg{Path: event.Name})

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "dir", w.dir, "error", err)
		}
	}
}

func isArchive(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".zip")
}
