package ui

import (
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/gfbarbieri/coffer/internal/log"
)

// billFileDetectedMsg reports a new or changed bill source file in the
// watched import directory.
type billFileDetectedMsg struct {
	Path string
}

// watcherClosedMsg reports the watcher shutting down.
type watcherClosedMsg struct{}

// importWatcher debounces fsnotify events on the import directory and
// forwards bill source files to the program.
type importWatcher struct {
	watcher  *fsnotify.Watcher
	files    chan string
	debounce time.Duration
}

func isBillSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// newImportWatcher starts watching dir. The caller owns Close.
func newImportWatcher(dir string, debounce time.Duration) (*importWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	iw := &importWatcher{
		watcher:  w,
		files:    make(chan string, 8),
		debounce: debounce,
	}
	go iw.run()
	log.Info(log.CatUI, "Watching import directory", "dir", dir)
	return iw, nil
}

// run coalesces rapid write events per file: a file is forwarded once
// its events go quiet for the debounce window.
func (iw *importWatcher) run() {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(iw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-iw.watcher.Events:
			if !ok {
				close(iw.files)
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isBillSource(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-iw.watcher.Errors:
			if !ok {
				close(iw.files)
				return
			}
			log.ErrorErr(log.CatUI, "Import watcher error", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) >= iw.debounce {
					delete(pending, path)
					iw.files <- path
				}
			}
		}
	}
}

// wait returns a command that delivers the next detected file.
func (iw *importWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		path, ok := <-iw.files
		if !ok {
			return watcherClosedMsg{}
		}
		return billFileDetectedMsg{Path: path}
	}
}

func (iw *importWatcher) close() {
	_ = iw.watcher.Close()
}
