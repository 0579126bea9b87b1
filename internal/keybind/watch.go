package keybind

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a keybinds.conf file on write and hands the new
// Bindings to onReload. Grounded in elleryfamilia-thicc's own
// fsnotify-based live-config reload; an enrichment beyond the distilled
// spec, not a required feature.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path, calling onReload with the freshly parsed
// Bindings whenever the file is written or created. Errors parsing a
// changed file are logged and the previous bindings are kept.
func Watch(path string, onReload func(Bindings)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := parentDir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go func() {
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				b, err := ParseFile(path)
				if err != nil {
					slog.Warn("keybind: reload failed", "error", err)
					continue
				}
				onReload(b)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				slog.Warn("keybind: watch error", "error", err)
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
