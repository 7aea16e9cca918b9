// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package watcher reports debounced changes of document files under a
// content root.
//
// A burst of file system events for one path (an editor writing a temp file
// and renaming it over the target, several writes in a row) collapses into a
// single [Event] once the path has been quiet for the debounce interval. The
// event kind is decided at that moment from the file's presence on disk.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-lst-sync/internal/docpath"
)

// DocumentExt is the extension of synchronized files.
const DocumentExt = ".md"

var ErrAlreadyRunning = errors.New("watcher already running")

// Op is the settled kind of change of a path.
type Op int

const (
	// OpWrite means the file exists and may have new content.
	OpWrite Op = iota
	// OpRemove means the file no longer exists.
	OpRemove
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one settled change of a document file.
type Event struct {
	// Path is the absolute path of the file.
	Path string
	Op   Op
}

// Watcher watches a content root recursively.
type Watcher struct {
	root     string
	debounce time.Duration

	fsw    *fsnotify.Watcher
	events chan Event
	errors chan error
	fire   chan string
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	timers  map[string]*time.Timer
}

// New creates a Watcher for root. It must be started with Start before it
// emits events.
func New(root string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:     abs,
		debounce: debounce,
		fsw:      fsw,
		events:   make(chan Event, 100),
		errors:   make(chan error, 10),
		fire:     make(chan string, 100),
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Root is the absolute content root.
func (w *Watcher) Root() string {
	return w.root
}

// Start adds every directory below the root and begins emitting events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrAlreadyRunning
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("create content root: %w", err)
	}
	if err := w.addTree(w.root, false); err != nil {
		return err
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop releases the watch and blocks until the event loop has exited.
// Events and Errors are closed afterwards.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()

	close(w.events)
	close(w.errors)

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Events returns the channel of settled changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}

		case p := <-w.fire:
			ev := Event{Path: p, Op: OpWrite}
			if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
				ev.Op = OpRemove
			}
			select {
			case w.events <- ev:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// files may land in the directory before the watch is added
			if err = w.addTree(ev.Name, true); err != nil {
				w.report(err)
			}
			return
		}
	}
	if ev.Op == fsnotify.Chmod || !IsDocumentFile(ev.Name) {
		return
	}
	w.schedule(ev.Name)
}

func (w *Watcher) schedule(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if t, ok := w.timers[p]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[p] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, p)
		w.mu.Unlock()

		select {
		case w.fire <- p:
		case <-w.done:
		}
	})
}

func (w *Watcher) addTree(dir string, announce bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if p != w.root && w.ignored(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err = w.fsw.Add(p); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", p, err)
			}
			return nil
		}
		if announce && IsDocumentFile(p) {
			w.schedule(p)
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == "." {
		return false
	}
	return docpath.IsIgnored(rel)
}

func (w *Watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// IsDocumentFile reports whether p names a synchronized file.
func IsDocumentFile(p string) bool {
	return strings.EqualFold(filepath.Ext(p), DocumentExt)
}

// Scan lists every document file below root, skipping ignored paths. The
// daemon uses it to pick up edits made while it was not running.
func Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr == nil && rel != "." && docpath.IsIgnored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsDocumentFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan content root: %w", err)
	}
	return files, nil
}
