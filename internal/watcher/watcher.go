// Package watcher polls source files and reports when their content
// changes or they disappear. It backs the CLI's -watch mode.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/yorlang/yorlang/internal/errdef"
)

type EventKind int

const (
	EventChanged EventKind = iota
	EventMissing
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventMissing:
		return "missing"
	default:
		return "unknown"
	}
}

type Fingerprint struct {
	Mod  time.Time
	Size int64
	Sum  string
}

// Event carries the file content read during the scan that detected the
// change, so receivers do not race a second read.
type Event struct {
	Path   string
	Kind   EventKind
	Source []byte
	Prev   Fingerprint
	Curr   Fingerprint
}

type Options struct {
	Interval time.Duration
	Buffer   int
}

const (
	defaultInterval = 500 * time.Millisecond
	defaultBuffer   = 8
	sumPrefix       = "sha256:"
)

type file struct {
	fp      Fingerprint
	missing bool
}

type Watcher struct {
	mu       sync.Mutex
	files    map[string]*file
	out      chan Event
	interval time.Duration
	running  bool
}

func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	buf := opts.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	return &Watcher{
		files:    make(map[string]*file),
		out:      make(chan Event, buf),
		interval: interval,
	}
}

// Events is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Add starts tracking path and returns its current content.
func (w *Watcher) Add(path string) ([]byte, error) {
	clean, ok := cleanPath(path)
	if !ok {
		return nil, errdef.New(errdef.CodeFilesystem, "invalid watch path %q", path)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "watch %s", clean)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "watch %s", clean)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[clean] = &file{fp: fingerprint(info, data)}
	return data, nil
}

func (w *Watcher) Remove(path string) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, clean)
}

// Paths lists tracked files in sorted order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Run polls until ctx is done, then closes Events. It may be called once.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errdef.New(errdef.CodeStructural, "watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.out)

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			for _, ev := range w.Poll() {
				select {
				case w.out <- ev:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// Poll checks every tracked file once and returns the resulting events.
// A file that stays missing reports only once.
func (w *Watcher) Poll() []Event {
	var events []Event
	for _, path := range w.Paths() {
		if ev, ok := w.check(path); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (w *Watcher) check(path string) (Event, bool) {
	w.mu.Lock()
	f, ok := w.files[path]
	if !ok {
		w.mu.Unlock()
		return Event{}, false
	}
	prev, wasMissing := f.fp, f.missing
	w.mu.Unlock()

	info, err := os.Stat(path)
	var data []byte
	if err == nil {
		if !wasMissing && info.ModTime().Equal(prev.Mod) && info.Size() == prev.Size {
			return Event{}, false
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission) {
			return Event{}, false
		}
		if wasMissing {
			return Event{}, false
		}
		w.update(path, prev, true)
		return Event{Path: path, Kind: EventMissing, Prev: prev}, true
	}

	next := fingerprint(info, data)
	w.update(path, next, false)
	if !wasMissing && next.Sum == prev.Sum {
		return Event{}, false
	}
	return Event{Path: path, Kind: EventChanged, Source: data, Prev: prev, Curr: next}, true
}

func (w *Watcher) update(path string, fp Fingerprint, missing bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if f, ok := w.files[path]; ok {
		f.fp = fp
		f.missing = missing
	}
}

func cleanPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	clean := filepath.Clean(path)
	if clean == "." {
		return "", false
	}
	return clean, true
}

func fingerprint(info fs.FileInfo, data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint{
		Mod:  info.ModTime(),
		Size: info.Size(),
		Sum:  sumPrefix + hex.EncodeToString(sum[:]),
	}
}
