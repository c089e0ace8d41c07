// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch re-parses SERPENT output files as a running simulation
// writes them.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	serpent "github.com/ianlewis/go-serpent"
	"github.com/ianlewis/go-serpent/result"
)

// DefaultDebounce is the default quiet period before a changed file is
// parsed.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called with the result of parsing a changed file. Exactly one
// of c and err is non-nil.
type Handler func(path string, c *result.Container, err error)

// Options are options for a Watcher.
type Options struct {
	// Parse holds the options used to parse changed files.
	Parse *serpent.Options

	// Debounce is the time a file must go unchanged before it is parsed.
	Debounce time.Duration
}

// Watcher watches a directory for SERPENT output files.
type Watcher struct {
	dir      string
	handler  Handler
	parse    *serpent.Options
	registry *serpent.Registry
	debounce time.Duration
	logger   *zap.Logger

	w *fsnotify.Watcher

	// pending holds the time of the last event per path.
	pending map[string]time.Time
}

// New returns a Watcher for dir. Files created or written in dir whose name
// matches a registered variant are passed to h once they stop changing.
func New(dir string, h Handler, opts *Options) (*Watcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", dir, err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", dir, err)
	}

	wt := &Watcher{
		dir:      dir,
		handler:  h,
		parse:    opts.Parse,
		registry: serpent.DefaultRegistry(),
		debounce: opts.Debounce,
		logger:   zap.NewNop(),
		w:        w,
		pending:  map[string]time.Time{},
	}
	if wt.debounce <= 0 {
		wt.debounce = DefaultDebounce
	}
	if p := opts.Parse; p != nil {
		if p.Registry != nil {
			wt.registry = p.Registry
		}
		if p.Logger != nil {
			wt.logger = p.Logger
		}
	}
	wt.logger = wt.logger.With(zap.String("dir", dir))
	return wt, nil
}

// Run processes events until ctx is done or the watcher is closed. It
// returns nil when ctx is done.
func (wt *Watcher) Run(ctx context.Context) error {
	defer wt.w.Close()

	tick := wt.debounce / 5
	if tick <= 0 {
		tick = wt.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	wt.logger.Info("watching")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-wt.w.Events:
			if !ok {
				return nil
			}
			wt.handleEvent(ev)
		case err, ok := <-wt.w.Errors:
			if !ok {
				return nil
			}
			wt.logger.Error("watch error", zap.Error(err))
		case now := <-ticker.C:
			wt.flush(ctx, now)
		}
	}
}

// Close stops the watcher. Run returns once it observes the closed event
// channel.
func (wt *Watcher) Close() error {
	return wt.w.Close()
}

func (wt *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if _, err := wt.registry.Match(ev.Name); err != nil {
		return
	}
	wt.logger.Debug("file changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
	wt.pending[ev.Name] = time.Now()
}

// flush parses files that have not changed for the debounce period.
func (wt *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, last := range wt.pending {
		if now.Sub(last) >= wt.debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(wt.pending, path)
		if ctx.Err() != nil {
			return
		}
		c, err := serpent.Open(path, wt.parse)
		if err != nil {
			wt.logger.Warn("parse failed", zap.String("file", filepath.Base(path)), zap.Error(err))
		}
		wt.handler(path, c, err)
	}
}
