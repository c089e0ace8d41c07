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

package serpent

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-dictzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ianlewis/go-serpent/block"
	"github.com/ianlewis/go-serpent/dep"
	"github.com/ianlewis/go-serpent/det"
	"github.com/ianlewis/go-serpent/naming"
	"github.com/ianlewis/go-serpent/res"
	"github.com/ianlewis/go-serpent/result"
	"github.com/ianlewis/go-serpent/validate"
)

// DefaultConcurrency is the number of files OpenAll parses at once by
// default.
const DefaultConcurrency = 4

// Options are options for parsing files. The zero value and nil are valid
// and use the defaults.
type Options struct {
	// Logger receives debug, info and warning messages. A nil Logger
	// discards them.
	Logger *zap.Logger

	// Names normalizes raw names. It defaults to the lenient table.
	Names *naming.Table

	// Policy sets the severity of validation checks. It defaults to the
	// policy of the naming mode.
	Policy validate.Policy

	// Registry selects variants by file name. It defaults to
	// DefaultRegistry.
	Registry *Registry

	// Concurrency is the number of files OpenAll parses at once.
	Concurrency int

	Block     *block.Options
	Depletion *dep.Options
	Detector  *det.Options
	Results   *res.Options
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Options) names() *naming.Table {
	if o == nil || o.Names == nil {
		return naming.Default(naming.Lenient)
	}
	return o.Names
}

func (o *Options) registry() *Registry {
	if o == nil || o.Registry == nil {
		return DefaultRegistry()
	}
	return o.Registry
}

func (o *Options) concurrency() int {
	if o == nil || o.Concurrency < 1 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// Parse parses a file of the given variant from r. name is used in errors
// and as the container's path. Parsing is all or nothing: on error no
// container is returned.
func Parse(r io.Reader, name string, v *Variant, opts *Options) (*result.Container, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.logger().With(zap.String("file", name), zap.String("variant", v.Name))
	names := opts.names()

	set, err := block.ExtractAll(name, r, opts.Block)
	if err != nil {
		return nil, err
	}

	p := v.New(name, opts)
	var records []*result.Record
	for _, b := range set.Blocks() {
		if !p.Recognizes(b) {
			log.Debug("skipping block", zap.String("block", b.Key), zap.Int("line", b.Line))
			continue
		}
		rs, err := p.Parse(b)
		if err != nil {
			return nil, err
		}
		log.Debug("parsed block", zap.String("block", b.Key), zap.Int("records", len(rs)))
		records = append(records, rs...)
	}

	warnings, err := validate.Run(validate.Input{
		File:    name,
		Blocks:  set.Blocks(),
		Records: records,
		Names:   names,
	}, opts.Policy)
	if err != nil {
		return nil, err
	}

	builder := result.NewBuilder(name, v.Name)
	for _, r := range records {
		if err := builder.Add(r); err != nil {
			return nil, err
		}
	}
	c := builder.Freeze(warnings)

	for _, w := range warnings {
		log.Warn(w.Message,
			zap.String("check", w.Check),
			zap.Int("line", w.Line),
			zap.String("block", w.Block),
		)
	}
	log.Info("parsed file", zap.Int("blocks", set.Len()), zap.Int("records", c.Len()))
	return c, nil
}

// Open parses the file at path. The variant is chosen by the file name.
func Open(path string, opts *Options) (*result.Container, error) {
	v, err := opts.registry().Match(path)
	if err != nil {
		return nil, err
	}
	return OpenVariant(path, v, opts)
}

// OpenDepletion parses the depletion file at path.
func OpenDepletion(path string, opts *Options) (*result.Container, error) {
	return OpenVariant(path, Depletion, opts)
}

// OpenDetector parses the detector file at path.
func OpenDetector(path string, opts *Options) (*result.Container, error) {
	return OpenVariant(path, Detector, opts)
}

// OpenResults parses the result file at path.
func OpenResults(path string, opts *Options) (*result.Container, error) {
	return OpenVariant(path, Results, opts)
}

// OpenVariant parses the file at path with the given variant regardless of
// its name.
func OpenVariant(path string, v *Variant, opts *Options) (*result.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		z, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("error opening %q: %w", path, err)
		}
		defer z.Close()
		r = z
	case ".dz":
		z, err := dictzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("error opening %q: %w", path, err)
		}
		defer z.Close()
		r = z
	}

	return Parse(r, path, v, opts)
}

// OpenAll parses all files under a directory that a registered variant
// claims. Files are parsed concurrently. This function will return all
// successfully parsed containers in path order along with any errors that
// occurred. Files not yet started when ctx is done are not parsed.
func OpenAll(ctx context.Context, path string, opts *Options) ([]*result.Container, []error) {
	reg := opts.registry()

	var paths []string
	var errs []error
	if err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		// Walking the file path will ignore errors.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, err := reg.Match(path); err == nil {
			paths = append(paths, path)
		}
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}

	containers := make([]*result.Container, len(paths))
	fileErrs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(opts.concurrency())
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fileErrs[i] = fmt.Errorf("error opening %q: %w", p, err)
				return nil
			}
			containers[i], fileErrs[i] = Open(p, opts)
			return nil
		})
	}
	// Per-file errors are collected in fileErrs.
	_ = g.Wait()

	var out []*result.Container
	for i := range paths {
		if fileErrs[i] != nil {
			errs = append(errs, fileErrs[i])
			continue
		}
		out = append(out, containers[i])
	}
	return out, errs
}
