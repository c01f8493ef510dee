// Package contextgather reads the files a task names so their contents can be
// handed to an agent as context.
package contextgather

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files read at once.
const DefaultConcurrency = 4

var errInvalidUTF8 = errors.New("content is not valid UTF-8 text")

// Gatherer resolves paths and reads them as text.
type Gatherer struct {
	baseDir     string
	reporter    Reporter
	concurrency int
	stat        func(string) (os.FileInfo, error)
	readFile    func(string) ([]byte, error)
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithBaseDir sets the directory relative paths are resolved against.
// Empty means the working directory at the time Gather is called.
func WithBaseDir(dir string) Option {
	return func(g *Gatherer) { g.baseDir = dir }
}

// WithReporter sets the notification sink. nil installs NopReporter.
func WithReporter(r Reporter) Option {
	return func(g *Gatherer) {
		if r == nil {
			r = NopReporter{}
		}
		g.reporter = r
	}
}

// WithConcurrency bounds parallel reads. Values <= 0 use DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(g *Gatherer) { g.concurrency = n }
}

// WithReadFile replaces the function used to read file bytes.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(g *Gatherer) { g.readFile = fn }
}

// New creates a Gatherer.
func New(opts ...Option) *Gatherer {
	g := &Gatherer{
		reporter: NopReporter{},
		stat:     os.Stat,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.concurrency <= 0 {
		g.concurrency = DefaultConcurrency
	}
	return g
}

// Resolve converts a path to the absolute form used as its result key.
func (g *Gatherer) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	base := g.baseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		base = wd
	}
	abs, err := filepath.Abs(filepath.Join(base, path))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

// Gather reads every path and returns one entry per resolved path.
// Per-file failures are recorded in the result and reported, never returned.
// The only errors are context cancellation and an unknowable working directory.
//
// Reads run concurrently, but entries and notifications are applied in input
// order, so the last occurrence of a duplicate path wins.
func (g *Gatherer) Gather(ctx context.Context, paths []string) (*Result, error) {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		abs, err := g.Resolve(p)
		if err != nil {
			return nil, err
		}
		resolved[i] = abs
	}

	entries := make([]Entry, len(resolved))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, path := range resolved {
		i, path := i, path
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = g.load(path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := newResult()
	for _, e := range entries {
		result.put(e)
		switch e.Kind {
		case KindNotFound:
			g.reporter.Warning(e.Message)
		case KindReadError:
			g.reporter.Error(e.Message)
		}
	}
	return result, nil
}

// load reads a single resolved path.
func (g *Gatherer) load(path string) Entry {
	info, err := g.stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return notFound(path)
	}

	data, err := g.readFile(path)
	if err != nil {
		return readError(path, err)
	}
	if !utf8.Valid(data) {
		return readError(path, errInvalidUTF8)
	}
	return Entry{Path: path, Kind: KindOK, Content: string(data)}
}
