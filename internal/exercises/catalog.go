package exercises

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

//go:embed builtin/*.json builtin/*.yaml
var builtinFS embed.FS

// Catalog serves exercise documents found at the top level of a file system.
// Documents are decoded on every call, so a directory-backed catalog picks
// up edits without a restart and callers always get a private copy.
type Catalog struct {
	fsys fs.FS
}

// NewCatalog returns a catalog over fsys.
func NewCatalog(fsys fs.FS) *Catalog {
	if fsys == nil {
		panic("file system cannot be nil")
	}
	return &Catalog{fsys: fsys}
}

// Builtin returns the catalog of exercises compiled into the binary.
func Builtin() *Catalog {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(fmt.Sprintf("builtin exercises: %v", err))
	}
	return NewCatalog(sub)
}

// Dir returns a catalog over the documents in dir.
func Dir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: exercises directory: %w", termsim.ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: exercises directory %s is not a directory", termsim.ErrInvalidConfig, dir)
	}
	return NewCatalog(os.DirFS(dir)), nil
}

type entry struct {
	filename string
	exercise *termsim.Exercise
}

// each decodes documents in filename order and calls fn until it returns
// false.
func (c *Catalog) each(ctx context.Context, fn func(entry) bool) error {
	files, err := fs.ReadDir(c.fsys, ".")
	if err != nil {
		return fmt.Errorf("read exercises: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !IsDocument(f.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := fs.ReadFile(c.fsys, f.Name())
		if err != nil {
			return fmt.Errorf("read exercise %s: %w", f.Name(), err)
		}
		ex, err := Decode(f.Name(), data)
		if err != nil {
			return err
		}
		if !fn(entry{filename: f.Name(), exercise: ex}) {
			return nil
		}
	}
	return nil
}

// Get returns the exercise whose id is id.
func (c *Catalog) Get(ctx context.Context, id string) (*termsim.Exercise, error) {
	var found *termsim.Exercise
	err := c.each(ctx, func(e entry) bool {
		if e.exercise.ID == id {
			found = e.exercise
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", termsim.ErrExerciseNotFound, id)
	}
	return found, nil
}

// Find returns the first exercise, in filename order, that Matches q.
func (c *Catalog) Find(ctx context.Context, q termsim.ExerciseQuery) (*termsim.Exercise, error) {
	if q.Topic == "" {
		return nil, ErrTopicRequired
	}
	var found *termsim.Exercise
	err := c.each(ctx, func(e entry) bool {
		if Matches(e.exercise, q) {
			found = e.exercise
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no exercise for topic %q", termsim.ErrExerciseNotFound, q.Topic)
	}
	return found, nil
}

// List summarizes every exercise in filename order.
func (c *Catalog) List(ctx context.Context) ([]termsim.ExerciseSummary, error) {
	var out []termsim.ExerciseSummary
	err := c.each(ctx, func(e entry) bool {
		out = append(out, summarize(e.exercise, e.filename))
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
