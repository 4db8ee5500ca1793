package model

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// File replays a saved completion, one line per fragment. The prompt is ignored.
type File struct {
	path string
}

// NewFile creates a replaying generator for path.
func NewFile(path string) *File { return &File{path: path} }

func (f *File) Generate(ctx context.Context, _ string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		fh, err := os.Open(f.path)
		if err != nil {
			yield("", fmt.Errorf("model: open %s: %w", f.path, err))
			return
		}
		defer fh.Close()

		r := bufio.NewReader(fh)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			line, err := r.ReadString('\n')
			if line != "" && !yield(line, nil) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", fmt.Errorf("model: read %s: %w", f.path, err))
				}
				return
			}
		}
	}
}
