package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/andybalholm/brotli"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// stdinName stands for standard input in file arguments.
const stdinName = "-"

// expandArgs resolves glob patterns such as "conf/**/*.waml" into the
// files they match. Arguments without glob syntax are kept as given.
func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == stdinName || !hasMeta(arg) {
			paths = append(paths, arg)
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func hasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func isBrotli(path string) bool {
	return filepath.Ext(path) == ".br"
}

// readSource returns the contents of path, decompressing .br files.
func readSource(stdin io.Reader, path string) ([]byte, error) {
	if path == stdinName {
		return io.ReadAll(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if isBrotli(path) {
		r = brotli.NewReader(f)
	}
	return io.ReadAll(r)
}

// writeSource replaces the contents of path, compressing .br files.
func writeSource(path string, data []byte) error {
	if isBrotli(path) {
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}

// result is the outcome of processing one file.
type result struct {
	out []byte
	err error
}

// eachFile runs fn on every path in parallel and returns the results in
// path order. fn failing for one file does not stop the others; only a
// done ctx does.
func eachFile(ctx context.Context, paths []string, fn func(path string) ([]byte, error)) ([]result, error) {
	results := make([]result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := fn(path)
			results[i] = result{out: out, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
