// Package testutil holds a corpus of valid WAML documents shared by the
// tests of the parser, the formatter and the root package.
package testutil

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// TestdataFS holds the embedded corpus.
//
//go:embed testdata/*.waml
var TestdataFS embed.FS

// ReadTestData reads and returns the content of an embedded document.
func ReadTestData(name string) ([]byte, error) {
	data, err := fs.ReadFile(TestdataFS, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read test data file '%s': %w", name, err)
	}
	return data, nil
}

// Corpus returns the names of all documents in the corpus, sorted.
func Corpus() []string {
	entries, err := fs.ReadDir(TestdataFS, "testdata")
	if err != nil {
		panic(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
