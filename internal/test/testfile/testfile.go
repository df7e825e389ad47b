// Package testfile exposes the HTML fixtures under testdata/html.
// Paths are relative to the package under test.
package testfile

import (
	"os"
	"path/filepath"
)

const htmlDir = "testdata/html"

var (
	BlankHTML = MustRead("blank.html")
	ItemsHTML = MustRead("items.html")
)

// MustRead returns the content of the named fixture, or panics when it is missing.
func MustRead(name string) []byte {
	path := filepath.Join(htmlDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		panic("no such file: " + path)
	}
	return data
}
