package attachment

import (
	"context"
	"path"
	"strings"
)

// Object is a file to be stored.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// Store persists delivery note files and returns a reference to them.
type Store interface {
	// Put writes the object and returns where it can be found again.
	Put(ctx context.Context, obj Object) (string, error)
}

// NoteKey builds the storage key of a delivery note file. Only the base name
// of filename is kept.
func NoteKey(orderID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "surat-jalan"
	}
	return path.Join("surat-jalan", orderID, name)
}
