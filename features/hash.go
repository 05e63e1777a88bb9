package features

import (
	"encoding/json"
	"fmt"
	"hash/adler32"
)

/*
A Path locates one cell inside a nested column value. Elements are
either int list indices or string struct keys, root first. The path is
only ever used to derive deterministic asset file names, never to
identify cells.
*/
type Path []any

// With returns a new path extended by one segment. The receiver is
// never mutated so sibling cells can share a prefix safely.
func (obj Path) With(segment any) Path {
	extended := make(Path, 0, len(obj)+1)
	extended = append(extended, obj...)
	extended = append(extended, segment)
	return extended
}

// AppendHashSuffix appends a short checksum of the path to the base
// name: "{base}-{hex}". An empty path returns the base unchanged. The
// checksum is an adler32 over the JSON serialization of the path, so
// the same path always yields the same suffix and re-runs produce the
// same asset URLs.
func AppendHashSuffix(base string, path Path) string {
	if len(path) == 0 {
		return base
	}
	serialized, err := json.Marshal(path)
	if err != nil {
		// int and string segments always serialize
		return base
	}
	return fmt.Sprintf("%s-%x", base, adler32.Checksum(serialized))
}
