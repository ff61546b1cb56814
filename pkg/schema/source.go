package schema

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidSource reports a schema location that cannot be turned into a
// Source.
var ErrInvalidSource = errors.New("schema: invalid source")

// Source tells a Loader where a schema document lives and which reader to use.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind selects the reader a Loader uses for a Source.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type location struct {
	kind SourceKind
	ref  string
}

func (l location) Kind() SourceKind { return l.kind }
func (l location) Location() string { return l.ref }

// SourceFromFile points at a schema document on disk.
func SourceFromFile(path string) Source {
	return location{kind: SourceKindFile, ref: filepath.Clean(path)}
}

// SourceFromFS points at a schema document inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return location{kind: SourceKindFS, ref: name}
}

// ParseURLSource validates raw as an absolute http(s) URL with a host and
// returns a URL Source. Malformed input yields an error wrapping
// ErrInvalidSource.
func ParseURLSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidSource)
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSource, raw, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q: unsupported scheme %q", ErrInvalidSource, raw, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q: missing host", ErrInvalidSource, raw)
	}
	return location{kind: SourceKindURL, ref: parsed.String()}, nil
}
