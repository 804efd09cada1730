// Package artifact loads input documents from local paths, in-memory bytes or
// S3-compatible object storage.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// DefaultMaxBytes bounds artifacts when the loader is built without a limit.
const DefaultMaxBytes int64 = 64 << 20

const objectScheme = "s3://"

// Source names where an artifact comes from. Exactly one of Path or Data is set.
type Source struct {
	Path string
	Name string
	Data []byte
}

// FromPath refers to a local file or an s3://bucket/key URI.
func FromPath(path string) Source {
	return Source{Path: path}
}

// FromBytes wraps an in-memory document; name carries the extension used for format hints.
func FromBytes(name string, data []byte) Source {
	return Source{Name: name, Data: data}
}

// String describes the source for logs and report metadata.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Name != "" {
		return s.Name
	}
	return "<bytes>"
}

// Artifact is a fully read input document.
type Artifact struct {
	// Name is the base file name, used for extension and keyword hints.
	Name string
	// Origin is the path, URI or caller-supplied name the artifact was loaded from.
	Origin string
	Data   []byte
}

// Ext returns the lower-cased extension of the artifact name, including the dot.
func (a *Artifact) Ext() string {
	return strings.ToLower(filepath.Ext(a.Name))
}

// ObjectStore fetches objects by bucket and key.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Loader reads sources into artifacts with a size ceiling.
type Loader struct {
	maxBytes int64
	objects  ObjectStore
	logger   *observability.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxBytes sets the size ceiling.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithObjectStore enables s3:// sources.
func WithObjectStore(s ObjectStore) Option {
	return func(l *Loader) { l.objects = s }
}

// NewLoader creates a loader.
func NewLoader(logger *observability.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = observability.Nop()
	}
	l := &Loader{maxBytes: DefaultMaxBytes, logger: logger.WithComponent("artifact")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the source. Missing or unreadable inputs yield IO_ERROR; empty or
// oversized inputs yield CORRUPT_INPUT.
func (l *Loader) Load(ctx context.Context, src Source) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Cancelled(err)
	}

	var (
		a   *Artifact
		err error
	)
	switch {
	case src.Path == "" && src.Data == nil:
		return nil, domain.IOError("artifact source is empty", nil)
	case src.Path == "":
		a = &Artifact{Name: filepath.Base(src.Name), Origin: src.String(), Data: src.Data}
		if int64(len(a.Data)) > l.maxBytes {
			return nil, domain.CorruptInput(fmt.Sprintf("artifact exceeds %d bytes", l.maxBytes), nil)
		}
	case strings.HasPrefix(src.Path, objectScheme):
		a, err = l.loadObject(ctx, src.Path)
	default:
		a, err = l.loadFile(src.Path)
	}
	if err != nil {
		return nil, err
	}

	if len(a.Data) == 0 {
		return nil, domain.CorruptInput(fmt.Sprintf("artifact %s is empty", a.Origin), nil)
	}

	l.logger.Debug().Str("origin", a.Origin).Int("bytes", len(a.Data)).Msg("artifact loaded")
	return a, nil
}

func (l *Loader) loadFile(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.IOError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return nil, domain.IOError(fmt.Sprintf("cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return nil, domain.IOError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	if info.Size() > l.maxBytes {
		return nil, domain.CorruptInput(fmt.Sprintf("file %s exceeds %d bytes", path, l.maxBytes), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	defer f.Close()

	data, err := readLimited(f, l.maxBytes)
	if err != nil {
		return nil, err
	}
	return &Artifact{Name: filepath.Base(path), Origin: path, Data: data}, nil
}

func (l *Loader) loadObject(ctx context.Context, uri string) (*Artifact, error) {
	if l.objects == nil {
		return nil, domain.IOError(fmt.Sprintf("object storage is not configured for %s", uri), nil)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, objectScheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, domain.IOError(fmt.Sprintf("malformed object URI %q, expected s3://bucket/key", uri), nil)
	}

	rc, err := l.objects.Get(ctx, bucket, key)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.Cancelled(ctx.Err())
		}
		return nil, domain.IOError(fmt.Sprintf("fetch %s", uri), err)
	}
	defer rc.Close()

	data, err := readLimited(rc, l.maxBytes)
	if err != nil {
		return nil, err
	}
	return &Artifact{Name: filepath.Base(key), Origin: uri, Data: data}, nil
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, domain.IOError("read artifact", err)
	}
	if int64(len(data)) > max {
		return nil, domain.CorruptInput(fmt.Sprintf("artifact exceeds %d bytes", max), nil)
	}
	return data, nil
}
