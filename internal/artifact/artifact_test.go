package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

type fakeStore struct {
	objects map[string]string
	calls   []string
}

func (f *fakeStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.calls = append(f.calls, bucket+"/"+key)
	body, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.txt")
	require.NoError(t, os.WriteFile(path, []byte("عقد"), 0o600))

	a, err := NewLoader(nil).Load(context.Background(), FromPath(path))
	require.NoError(t, err)
	assert.Equal(t, "contract.txt", a.Name)
	assert.Equal(t, path, a.Origin)
	assert.Equal(t, ".txt", a.Ext())
	assert.Equal(t, "عقد", string(a.Data))
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", 64)), 0o600))

	tests := []struct {
		name string
		src  Source
		code domain.ErrorCode
	}{
		{"missing file", FromPath(filepath.Join(dir, "nope.pdf")), domain.CodeIO},
		{"directory", FromPath(dir), domain.CodeIO},
		{"empty file", FromPath(empty), domain.CodeCorruptInput},
		{"oversized file", FromPath(big), domain.CodeCorruptInput},
		{"oversized bytes", FromBytes("a.txt", []byte(strings.Repeat("x", 33))), domain.CodeCorruptInput},
		{"empty bytes", FromBytes("a.txt", []byte{}), domain.CodeCorruptInput},
		{"no source", Source{}, domain.CodeIO},
		{"object store not configured", FromPath("s3://bucket/doc.pdf"), domain.CodeIO},
	}

	loader := NewLoader(nil, WithMaxBytes(32))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tc.src)
			require.Error(t, err)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}

func TestLoader_LoadBytes(t *testing.T) {
	a, err := NewLoader(nil).Load(context.Background(), FromBytes("uploads/tender.PDF", []byte("%PDF-1.7")))
	require.NoError(t, err)
	assert.Equal(t, "tender.PDF", a.Name)
	assert.Equal(t, ".pdf", a.Ext())
}

func TestLoader_LoadObject(t *testing.T) {
	store := &fakeStore{objects: map[string]string{"tenders/2024/t-15.txt": "مناقصة"}}
	loader := NewLoader(nil, WithObjectStore(store))

	a, err := loader.Load(context.Background(), FromPath("s3://tenders/2024/t-15.txt"))
	require.NoError(t, err)
	assert.Equal(t, "t-15.txt", a.Name)
	assert.Equal(t, "مناقصة", string(a.Data))
	assert.Equal(t, []string{"tenders/2024/t-15.txt"}, store.calls)

	_, err = loader.Load(context.Background(), FromPath("s3://tenders/missing.txt"))
	assert.ErrorIs(t, err, domain.ErrIO)

	_, err = loader.Load(context.Background(), FromPath("s3://bucket-only"))
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil).Load(ctx, FromBytes("a.txt", []byte("x")))
	assert.ErrorIs(t, err, domain.ErrCancelled)
}
