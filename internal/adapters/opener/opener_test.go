package opener

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URL(t *testing.T) {
	b, k, err := ParseS3URL("s3://accreditations/documents/credencial/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "accreditations", b)
	assert.Equal(t, "documents/credencial/a.pdf", k)

	b, k, err = ParseS3URL("s3://bkt/imports/../imports/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "bkt", b)
	assert.Equal(t, "imports/x.csv", k)

	for _, bad := range []string{"http://bkt/key", "s3://bkt", "s3:///key", "s3://bkt/"} {
		_, _, err := ParseS3URL(bad)
		assert.Error(t, err, bad)
	}
}

func TestCompoundOpenerHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "cedula\nV-1\n")
	}))
	defer srv.Close()

	op := NewCompoundOpener(NewHTTPOpener(srv.Client()), nil, "")

	rc, meta, err := op.Open(context.Background(), srv.URL+"/personas.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "cedula\nV-1\n", string(body))
	assert.Equal(t, "text/csv", meta.ContentType)
	assert.Equal(t, "personas.csv", meta.Key)

	_, _, err = op.Open(context.Background(), srv.URL+"/missing.csv")
	assert.ErrorContains(t, err, "http status 404")
}

func TestCompoundOpenerLocal(t *testing.T) {
	name := filepath.Join(t.TempDir(), "personas.csv")
	require.NoError(t, os.WriteFile(name, []byte("cedula\n"), 0o600))

	op := NewCompoundOpener(nil, nil, "")
	_, _, err := op.Open(context.Background(), name)
	assert.Error(t, err, "bare paths need a bucket unless local files are enabled")

	op.Local = NewLocalOpener()
	rc, meta, err := op.Open(context.Background(), "file://"+name)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "file", meta.Source)
	assert.EqualValues(t, 7, meta.Size)
}

func TestCompoundOpenerUnconfigured(t *testing.T) {
	op := NewCompoundOpener(nil, nil, "")
	_, _, err := op.Open(context.Background(), "https://example.com/a.csv")
	assert.EqualError(t, err, "http opener not configured")
	_, _, err = op.Open(context.Background(), "s3://b/a.csv")
	assert.EqualError(t, err, "s3 opener not configured")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("image/png", "documents/credencial/a.pdf"))
	assert.Equal(t, "application/pdf", contentType("application/octet-stream", "documents/credencial/a.pdf"))
	assert.Equal(t, "application/pdf", contentType("", "a.pdf"))
	assert.Equal(t, "application/octet-stream", contentType("", "noext"))
}
