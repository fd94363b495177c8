package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"

	"accreditations/internal/ports"
)

// LocalOpener reads files from disk. Only the CLI wires it; HTTP callers
// cannot reach the server's filesystem.
type LocalOpener struct{}

func NewLocalOpener() *LocalOpener { return &LocalOpener{} }

func (LocalOpener) Open(_ context.Context, name string) (io.ReadCloser, ports.Meta, error) {
	log.Printf("[OPENER][FILE][START] path=%q", name)
	f, err := os.Open(name)
	if err != nil {
		log.Printf("[OPENER][FILE][ERR] open: %v", err)
		return nil, ports.Meta{}, fmt.Errorf("open %s: %w", name, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ports.Meta{}, fmt.Errorf("stat %s: %w", name, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(name))
	log.Printf("[OPENER][FILE][OK] content_type=%q size=%d", ct, st.Size())
	return f, ports.Meta{
		Source:      "file",
		ContentType: ct,
		Size:        st.Size(),
		Key:         name,
	}, nil
}
