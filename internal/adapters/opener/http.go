package opener

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"

	"accreditations/internal/ports"
)

type HTTPOpener struct{ Client *http.Client }

func NewHTTPOpener(cli *http.Client) *HTTPOpener {
	if cli == nil {
		cli = &http.Client{}
	}
	return &HTTPOpener{Client: cli}
}

func (h *HTTPOpener) Open(ctx context.Context, rawURL string) (io.ReadCloser, ports.Meta, error) {
	log.Printf("[OPENER][HTTP][START] url=%q", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, ports.Meta{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		log.Printf("[OPENER][HTTP][ERR] do request: %v", err)
		return nil, ports.Meta{}, err
	}
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		log.Printf("[OPENER][HTTP][ERR] status=%d content_type=%q", resp.StatusCode, ct)
		return nil, ports.Meta{}, fmt.Errorf("GET %s: http status %d", rawURL, resp.StatusCode)
	}

	size := resp.ContentLength
	if size < 0 {
		size = -1
	}
	log.Printf("[OPENER][HTTP][OK] content_type=%q size=%d", ct, size)

	meta := ports.Meta{Source: "https", ContentType: ct, Size: size}
	if u, err := url.Parse(rawURL); err == nil {
		meta.Key = path.Base(u.Path)
	}
	return resp.Body, meta, nil
}
