package dataset

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"scrolly/internal/record"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxBodyBytes        = 64 << 20
)

// HTTPSource fetches the dataset from a URL on every load.
type HTTPSource struct {
	url     string
	format  string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPSource(rawURL, format string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPSource{url: rawURL, format: format, timeout: timeout, client: &http.Client{}}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Load(ctx context.Context) ([]record.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &LoadError{Source: s.url, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: s.url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Source: s.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &LoadError{Source: s.url, Err: err}
	}
	format, err := resolveFormat(s.format, s.guessName(resp))
	if err != nil {
		return nil, &LoadError{Source: s.url, Err: err}
	}
	rows, err := decode(format, data)
	if err != nil {
		return nil, &LoadError{Source: s.url, Err: err}
	}
	return rows, nil
}

// guessName yields something with an extension resolveFormat can inspect.
func (s *HTTPSource) guessName(resp *http.Response) string {
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		switch mt {
		case "application/json":
			return "body.json"
		case "text/csv":
			return "body.csv"
		case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
			return "body.xlsx"
		}
	}
	if u, err := url.Parse(s.url); err == nil {
		return path.Base(u.Path)
	}
	return s.url
}
