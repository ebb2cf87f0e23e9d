package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pyembed-labs/pyembed/internal/logsink"
)

// ChunkSize is the read buffer size; progress is reported once per chunk.
const ChunkSize = 80 * 1024

// ProgressFunc receives the completed percentage, 0 to 100.
type ProgressFunc func(percent float64)

// Fetcher places the content of a URL at a destination path.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, progress ProgressFunc) error
}

// HTTPClient is the subset of *http.Client the fetcher uses.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads over HTTP(S).
type HTTPFetcher struct {
	client    HTTPClient
	sink      logsink.Sink
	userAgent string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c HTTPClient) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithSink sets where transfer progress lines are logged.
func WithSink(s logsink.Sink) Option {
	return func(f *HTTPFetcher) {
		f.sink = logsink.OrDiscard(s)
	}
}

// WithUserAgent sets the User-Agent header. Without it net/http's default is sent.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// New creates an HTTPFetcher using http.DefaultClient.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    http.DefaultClient,
		sink:      logsink.Discard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch streams url into dest. The body goes to a temporary file next to dest
// that is renamed into place only after the last byte arrives, so a failed or
// cancelled transfer never leaves a file at dest.
//
// progress is called after every chunk when the server reports a content
// length; the last call on success is exactly 100. Without a content length it
// is never called.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request for %s: %w", ErrFetchFailed, url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	logsink.Info(f.sink, "downloading", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("%w: creating destination directory: %w", ErrFetchFailed, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("%w: creating download file: %w", ErrFetchFailed, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	written, err := copyWithProgress(ctx, tmp, resp.Body, resp.ContentLength, progress)
	if err != nil {
		if ctx.Err() != nil {
			logsink.Warn(f.sink, "download cancelled", "url", url, "received", humanize.Bytes(uint64(written)))
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return fmt.Errorf("%w: reading %s: %w", ErrFetchFailed, url, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: writing download: %w", ErrFetchFailed, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("%w: moving download into place: %w", ErrFetchFailed, err)
	}
	committed = true

	logsink.Info(f.sink, "downloaded", "path", dest, "size", humanize.Bytes(uint64(written)))
	return nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	var read int64
	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return read, err
		}
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return read, err
			}
			read += int64(n)
			if progress != nil && total > 0 {
				progress(float64(read) / float64(total) * 100)
			}
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			return read, readErr
		}
	}
	if total > 0 && read != total {
		return read, fmt.Errorf("received %d of %d bytes", read, total)
	}
	return read, nil
}
