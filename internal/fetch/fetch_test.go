package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pyembed-labs/pyembed/internal/branding"
)

func payload(size int) []byte {
	return bytes.Repeat([]byte("pyembed!"), size/8)
}

func assertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected empty destination directory, found %v", names)
	}
}

func TestFetch_WritesFileAndReportsProgress(t *testing.T) {
	data := payload(400 * 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.Write(data)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "python-3.7.3-embed-amd64.zip")
	var calls []float64
	f := New(WithHTTPClient(server.Client()))

	if err := f.Fetch(context.Background(), server.URL+"/python.zip", dest, func(p float64) {
		calls = append(calls, p)
	}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("destination has %d bytes, want %d", len(got), len(data))
	}

	if len(calls) < 2 {
		t.Fatalf("expected several progress calls, got %v", calls)
	}
	for i := 1; i < len(calls); i++ {
		if calls[i] < calls[i-1] {
			t.Errorf("progress decreased: %v", calls)
			break
		}
	}
	if last := calls[len(calls)-1]; last != 100 {
		t.Errorf("final progress = %v, want exactly 100", last)
	}
}

func TestFetch_NoContentLengthSkipsProgress(t *testing.T) {
	data := payload(200 * 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before the body is complete forces chunked encoding.
		flusher := w.(http.Flusher)
		half := len(data) / 2
		w.Write(data[:half])
		flusher.Flush()
		w.Write(data[half:])
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "archive.zip")
	called := false
	err := New(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL, dest, func(float64) {
		called = true
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if called {
		t.Error("progress callback invoked without a content length")
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(data) {
		t.Errorf("destination has %d bytes, want %d", len(got), len(data))
	}
}

func TestFetch_NilProgressIsAllowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "f")
	if err := New(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL, dest, nil); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
}

func TestFetch_StatusErrorLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	err := New(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL+"/missing.zip", filepath.Join(dir, "missing.zip"), nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
	if !errors.Is(err, ErrFetchFailed) {
		t.Error("errors.Is(err, ErrFetchFailed) = false")
	}
	if errors.Is(err, ErrCancelled) {
		t.Error("status failure reported as cancellation")
	}
	assertNoFiles(t, dir)
}

func TestFetch_CancelMidTransferLeavesNoFile(t *testing.T) {
	data := payload(ChunkSize * 2)
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)*4))
		w.Write(data)
		w.(http.Flusher).Flush()
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	dir := t.TempDir()
	done := make(chan error, 1)
	go func() {
		done <- New(WithHTTPClient(server.Client())).Fetch(ctx, server.URL, filepath.Join(dir, "big.zip"), nil)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected wrapped context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not return after cancellation")
	}
	assertNoFiles(t, dir)
}

func TestFetch_CancelledBeforeStart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	err := New(WithHTTPClient(server.Client())).Fetch(ctx, server.URL, filepath.Join(dir, "f.zip"), nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	assertNoFiles(t, dir)
}

func TestFetch_TruncatedBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
	}))
	defer server.Close()

	dir := t.TempDir()
	err := New(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL, filepath.Join(dir, "f.zip"), nil)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	assertNoFiles(t, dir)
}

func TestFetch_UserAgent(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.UserAgent())
		mu.Unlock()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dir := t.TempDir()
	fetchers := []*HTTPFetcher{
		New(WithHTTPClient(server.Client()), WithUserAgent("custom/1.0")),
		NewBranded(nil),
	}
	for i, f := range fetchers {
		if err := f.Fetch(context.Background(), server.URL+"/a.zip", filepath.Join(dir, fmt.Sprintf("%d.zip", i)), nil); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"custom/1.0", branding.CLIName() + "-fetch"}
	if len(got) != len(want) {
		t.Fatalf("requests = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("User-Agent[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
