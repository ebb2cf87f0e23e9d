package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pyembed-labs/pyembed/internal/runner"
)

func requireCurl(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell tests")
	}
	if _, err := exec.LookPath("curl"); err != nil {
		t.Skip("curl not available")
	}
}

func TestCommandFetcher_Downloads(t *testing.T) {
	requireCurl(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("print('bootstrap')\n"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "dir with space", "get-pip.py")
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatal(err)
	}

	called := false
	f := NewCommand(runner.New())
	if err := f.Fetch(context.Background(), server.URL+"/get-pip.py", dest, func(float64) { called = true }); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "print('bootstrap')\n" {
		t.Errorf("content = %q", got)
	}
	if called {
		t.Error("command fetcher must not report progress")
	}
}

func TestCommandFetcher_HTTPFailure(t *testing.T) {
	requireCurl(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "get-pip.py")
	err := NewCommand(runner.New()).Fetch(context.Background(), server.URL, dest, nil)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		t.Error("destination exists after failed fetch")
	}
}

func TestByName(t *testing.T) {
	for name, want := range map[string]string{"": "*fetch.HTTPFetcher", "HTTP": "*fetch.HTTPFetcher", "curl": "*fetch.CommandFetcher"} {
		f, err := ByName(name, nil, nil)
		if err != nil {
			t.Fatalf("ByName(%q) error: %v", name, err)
		}
		if got := fmt.Sprintf("%T", f); got != want {
			t.Errorf("ByName(%q) = %s, want %s", name, got, want)
		}
	}
	if _, err := ByName("wget", nil, nil); err == nil {
		t.Error("expected error for unknown fetcher")
	}
}
