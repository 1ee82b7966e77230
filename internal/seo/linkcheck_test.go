package seo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/useoai/seoscan/internal/fetch"
)

// TestLinkCheckerCheck tests broken-link detection against a local server.
func TestLinkCheckerCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/error":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	checker := NewLinkChecker(fetch.NewInsecureClient())

	links := []string{
		srv.URL + "/ok",
		srv.URL + "/gone",
		srv.URL + "/missing",
		srv.URL + "/error",
		srv.URL + "/ok", // duplicate
	}

	broken := checker.Check(context.Background(), links)
	if len(broken) != 3 {
		t.Fatalf("expected 3 broken links, got %d: %v", len(broken), broken)
	}
	for _, b := range broken {
		if b == srv.URL+"/ok" {
			t.Error("working link reported broken")
		}
	}
}

// TestLinkCheckerHeadFallback tests the GET retry for servers that
// reject HEAD.
func TestLinkCheckerHeadFallback(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewLinkChecker(fetch.NewInsecureClient())

	if broken := checker.Check(context.Background(), []string{srv.URL}); len(broken) != 0 {
		t.Errorf("HEAD-rejecting but healthy link reported broken: %v", broken)
	}
}

// TestLinkCheckerMaxChecks tests the probe cap.
func TestLinkCheckerMaxChecks(t *testing.T) {
	t.Parallel()

	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewLinkChecker(fetch.NewInsecureClient(), WithMaxChecks(3))

	links := make([]string, 10)
	for i := range links {
		links[i] = srv.URL + "/" + string(rune('a'+i))
	}

	checker.Check(context.Background(), links)
	if got := probes.Load(); got > 3 {
		t.Errorf("expected at most 3 probes, got %d", got)
	}
}

// TestLinkCheckerUnreachable tests that connection failures count as broken.
func TestLinkCheckerUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	dead := srv.URL
	srv.Close()

	checker := NewLinkChecker(fetch.NewInsecureClient())

	broken := checker.Check(context.Background(), []string{dead})
	if len(broken) != 1 {
		t.Errorf("unreachable link must be broken, got %v", broken)
	}
}
