package performance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/useoai/seoscan/internal/browser"
)

// TestDurationToMs tests the sentinel-preserving conversion.
func TestDurationToMs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"zero stays sentinel", 0, 0},
		{"negative stays sentinel", -time.Second, 0},
		{"sub-millisecond rounds up", 300 * time.Microsecond, 1},
		{"exact millisecond", time.Millisecond, 1},
		{"typical latency", 245 * time.Millisecond, 245},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := durationToMs(tt.d); got != tt.want {
				t.Errorf("durationToMs(%v) = %d, want %d", tt.d, got, tt.want)
			}
		})
	}
}

// TestAnalyzeDynamicLazyEvalFailure tests that a failing lazy-image
// evaluation leaves the flag false instead of failing the analysis.
func TestAnalyzeDynamicLazyEvalFailure(t *testing.T) {
	t.Parallel()

	page := &stubPage{
		nav: &browser.NavigationInfo{TTFB: 50 * time.Millisecond},
		requests: []browser.Request{
			{URL: "https://example.com/", Kind: "document"},
		},
		lazyErr: errors.New("execution context destroyed"),
	}

	profile, err := analyzeDynamic(context.Background(), page, "https://example.com")
	if err != nil {
		t.Fatalf("analyzeDynamic failed: %v", err)
	}
	if profile.LazyLoadedImages {
		t.Error("lazy flag must stay false when evaluation fails")
	}
	if profile.TotalRequests != 1 {
		t.Errorf("total_requests = %d, want 1", profile.TotalRequests)
	}
	if profile.ResourceCount != 0 {
		t.Errorf("resource_count = %d, want 0 (only the document was requested)", profile.ResourceCount)
	}
}
