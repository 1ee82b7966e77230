package model

// ResourceType is the classification bucket for a page resource request.
//
// Design decision: We use string constants rather than iota because the
// values appear verbatim as keys of the resource_types JSON object, and
// downstream consumers (the reporting layer) match on those strings.
type ResourceType string

const (
	// TypeScript is a JavaScript resource (<script src> or a browser-reported
	// script request).
	TypeScript ResourceType = "script"

	// TypeImage is an image resource.
	TypeImage ResourceType = "image"

	// TypeStylesheet is a CSS resource.
	TypeStylesheet ResourceType = "stylesheet"

	// TypeFont is a web font resource.
	TypeFont ResourceType = "font"

	// TypeFetch is a script-initiated request (fetch or XMLHttpRequest).
	// Only observable on the dynamic analysis path.
	TypeFetch ResourceType = "fetch"

	// TypeOther is anything that does not fit the buckets above.
	// The classifier is total: unknown inputs land here, never an error.
	TypeOther ResourceType = "other"

	// TypeDocument is the distinguished classification for the top-level
	// navigation request. It is excluded from ResourceCount and
	// ResourceTypes, and only contributes to TotalRequests.
	TypeDocument ResourceType = "document"
)

// PerformanceProfile is the resource-usage profile of a single page,
// produced by the performance analyzer.
//
// The JSON field names are consumed verbatim by the reporting layer and
// must not change.
//
// Invariants:
//   - ResourceCount equals the sum of ResourceTypes values.
//   - TypeDocument never appears in ResourceTypes; navigation requests are
//     only counted in TotalRequests.
//   - All counts are non-negative; absent data is zero, never a missing field.
//   - TTFBMs of 0 means the measurement failed (sentinel); real measurements
//     are always positive.
//
// A profile is constructed fresh per analysis call and is not mutated after
// it is returned.
type PerformanceProfile struct {
	// TTFBMs is the time to first byte of the main document in milliseconds.
	// 0 is the "unmeasured" sentinel used when both analysis paths fail.
	TTFBMs int `json:"ttfb_ms"`

	// ResourceCount is the number of resource requests attributable to the
	// page, excluding the top-level navigation request.
	ResourceCount int `json:"resource_count"`

	// GzipEnabled reports whether the main document response was served
	// with gzip content encoding.
	GzipEnabled bool `json:"gzip_enabled"`

	// LazyLoadedImages reports whether any image on the page uses a
	// deferred-loading attribute.
	LazyLoadedImages bool `json:"lazy_loaded_images"`

	// ResourceTypes maps each resource-type bucket to its request count.
	// The map is always non-nil with all six buckets present so that JSON
	// consumers receive the full shape regardless of which path produced it.
	ResourceTypes map[ResourceType]int `json:"resource_types"`

	// ScriptsCount mirrors ResourceTypes[TypeScript] as a flat field for
	// the reporting layer.
	ScriptsCount int `json:"scripts_count"`

	// ImagesCount mirrors ResourceTypes[TypeImage].
	ImagesCount int `json:"images_count"`

	// StylesheetsCount mirrors ResourceTypes[TypeStylesheet].
	StylesheetsCount int `json:"stylesheets_count"`

	// FontsCount mirrors ResourceTypes[TypeFont].
	FontsCount int `json:"fonts_count"`

	// FetchRequestsCount mirrors ResourceTypes[TypeFetch]. Always 0 on the
	// static path, which cannot observe script-initiated requests.
	FetchRequestsCount int `json:"fetch_requests_count"`

	// TotalRequests is the total number of network requests observed,
	// including navigation requests excluded from ResourceCount. Only the
	// dynamic path populates it; the static path always reports 0.
	// Failed and aborted requests are included.
	TotalRequests int `json:"total_requests"`
}

// NewPerformanceProfile returns a profile with all counters zero and the
// ResourceTypes map initialized with every bucket.
func NewPerformanceProfile() *PerformanceProfile {
	return &PerformanceProfile{
		ResourceTypes: map[ResourceType]int{
			TypeScript:     0,
			TypeImage:      0,
			TypeStylesheet: 0,
			TypeFont:       0,
			TypeFetch:      0,
			TypeOther:      0,
		},
	}
}

// DefaultPerformanceProfile is the safe profile returned when both analysis
// paths fail: all counts zero, TTFBMs at the 0 sentinel, flags false.
// The shape is indistinguishable from a successful profile so that callers
// always receive every field.
func DefaultPerformanceProfile() *PerformanceProfile {
	return NewPerformanceProfile()
}

// AddResource records one classified resource request.
// TypeDocument requests are intentionally ignored here; record them with
// AddObservedRequest only.
func (p *PerformanceProfile) AddResource(t ResourceType) {
	if t == TypeDocument {
		return
	}
	p.ResourceTypes[t]++
	p.ResourceCount++
	switch t {
	case TypeScript:
		p.ScriptsCount++
	case TypeImage:
		p.ImagesCount++
	case TypeStylesheet:
		p.StylesheetsCount++
	case TypeFont:
		p.FontsCount++
	case TypeFetch:
		p.FetchRequestsCount++
	}
}

// AddObservedRequest bumps the total observed request counter.
// Used by the dynamic path for every captured request, including the
// navigation request and failed requests.
func (p *PerformanceProfile) AddObservedRequest() {
	p.TotalRequests++
}
