package performance

import (
	"net/url"
	"path"
	"strings"

	"github.com/useoai/seoscan/internal/model"
)

// kindBuckets maps browser-reported resource types to profile buckets.
// XHR and fetch share a bucket: both are script-initiated requests and
// the profile does not distinguish them.
var kindBuckets = map[string]model.ResourceType{
	"document":   model.TypeDocument,
	"script":     model.TypeScript,
	"stylesheet": model.TypeStylesheet,
	"image":      model.TypeImage,
	"font":       model.TypeFont,
	"fetch":      model.TypeFetch,
	"xhr":        model.TypeFetch,
}

// extBuckets maps file extensions to buckets for requests the browser
// left unclassified.
var extBuckets = map[string]model.ResourceType{
	".js":    model.TypeScript,
	".mjs":   model.TypeScript,
	".css":   model.TypeStylesheet,
	".png":   model.TypeImage,
	".jpg":   model.TypeImage,
	".jpeg":  model.TypeImage,
	".gif":   model.TypeImage,
	".webp":  model.TypeImage,
	".avif":  model.TypeImage,
	".svg":   model.TypeImage,
	".ico":   model.TypeImage,
	".woff":  model.TypeFont,
	".woff2": model.TypeFont,
	".ttf":   model.TypeFont,
	".otf":   model.TypeFont,
	".eot":   model.TypeFont,
}

// Classify maps an observed request to its profile bucket.
//
// The function is total: every input classifies to exactly one bucket
// and unknown inputs land in TypeOther, never an error. The browser's
// own resource type wins when present; otherwise the URL's file
// extension decides.
func Classify(kind, rawURL string) model.ResourceType {
	if t, ok := kindBuckets[strings.ToLower(kind)]; ok {
		return t
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return model.TypeOther
	}
	if t, ok := extBuckets[strings.ToLower(path.Ext(u.Path))]; ok {
		return t
	}
	return model.TypeOther
}
