// Package collector fetches and normalizes competitor material: public web
// pages, uploaded PDFs, raw pastes, and auto-discovered research URLs.
package collector

import (
	"strings"

	"github.com/sells-group/rivaliq/internal/model"
)

// kindPattern maps a URL substring to a source kind. Order matters: the
// first matching pattern wins, so reddit.com classifies as reddit even when
// the path contains /blog/.
type kindPattern struct {
	kind     model.SourceKind
	patterns []string
}

var kindPatterns = []kindPattern{
	{model.SourceKindReddit, []string{"reddit.com", "old.reddit.com"}},
	{model.SourceKindG2, []string{"g2.com"}},
	{model.SourceKindCapterra, []string{"capterra.com"}},
	{model.SourceKindTrustpilot, []string{"trustpilot.com"}},
	{model.SourceKindForum, []string{"community.", "forum.", "discuss."}},
	{model.SourceKindBlog, []string{"blog.", "/blog/"}},
	{model.SourceKindPricing, []string{"/pricing", "/plans"}},
}

// DetectSourceKind classifies a URL by matching it against the ordered
// pattern table. Unmatched URLs fall back to the generic web kind.
func DetectSourceKind(rawURL string) model.SourceKind {
	lower := strings.ToLower(rawURL)
	for _, kp := range kindPatterns {
		for _, p := range kp.patterns {
			if strings.Contains(lower, p) {
				return kp.kind
			}
		}
	}
	return model.SourceKindWeb
}
