// Package sanitize strips model-produced HTML down to explicit tag
// allow-lists. No attribute survives, which closes attribute-based injection
// vectors (onclick, style, href) wholesale.
package sanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// explanationPolicy covers block-structured prose in analysis explanations.
	explanationPolicy = newPolicy("p", "strong", "em", "ul", "li", "ol", "br", "span")

	// particlePolicy covers short inline particle annotations.
	particlePolicy = newPolicy("strong", "em", "br")
)

func newPolicy(tags ...string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(tags...)
	return p
}

// Explanation sanitizes an analysis explanation. Idempotent.
func Explanation(html string) string {
	return explanationPolicy.Sanitize(html)
}

// ParticleDescription sanitizes a particle description. Idempotent.
func ParticleDescription(html string) string {
	return particlePolicy.Sanitize(html)
}
