package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rivaliq/internal/model"
)

func TestDetectSourceKind(t *testing.T) {
	tests := []struct {
		url  string
		want model.SourceKind
	}{
		{"https://www.reddit.com/r/sysadmin/comments/abc", model.SourceKindReddit},
		{"https://old.reddit.com/search/?q=acme", model.SourceKindReddit},
		{"https://www.g2.com/products/acme/reviews", model.SourceKindG2},
		{"https://www.capterra.com/p/12345/acme/", model.SourceKindCapterra},
		{"https://www.trustpilot.com/review/acme.com", model.SourceKindTrustpilot},
		{"https://community.acme.com/t/outage", model.SourceKindForum},
		{"https://forum.example.org/thread/1", model.SourceKindForum},
		{"https://discuss.example.io/topic", model.SourceKindForum},
		{"https://blog.acme.com/post", model.SourceKindBlog},
		{"https://acme.com/blog/launch", model.SourceKindBlog},
		{"https://acme.com/pricing", model.SourceKindPricing},
		{"https://acme.com/plans", model.SourceKindPricing},
		{"https://acme.com/about", model.SourceKindWeb},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSourceKind(tt.url), tt.url)
	}
}

func TestDetectSourceKind_Precedence(t *testing.T) {
	// reddit.com wins over the /blog/ path pattern.
	assert.Equal(t, model.SourceKindReddit, DetectSourceKind("https://reddit.com/blog/update"))
	// blog. wins over /pricing.
	assert.Equal(t, model.SourceKindBlog, DetectSourceKind("https://blog.acme.com/pricing"))
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w"
	}
	return strings.Join(parts, " ")
}

func TestChunk_SingleChunkIdentity(t *testing.T) {
	c := NewChunker(800, 100)
	text := "short text with   uneven   spacing"
	chunks := c.Chunk(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_OverlapReconstruction(t *testing.T) {
	c := NewChunker(800, 100)
	all := make([]string, 2000)
	for i := range all {
		all[i] = strings.Repeat("w", 1) + "-" + string(rune('a'+i%26))
	}
	text := strings.Join(all, " ")
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	// Every chunk except possibly the last carries exactly 800 words, and
	// consecutive chunks share a 100-word overlap.
	for i, chunk := range chunks {
		n := len(strings.Fields(chunk))
		if i < len(chunks)-1 {
			assert.Equal(t, 800, n)
		} else {
			assert.LessOrEqual(t, n, 800)
		}
	}
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	assert.Equal(t, first[700:], second[:100])

	// Dropping each chunk's leading overlap reconstructs the input.
	rebuilt := strings.Fields(chunks[0])
	for _, chunk := range chunks[1:] {
		w := strings.Fields(chunk)
		rebuilt = append(rebuilt, w[100:]...)
	}
	assert.Equal(t, strings.Fields(text), rebuilt)
}

func TestChunk_Idempotent(t *testing.T) {
	c := NewChunker(800, 100)
	text := words(2500)
	chunks := c.Chunk(text)
	for _, chunk := range chunks {
		sub := c.Chunk(chunk)
		require.Len(t, sub, 1)
		assert.Equal(t, chunk, sub[0])
	}
}

func TestRedactPII(t *testing.T) {
	in := "Contact jane.doe@example.com or call (555) 123-4567. SSN 123-45-6789."
	out := RedactPII(in)
	assert.Contains(t, out, "[EMAIL_REDACTED]")
	assert.Contains(t, out, "[PHONE_REDACTED]")
	assert.Contains(t, out, "[SSN_REDACTED]")
	assert.NotContains(t, out, "jane.doe@example.com")
	assert.NotContains(t, out, "123-45-6789")
}

func TestParseRaw(t *testing.T) {
	_, err := ParseRaw("   too short   ")
	require.Error(t, err)

	got, err := ParseRaw("  this paste is comfortably long enough to keep  ")
	require.NoError(t, err)
	assert.Equal(t, "this paste is comfortably long enough to keep", got)
}

func TestExtractHTML_Generic(t *testing.T) {
	html := `<html><head><style>.x{}</style><script>var a=1;</script></head>
	<body><nav>Menu Menu Menu</nav>
	<main><h1>Acme Review</h1><p>The product works well for small teams.</p></main>
	<footer>Copyright</footer></body></html>`

	text, err := ExtractHTML(html, model.SourceKindWeb)
	require.NoError(t, err)
	assert.Contains(t, text, "Acme Review")
	assert.Contains(t, text, "works well for small teams")
	assert.NotContains(t, text, "Menu")
	assert.NotContains(t, text, "var a=1")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractHTML_Reddit(t *testing.T) {
	html := `<html><body>
	<h1>Why we dropped Acme</h1>
	<div class="usertext-body">We hit constant API rate limits and support never answered.</div>
	<span class="Comment">Same here, moved to a rival after the pricing change last year.</span>
	<div class="sidebar">tiny</div>
	</body></html>`

	text, err := ExtractHTML(html, model.SourceKindReddit)
	require.NoError(t, err)
	assert.Contains(t, text, "Title: Why we dropped Acme")
	assert.Contains(t, text, "constant API rate limits")
	assert.Contains(t, text, "pricing change last year")
}

func TestExtractHTML_Reviews(t *testing.T) {
	html := `<html><body>
	<div class="review-card">Great onboarding experience but the reporting module feels dated.</div>
	<div class="unrelated">short</div>
	</body></html>`

	text, err := ExtractHTML(html, model.SourceKindG2)
	require.NoError(t, err)
	assert.Contains(t, text, "reporting module feels dated")
	assert.NotContains(t, text, "short")
}
