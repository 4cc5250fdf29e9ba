package collector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/rivaliq/internal/model"
)

// Tags that never carry readable page content.
const strippedTags = "script, style, nav, footer, header, aside, noscript, svg, img, iframe"

var (
	redditClassRe = regexp.MustCompile(`(?i)(md|RichTextJSON|Comment|usertext-body|entry)`)
	reviewClassRe = regexp.MustCompile(`(?i)(review|testimonial|feedback)`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// ExtractHTML parses an HTML document and pulls the readable text, using a
// kind-specific strategy: Reddit post+comment containers, review-site review
// blocks, or a generic main/article/body walk.
func ExtractHTML(html string, kind model.SourceKind) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", eris.Wrap(err, "collector: parse html")
	}
	doc.Find(strippedTags).Remove()

	switch kind {
	case model.SourceKindReddit:
		return extractReddit(doc), nil
	case model.SourceKindG2, model.SourceKindCapterra, model.SourceKindTrustpilot:
		return extractReviews(doc), nil
	default:
		return extractGeneric(doc), nil
	}
}

func nodeText(s *goquery.Selection) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s.Text(), " "))
}

func extractReddit(doc *goquery.Document) string {
	var parts []string

	if title := nodeText(doc.Find("h1").First()); title != "" {
		parts = append(parts, "Title: "+title)
	}

	doc.Find("div, p, span").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if class == "" || !redditClassRe.MatchString(class) {
			return
		}
		if text := nodeText(s); len(text) > 20 {
			parts = append(parts, text)
		}
	})

	if len(parts) == 0 {
		parts = paragraphFallback(doc, 20)
	}
	return joinCapped(parts, 100)
}

func extractReviews(doc *goquery.Document) string {
	var parts []string

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if class == "" || !reviewClassRe.MatchString(class) {
			return
		}
		if text := nodeText(s); len(text) > 30 {
			parts = append(parts, text)
		}
	})

	if len(parts) == 0 {
		parts = paragraphFallback(doc, 30)
	}
	return joinCapped(parts, 80)
}

func extractGeneric(doc *goquery.Document) string {
	container := doc.Find("main").First()
	if container.Length() == 0 {
		container = doc.Find("article").First()
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		container = doc.Selection
	}

	var lines []string
	container.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if text := nodeText(s); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		if text := nodeText(container); text != "" {
			lines = append(lines, text)
		}
	}

	if len(lines) > 300 {
		lines = lines[:300]
	}
	return strings.Join(lines, "\n")
}

func paragraphFallback(doc *goquery.Document, minLen int) []string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := nodeText(s); len(text) > minLen {
			parts = append(parts, text)
		}
	})
	return parts
}

func joinCapped(parts []string, limit int) string {
	if len(parts) > limit {
		parts = parts[:limit]
	}
	return strings.Join(parts, "\n\n")
}
