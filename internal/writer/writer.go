// Package writer generates action artifacts (battlecards, messaging docs,
// roadmap tickets) and snapshot reports from themes and their evidence.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/model"
)

// Writer turns themes plus evidence into deliverable documents.
type Writer struct {
	gen gateway.Generator
}

// New wires a Writer over a generator.
func New(gen gateway.Generator) *Writer {
	return &Writer{gen: gen}
}

// ignoreContent is returned for the ignore action kind; no model call runs.
const ignoreContent = "No artifact generated for 'ignore' action type."

// GenerateArtifact produces the document for one action. Citations are
// always derived from the insight quotes, never parsed from the generated
// prose. Generation failure degrades to an error-text artifact with empty
// citations; an unknown kind takes the ignore path.
func (w *Writer) GenerateArtifact(ctx context.Context, kind model.ActionKind, theme model.Theme, insights []model.Insight, competitorName string) (content, citationsJSON string) {
	var prompt string
	switch kind {
	case model.ActionKindBattlecard:
		prompt = battlecardPrompt(theme, insights, competitorName)
	case model.ActionKindMessaging:
		prompt = messagingPrompt(theme, insights, competitorName)
	case model.ActionKindRoadmap:
		prompt = roadmapPrompt(theme, insights, competitorName)
	default:
		return ignoreContent, "[]"
	}

	text, err := w.gen.Generate(ctx, gateway.GenerateRequest{Prompt: prompt})
	if err != nil {
		zap.L().Error("writer: artifact generation failed",
			zap.String("kind", string(kind)), zap.Error(err))
		return fmt.Sprintf("Error generating artifact: %v", err), "[]"
	}

	return strings.TrimSpace(text), citationsFrom(insights)
}

// citationsFrom builds the citation list from insights carrying a quote.
func citationsFrom(insights []model.Insight) string {
	citations := []model.Citation{}
	for _, ins := range insights {
		if ins.Quote == "" {
			continue
		}
		source := ins.Persona
		if source == "" {
			source = "Unknown"
		}
		date := ins.SourceDate
		if date == "" {
			date = "Recent"
		}
		citations = append(citations, model.Citation{
			Source: source,
			Date:   date,
			URL:    ins.SourceURL,
			Quote:  ins.Quote,
		})
	}

	data, err := json.Marshal(citations)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func formatEvidence(insights []model.Insight) string {
	if len(insights) == 0 {
		return "No direct evidence available."
	}
	parts := make([]string, 0, len(insights))
	for i, ins := range insights {
		quote := ins.Quote
		if quote == "" {
			quote = "N/A"
		}
		parts = append(parts, fmt.Sprintf(
			"- Insight %d: %s\n  Sentiment: %s (%g)\n  Persona: %s\n  Quote: %q\n  Confidence: %g",
			i+1, ins.Text, ins.Sentiment, ins.SentimentScore, ins.Persona, quote, ins.Confidence,
		))
	}
	return strings.Join(parts, "\n")
}

func battlecardPrompt(theme model.Theme, insights []model.Insight, competitorName string) string {
	return fmt.Sprintf(`You are a competitive intelligence expert. Generate a detailed battlecard section for the sales team.

COMPETITOR: %s
WEAKNESS THEME: %s
THEME DESCRIPTION: %s
SEVERITY: %g/1.0

EVIDENCE:
%s

Generate a battlecard in Markdown with these sections:
1. **Competitor Weakness** - 2-3 sentence summary
2. **Key Evidence** - Bullet points with direct quotes, source, and date in [Source - Date] format
3. **Talk Track** - A natural sales conversation snippet (3-4 sentences in blockquote)
4. **Objection Handling** - Table with 2-3 common objections and responses
5. **Competitive Positioning** - Our advantages vs their weaknesses

Every claim MUST cite a source. Be specific and actionable. Use Markdown formatting.`,
		competitorName, theme.Name, theme.Description, theme.SeverityScore, formatEvidence(insights))
}

func messagingPrompt(theme model.Theme, insights []model.Insight, competitorName string) string {
	return fmt.Sprintf(`You are a product marketing copywriter. Generate messaging recommendations based on competitor intelligence.

COMPETITOR: %s
THEME: %s
DESCRIPTION: %s

EVIDENCE:
%s

Generate a messaging document in Markdown with:
1. **Headline** - Punchy positioning headline
2. **Subheadline** - Supporting statement
3. **Key Messages** - For different buyer personas (Technical, Business, Procurement)
4. **Evidence Points** - Cited facts supporting the messaging
5. **Channels** - Where to deploy this messaging

Cite all evidence with [Source - Date - URL] format.`,
		competitorName, theme.Name, theme.Description, formatEvidence(insights))
}

func roadmapPrompt(theme model.Theme, insights []model.Insight, competitorName string) string {
	return fmt.Sprintf(`You are a product manager. Generate a roadmap ticket based on competitive intelligence.

COMPETITOR: %s
THEME: %s
DESCRIPTION: %s

EVIDENCE:
%s

Generate a roadmap ticket in Markdown with:
1. **Title** - Clear, actionable ticket title
2. **Priority** - P0/P1/P2 with justification
3. **Context** - Why this matters competitively
4. **User Story** - "As a [persona], I want [feature] so I can [benefit]"
5. **Requirements** - Numbered list of specific requirements
6. **Success Criteria** - Measurable outcomes
7. **Competitive Evidence** - Cited quotes driving this request
8. **Estimated Effort** - Rough sizing

Cite all evidence with [Source - Date] format.`,
		competitorName, theme.Name, theme.Description, formatEvidence(insights))
}
