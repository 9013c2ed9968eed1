// Package report renders the investigator narrative, the HTML report and the score gauge.
package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/prompts"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/llm"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

const (
	narrativeMaxTokens   = 500
	narrativeTemperature = 0.7
)

// Report is the rendered output for one person.
type Report struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Gauge    Gauge  `json:"gauge"`
}

// Renderer writes the narrative with the language model and lays out the report.
type Renderer struct {
	client llm.ChatClient
	model  string
	md     goldmark.Markdown
	log    logger.Logger
}

// NewRenderer builds a renderer bound to the given model.
func NewRenderer(client llm.ChatClient, model string, log logger.Logger) *Renderer {
	return &Renderer{client: client, model: model, md: goldmark.New(), log: logger.Ensure(log)}
}

// Bullets lists "- key: explanation" for every truthy indicator, in declared order.
func Bullets(analysis domain.DeclarationAnalysis) []string {
	var out []string
	for _, ind := range analysis.Indicators() {
		if ind.Truthy() {
			out = append(out, fmt.Sprintf("- %s: %s", ind.Key, ind.Explanation))
		}
	}
	return out
}

// Facts collects the prompt context from both analyses and the combined score.
func Facts(analysis domain.DeclarationAnalysis, media domain.MediaAnalysis, score float64) prompts.ReportFacts {
	m := media.AggregatedMetrics
	return prompts.ReportFacts{
		TargetName:             media.TargetName,
		Indicators:             Bullets(analysis),
		NegativeMentions:       m.NegativeMentionsCount,
		SuspiciousActivity:     m.SuspiciousActivityCount,
		SuspiciousGifts:        m.SuspiciousGiftsAndOther,
		FinishedInvestigations: m.FinishedInvestigationCount,
		Score:                  score,
	}
}

// Narrative asks the model for the markdown summary.
func (r *Renderer) Narrative(ctx context.Context, facts prompts.ReportFacts) (string, error) {
	req := llm.ChatCompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			llm.System(prompts.ReportSystem),
			llm.User(prompts.ReportUser(facts)),
		},
		MaxTokens:   narrativeMaxTokens,
		Temperature: llm.Temperature(narrativeTemperature),
	}
	text, err := llm.Complete(ctx, r.client, req)
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}
	return text, nil
}

// Render produces the narrative, the HTML report and the gauge.
func (r *Renderer) Render(ctx context.Context, analysis domain.DeclarationAnalysis, media domain.MediaAnalysis, score float64) (Report, error) {
	markdown, err := r.Narrative(ctx, Facts(analysis, media, score))
	if err != nil {
		return Report{}, err
	}

	narrative, err := r.markdownToHTML(markdown)
	if err != nil {
		return Report{}, err
	}

	page, err := renderPage(narrative, media.DetailedResults)
	if err != nil {
		return Report{}, err
	}

	r.log.DebugObj("report rendered", "report", map[string]any{
		"target":   media.TargetName,
		"articles": len(media.DetailedResults),
		"score":    score,
	})
	return Report{Markdown: markdown, HTML: page, Gauge: NewGauge(score)}, nil
}

func (r *Renderer) markdownToHTML(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert narrative: %w", err)
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}

type pageData struct {
	Narrative template.HTML
	Articles  []domain.ArticleJudgment
}

func renderPage(narrative template.HTML, articles []domain.ArticleJudgment) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, pageData{Narrative: narrative, Articles: articles}); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}
