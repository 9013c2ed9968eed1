package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/llm"
)

type fakeChatClient struct {
	reply string
	err   error
	last  llm.ChatCompletionRequest
}

func (f *fakeChatClient) ChatCompletion(_ context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatCompletionResponse{Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: f.reply}}}}, nil
}

func sampleInputs() (domain.DeclarationAnalysis, domain.MediaAnalysis) {
	analysis := domain.DeclarationAnalysis{
		LargeGifts:     domain.BoolIndicator{Value: true, Explanation: "gift of 1M"},
		SuddenChanges:  domain.BoolIndicator{Value: false, Explanation: "stable"},
		IncomeProperty: domain.ScaleIndicator{Value: 2, Explanation: "villa"},
	}
	media := domain.MediaAnalysis{
		TargetName: "Іван Франко",
		AggregatedMetrics: domain.MediaMetrics{
			NegativeMentionsCount:      3,
			SuspiciousActivityCount:    1,
			SuspiciousGiftsAndOther:    true,
			FinishedInvestigationCount: 0,
		},
		DetailedResults: []domain.ArticleJudgment{
			{Title: "First <probe>", Link: "https://bihus.info/1"},
			{Title: "Second", Link: "https://bihus.info/2"},
		},
	}
	return analysis, media
}

func TestBulletsOnlyTruthyIndicators(t *testing.T) {
	analysis, _ := sampleInputs()
	got := Bullets(analysis)
	want := []string{
		"- presence_of_large_gifts: gift of 1M",
		"- discrepancy_between_income_and_property: villa",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected bullets %v", got)
	}
}

func TestRenderBuildsPromptAndPage(t *testing.T) {
	analysis, media := sampleInputs()
	client := &fakeChatClient{reply: "## Summary\n\nHe is **suspicious**."}
	r := NewRenderer(client, "report-model", nil)

	rep, err := r.Render(context.Background(), analysis, media, 5)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	req := client.last
	if req.MaxTokens != 500 || req.Temperature == nil || *req.Temperature != 0.7 {
		t.Fatalf("unexpected sampling settings %+v", req)
	}
	prompt := req.Messages[1].Content
	for _, want := range []string{
		"Politician name: Іван Франко",
		"- presence_of_large_gifts: gift of 1M- discrepancy_between_income_and_property: villa",
		"- Negative mentions count: 3",
		"- Suspicious gifts and other: True",
		"Final Combined Score: 5",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if !strings.Contains(rep.HTML, "<strong>suspicious</strong>") || !strings.Contains(rep.HTML, "<h2>Summary</h2>") {
		t.Fatalf("markdown not converted: %s", rep.HTML)
	}
	first := strings.Index(rep.HTML, "https://bihus.info/1")
	second := strings.Index(rep.HTML, "https://bihus.info/2")
	if first < 0 || second < first {
		t.Fatalf("articles missing or out of order: %s", rep.HTML)
	}
	if strings.Contains(rep.HTML, "<probe>") {
		t.Fatalf("article title was not escaped")
	}
	if rep.Gauge.Value != 5 {
		t.Fatalf("unexpected gauge %+v", rep.Gauge)
	}
}

func TestRenderWithoutArticlesOmitsSection(t *testing.T) {
	analysis, media := sampleInputs()
	media.DetailedResults = nil
	rep, err := NewRenderer(&fakeChatClient{reply: "ok"}, "m", nil).Render(context.Background(), analysis, media, 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(rep.HTML, "Media Mentions") {
		t.Fatalf("expected no media section")
	}
}

func TestRenderUnknownTarget(t *testing.T) {
	analysis, media := sampleInputs()
	media.TargetName = ""
	client := &fakeChatClient{reply: "ok"}
	if _, err := NewRenderer(client, "m", nil).Render(context.Background(), analysis, media, 1); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(client.last.Messages[1].Content, "Politician name: Unknown") {
		t.Fatalf("expected Unknown placeholder")
	}
}

func TestRenderPropagatesModelError(t *testing.T) {
	analysis, media := sampleInputs()
	boom := errors.New("boom")
	_, err := NewRenderer(&fakeChatClient{err: boom}, "m", nil).Render(context.Background(), analysis, media, 1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}
