package media

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/prompts"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/llm"
)

// Judge asks the model how an article portrays a person.
type Judge interface {
	Judge(ctx context.Context, article domain.Article, person string) (domain.ArticleJudgment, error)
}

type articleVerdict struct {
	NegativeMentions        *bool `json:"negative_mentions" validate:"required"`
	SuspiciousActivity      *bool `json:"suspicious_activity" validate:"required"`
	SuspiciousGiftsAndOther *bool `json:"suspicious_gifts_and_other" validate:"required"`
	FinishedInvestigation   *bool `json:"finished_investigation" validate:"required"`
}

// LLMJudge implements Judge with one structured completion per article.
type LLMJudge struct {
	client llm.ChatClient
	model  string
}

const judgeTemperature = 0.1

// NewLLMJudge builds a judge using the given model.
func NewLLMJudge(client llm.ChatClient, model string) *LLMJudge {
	return &LLMJudge{client: client, model: model}
}

func (j *LLMJudge) Judge(ctx context.Context, article domain.Article, person string) (domain.ArticleJudgment, error) {
	req := llm.ChatCompletionRequest{
		Model: j.model,
		Messages: []llm.Message{
			llm.System(prompts.ArticleAnalysisSystem),
			llm.User(prompts.ArticleAnalysisUser(person, article.Content)),
		},
		Temperature:    llm.Temperature(judgeTemperature),
		ResponseFormat: llm.SchemaFormat(prompts.SchemaArticleAnalysis, "", prompts.MustSchema(prompts.SchemaArticleAnalysis)),
	}

	verdict, err := llm.Extract[articleVerdict](ctx, j.client, req)
	if err != nil {
		return domain.ArticleJudgment{}, fmt.Errorf("judge article %q: %w", article.Link, err)
	}

	return domain.ArticleJudgment{
		Title:                   article.Title,
		Link:                    article.Link,
		NegativeMentions:        *verdict.NegativeMentions,
		SuspiciousActivity:      *verdict.SuspiciousActivity,
		SuspiciousGiftsAndOther: *verdict.SuspiciousGiftsAndOther,
		FinishedInvestigation:   *verdict.FinishedInvestigation,
	}, nil
}
