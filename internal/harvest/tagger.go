package harvest

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/fuzzy"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/prompts"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/llm"
)

// VariantThreshold is the ratio above which two names count as the same entity.
const VariantThreshold = 80

type entityRecord struct {
	PER []string `json:"PER" validate:"required"`
	ORG []string `json:"ORG" validate:"required"`
	LOC []string `json:"LOC" validate:"required"`
}

// Tagger recognizes named entities in article text.
type Tagger struct {
	client llm.ChatClient
	model  string
}

// NewTagger builds a tagger bound to the given model.
func NewTagger(client llm.ChatClient, model string) *Tagger {
	return &Tagger{client: client, model: model}
}

// Tag returns entities grouped by label with spelling variants merged.
func (t *Tagger) Tag(ctx context.Context, content string) (map[string][]string, error) {
	req := llm.ChatCompletionRequest{
		Model: t.model,
		Messages: []llm.Message{
			llm.System(prompts.EntitiesSystem),
			llm.User(content),
		},
		Temperature: llm.Temperature(0),
		ResponseFormat: llm.SchemaFormat(
			prompts.SchemaEntities,
			"Named entities mentioned in a news article",
			prompts.MustSchema(prompts.SchemaEntities),
		),
	}
	rec, err := llm.Extract[entityRecord](ctx, t.client, req)
	if err != nil {
		return nil, fmt.Errorf("tag entities: %w", err)
	}
	return MergeVariants(map[string][]string{
		domain.PersonEntityLabel: rec.PER,
		"ORG":                    rec.ORG,
		"LOC":                    rec.LOC,
	}), nil
}

// MergeVariants keeps the first spelling of each entity per label, dropping
// later names whose ratio to a kept one exceeds VariantThreshold.
func MergeVariants(entities map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(entities))
	for label, names := range entities {
		unique := make([]string, 0, len(names))
		for _, name := range names {
			if !hasVariant(unique, name) {
				unique = append(unique, name)
			}
		}
		merged[label] = unique
	}
	return merged
}

func hasVariant(kept []string, name string) bool {
	for _, k := range kept {
		if fuzzy.Ratio(name, k) > VariantThreshold {
			return true
		}
	}
	return false
}
