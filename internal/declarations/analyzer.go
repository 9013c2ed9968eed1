package declarations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/prompts"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/llm"
)

// ErrNoDeclarations is returned when there is nothing to analyse.
var ErrNoDeclarations = errors.New("no declarations to analyse")

// Analyzer scores a chronological declaration history for corruption indicators.
type Analyzer struct {
	client llm.ChatClient
	model  string
}

// NewAnalyzer builds an analyzer bound to the given model.
func NewAnalyzer(client llm.ChatClient, model string) *Analyzer {
	return &Analyzer{client: client, model: model}
}

type boolIndicatorRecord struct {
	Value       *bool    `json:"value" validate:"required"`
	Explanation string   `json:"explanation"`
	References  []string `json:"references" validate:"required"`
}

type scaleIndicatorRecord struct {
	Value       *int     `json:"value" validate:"required,min=0,max=2"`
	Explanation string   `json:"explanation"`
	References  []string `json:"references" validate:"required"`
}

type analysisRecord struct {
	LargeGifts     *boolIndicatorRecord  `json:"presence_of_large_gifts" validate:"required"`
	SuddenChanges  *boolIndicatorRecord  `json:"sudden_changes_in_declared_money" validate:"required"`
	IncomeProperty *scaleIndicatorRecord `json:"discrepancy_between_income_and_property" validate:"required"`
}

func (r analysisRecord) toDomain() domain.DeclarationAnalysis {
	return domain.DeclarationAnalysis{
		LargeGifts: domain.BoolIndicator{
			Value:       *r.LargeGifts.Value,
			Explanation: r.LargeGifts.Explanation,
			References:  r.LargeGifts.References,
		},
		SuddenChanges: domain.BoolIndicator{
			Value:       *r.SuddenChanges.Value,
			Explanation: r.SuddenChanges.Explanation,
			References:  r.SuddenChanges.References,
		},
		IncomeProperty: domain.ScaleIndicator{
			Value:       *r.IncomeProperty.Value,
			Explanation: r.IncomeProperty.Explanation,
			References:  r.IncomeProperty.References,
		},
	}
}

const analysisTemperature = 0

// Analyze sends the whole chronological history in one call.
func (a *Analyzer) Analyze(ctx context.Context, history []domain.Declaration) (domain.DeclarationAnalysis, error) {
	if len(history) == 0 {
		return domain.DeclarationAnalysis{}, ErrNoDeclarations
	}

	payload, err := historyJSON(history)
	if err != nil {
		return domain.DeclarationAnalysis{}, err
	}

	req := llm.ChatCompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			llm.System(prompts.DeclarationAnalysisSystem(payload)),
		},
		Temperature: llm.Temperature(analysisTemperature),
		ResponseFormat: llm.SchemaFormat(
			prompts.SchemaDeclarationAnalysis,
			"Analyzes the declarations and checks for corruption",
			prompts.MustSchema(prompts.SchemaDeclarationAnalysis),
		),
	}

	record, err := llm.Extract[analysisRecord](ctx, a.client, req)
	if err != nil {
		return domain.DeclarationAnalysis{}, fmt.Errorf("analyze declarations: %w", err)
	}
	return record.toDomain(), nil
}

// historyJSON renders declarations with 4-space indentation and unescaped text.
func historyJSON(history []domain.Declaration) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(history); err != nil {
		return "", fmt.Errorf("marshal declarations: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
