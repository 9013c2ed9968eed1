package declarations

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/prompts"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/llm"
)

const defaultTimeout = 15 * time.Second

// Extractor turns one declaration page fragment into a typed record.
type Extractor struct {
	client llm.ChatClient
	model  string
}

// NewExtractor builds an extractor bound to the given model.
func NewExtractor(client llm.ChatClient, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

// declarationRecord mirrors domain.Declaration with validation tags for the model reply.
type declarationRecord struct {
	PoliticianName    *string               `json:"politician_name" validate:"required"`
	PoliticianSurname *string               `json:"politician_surname" validate:"required"`
	Type              *string               `json:"type_dec" validate:"required"`
	Year              *string               `json:"year" validate:"required"`
	RegistrationPlace *string               `json:"registration_place" validate:"required"`
	PlaceOfWork       *string               `json:"place_of_work" validate:"required"`
	PositionHeld      *string               `json:"position_held" validate:"required"`
	FamilyMembers     []domain.FamilyMember `json:"family_members" validate:"required"`
	RealEstate        []domain.RealEstate   `json:"real_estate" validate:"required"`
	Vehicles          []domain.Vehicle      `json:"vehicles" validate:"required"`
	FinancialData     *financialDataRecord  `json:"financial_data" validate:"required"`
}

type financialDataRecord struct {
	IncomeIncludingGifts []domain.Income `json:"income_including_gifts" validate:"required"`
	Assets               []domain.Asset  `json:"assets" validate:"required"`
}

func (r declarationRecord) toDomain() domain.Declaration {
	return domain.Declaration{
		PoliticianName:    *r.PoliticianName,
		PoliticianSurname: *r.PoliticianSurname,
		Type:              *r.Type,
		Year:              *r.Year,
		RegistrationPlace: *r.RegistrationPlace,
		PlaceOfWork:       *r.PlaceOfWork,
		PositionHeld:      *r.PositionHeld,
		FamilyMembers:     r.FamilyMembers,
		RealEstate:        r.RealEstate,
		Vehicles:          r.Vehicles,
		FinancialData: domain.FinancialData{
			IncomeIncludingGifts: r.FinancialData.IncomeIncludingGifts,
			Assets:               r.FinancialData.Assets,
		},
	}
}

// Extract runs the declaration extraction call for one fragment.
func (e *Extractor) Extract(ctx context.Context, fragment string) (domain.Declaration, error) {
	req := llm.ChatCompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			llm.System(prompts.DeclarationExtractionSystem),
			llm.User(prompts.DeclarationExtractionUser(fragment)),
		},
		ResponseFormat: llm.SchemaFormat(
			prompts.SchemaDeclarationExtraction,
			"Fetches the declarations data from the HTML",
			prompts.MustSchema(prompts.SchemaDeclarationExtraction),
		),
	}

	record, err := llm.Extract[declarationRecord](ctx, e.client, req)
	if err != nil {
		return domain.Declaration{}, fmt.Errorf("extract declaration: %w", err)
	}
	return record.toDomain(), nil
}

// ExtractAll extracts fragments one by one, keeping their order.
func (e *Extractor) ExtractAll(ctx context.Context, fragments []string) ([]domain.Declaration, error) {
	out := make([]domain.Declaration, 0, len(fragments))
	for i, fragment := range fragments {
		decl, err := e.Extract(ctx, fragment)
		if err != nil {
			return nil, fmt.Errorf("declaration %d: %w", i+1, err)
		}
		out = append(out, decl)
	}
	return out, nil
}
