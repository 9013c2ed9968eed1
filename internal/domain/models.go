package domain

// Domain contains core models shared across the auditor packages.

// PersonEntityLabel is the entity label holding recognized person names.
const PersonEntityLabel = "PER"

// Declaration is one yearly asset filing of a politician.
type Declaration struct {
	PoliticianName    string         `json:"politician_name"`
	PoliticianSurname string         `json:"politician_surname"`
	Type              string         `json:"type_dec"`
	Year              string         `json:"year"`
	RegistrationPlace string         `json:"registration_place"`
	PlaceOfWork       string         `json:"place_of_work"`
	PositionHeld      string         `json:"position_held"`
	FamilyMembers     []FamilyMember `json:"family_members"`
	RealEstate        []RealEstate   `json:"real_estate"`
	Vehicles          []Vehicle      `json:"vehicles"`
	FinancialData     FinancialData  `json:"financial_data"`
}

// FullName joins the declarant's name and surname.
func (d Declaration) FullName() string {
	return d.PoliticianName + " " + d.PoliticianSurname
}

type FamilyMember struct {
	Connection  string `json:"connection"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Nationality string `json:"nationality"`
}

type RealEstate struct {
	Area     float64 `json:"area"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type Vehicle struct {
	Model    string  `json:"model"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type FinancialData struct {
	IncomeIncludingGifts []Income `json:"income_including_gifts"`
	Assets               []Asset  `json:"assets"`
}

type Income struct {
	Source   string  `json:"source"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Asset struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// BoolIndicator is a yes/no corruption indicator.
type BoolIndicator struct {
	Value       bool     `json:"value"`
	Explanation string   `json:"explanation"`
	References  []string `json:"references"`
}

// ScaleIndicator is a corruption indicator graded 0 (acceptable) to 2 (unrealistic).
type ScaleIndicator struct {
	Value       int      `json:"value"`
	Explanation string   `json:"explanation"`
	References  []string `json:"references"`
}

// Indicator keys as produced by the declaration analysis.
const (
	KeyLargeGifts     = "presence_of_large_gifts"
	KeySuddenChanges  = "sudden_changes_in_declared_money"
	KeyIncomeProperty = "discrepancy_between_income_and_property"
)

// DeclarationAnalysis holds the indicators derived from a person's full declaration history.
type DeclarationAnalysis struct {
	LargeGifts     BoolIndicator  `json:"presence_of_large_gifts"`
	SuddenChanges  BoolIndicator  `json:"sudden_changes_in_declared_money"`
	IncomeProperty ScaleIndicator `json:"discrepancy_between_income_and_property"`
}

// NamedIndicator is a flattened view of one indicator.
type NamedIndicator struct {
	Key         string
	Value       any
	Explanation string
}

// Truthy reports whether the indicator value is a true bool or a non-zero number.
func (n NamedIndicator) Truthy() bool {
	switch v := n.Value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

// Indicators lists the indicators in their declared order.
func (a DeclarationAnalysis) Indicators() []NamedIndicator {
	return []NamedIndicator{
		{Key: KeyLargeGifts, Value: a.LargeGifts.Value, Explanation: a.LargeGifts.Explanation},
		{Key: KeySuddenChanges, Value: a.SuddenChanges.Value, Explanation: a.SuddenChanges.Explanation},
		{Key: KeyIncomeProperty, Value: a.IncomeProperty.Value, Explanation: a.IncomeProperty.Explanation},
	}
}

// Article is one news item of the local corpus.
type Article struct {
	Date     string              `json:"date,omitempty"`
	Title    string              `json:"title"`
	Link     string              `json:"link"`
	Content  string              `json:"content"`
	Entities map[string][]string `json:"entities_included,omitempty"`
}

// Persons returns the recognized person names, or nil when none were tagged.
func (a Article) Persons() []string {
	if a.Entities == nil {
		return nil
	}
	return a.Entities[PersonEntityLabel]
}

// ArticleJudgment is the per-article verdict about the target person.
type ArticleJudgment struct {
	Title                   string `json:"title"`
	Link                    string `json:"link"`
	NegativeMentions        bool   `json:"negative_mentions"`
	SuspiciousActivity      bool   `json:"suspicious_activity"`
	SuspiciousGiftsAndOther bool   `json:"suspicious_gifts_and_other"`
	FinishedInvestigation   bool   `json:"finished_investigation"`
}

// FinalScore is the bucketed media sub-score.
type FinalScore struct {
	NegativeMentionsScore   int  `json:"negative_mentions_score"`
	SuspiciousActivityScore int  `json:"suspicious_activity_score"`
	SuspiciousGiftsAndOther bool `json:"suspicious_gifts_and_other"`
	FinishedInvestigation   bool `json:"finished_investigation"`
}

// Leaf is a single keyed value of a score structure.
type Leaf struct {
	Key   string
	Value any
}

// Leaves lists the final score values in their declared order.
func (f FinalScore) Leaves() []Leaf {
	return []Leaf{
		{Key: "negative_mentions_score", Value: f.NegativeMentionsScore},
		{Key: "suspicious_activity_score", Value: f.SuspiciousActivityScore},
		{Key: "suspicious_gifts_and_other", Value: f.SuspiciousGiftsAndOther},
		{Key: "finished_investigation", Value: f.FinishedInvestigation},
	}
}

// MediaMetrics aggregates all article judgments of one person.
type MediaMetrics struct {
	NegativeMentionsCount      int        `json:"negative_mentions_count"`
	SuspiciousActivityCount    int        `json:"suspicious_activity_count"`
	SuspiciousGiftsAndOther    bool       `json:"suspicious_gifts_and_other"`
	FinishedInvestigationCount int        `json:"finished_investigation_count"`
	FinalScore                 FinalScore `json:"final_score"`
}

// MediaAnalysis is the media side of a person report.
type MediaAnalysis struct {
	TargetName        string            `json:"target_name"`
	AggregatedMetrics MediaMetrics      `json:"aggregated_metrics"`
	DetailedResults   []ArticleJudgment `json:"detailed_results"`
}
