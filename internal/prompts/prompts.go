// Package prompts holds the instructions and JSON schemas sent to the language model.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names as registered with the completion API.
const (
	SchemaDeclarationExtraction = "declaration_extraction"
	SchemaDeclarationAnalysis   = "declaration_analysis"
	SchemaArticleAnalysis       = "article_analysis"
	SchemaEntities              = "entity_extraction"
)

var schemaFiles = map[string]string{
	SchemaDeclarationExtraction: "schemas/declaration_extraction.json",
	SchemaDeclarationAnalysis:   "schemas/declaration_analysis.json",
	SchemaArticleAnalysis:       "schemas/article_analysis.json",
	SchemaEntities:              "schemas/entities.json",
}

// Schema returns the raw JSON schema registered under name.
func Schema(name string) (json.RawMessage, error) {
	path, ok := schemaFiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %q: %w", name, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("schema %q is not valid JSON", name)
	}
	return json.RawMessage(raw), nil
}

// MustSchema is Schema for package initialisation; the schemas are embedded so a failure is a build defect.
func MustSchema(name string) json.RawMessage {
	raw, err := Schema(name)
	if err != nil {
		panic(err)
	}
	return raw
}

const DeclarationExtractionSystem = "You are an expert at structured data extraction of declarations and law information. " +
	"You will be given unstructured text from a html response and should convert it into the given structure."

// DeclarationExtractionUser wraps a page fragment for extraction.
func DeclarationExtractionUser(fragment string) string {
	return "Extract information from this refined HTML response " + fragment
}

const declarationAnalysisTemplate = `You are an analyst tasked with evaluating a politician’s declarations data for potential corruption indicators. You have the following JSON array of declarations (each object is a separate declaration for the same politician):

###
%s
###

Please analyze these declarations and determine:

1. Presence of large gifts.
2. Sudden change in declared cash/money in accounts.
3. Discrepancy between income and property, using the scale 0 to 2:
   - 0: still acceptable,
   - 1: suspicious (it would have taken a long time to save money),
   - 2: unrealistic to accumulate with such salary/income.
   Note: Some real estate can be declared with 0 price, it should be ignored.

Pay attention to the chronological order of the declarations.`

// DeclarationAnalysisSystem embeds the chronological declaration array into the analyst instruction.
func DeclarationAnalysisSystem(declarationsJSON string) string {
	return fmt.Sprintf(declarationAnalysisTemplate, declarationsJSON)
}

const ArticleAnalysisSystem = "You are a helpful assistant that extracts information following a strict JSON schema."

const articleAnalysisTemplate = `Analyze the following article content and determine whether the specified person is involved in specific activities.
Focus on the person named "%s" and provide the results in JSON format that adheres to the schema below.

Schema:
- negative_mentions: Indicates if the person was negatively mentioned in the article.
- suspicious_activity: Indicates if the person is involved in any suspicious activities.
- suspicious_gifts_and_other: Indicates if the article mentions suspicious gifts or other unusual financial behaviors.
- finished_investigation: Indicates if the investigation mentioned in the article has been concluded.

Article Content:
%s`

// ArticleAnalysisUser builds the per-article judgment prompt.
func ArticleAnalysisUser(person, content string) string {
	return fmt.Sprintf(articleAnalysisTemplate, person, content)
}

const EntitiesSystem = "You are a named-entity recognizer for Ukrainian news. " +
	"List every person (PER), organization (ORG) and location (LOC) mentioned in the text exactly as written."

const ReportSystem = "You are a helpful assistant that creates summary reports."

// ReportFacts is the context handed to the narrative prompt.
type ReportFacts struct {
	TargetName             string
	Indicators             []string
	NegativeMentions       int
	SuspiciousActivity     int
	SuspiciousGifts        bool
	FinishedInvestigations int
	Score                  float64
}

// ReportUser renders the investigator prompt. Indicator bullets are concatenated as given.
func ReportUser(f ReportFacts) string {
	name := f.TargetName
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}
	return fmt.Sprintf(`
You are a fraud/corruption investigator. Summarize the suspicious indicators found in a set of politician's declarations and media investigations.

Politician name: %s

Declarations suspicious analysis:
%s

Bihus analysis:
- Negative mentions count: %d
- Suspicious activity count: %d
- Suspicious gifts and other: %s
- Finished investigations: %d

Final Combined Score: %s

Create a concise, investigative summary report that highlights key suspicious findings and their potential implications.
`, name, strings.Join(f.Indicators, ""), f.NegativeMentions, f.SuspiciousActivity,
		titleBool(f.SuspiciousGifts), f.FinishedInvestigations, strconv.FormatFloat(f.Score, 'f', -1, 64))
}

func titleBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
