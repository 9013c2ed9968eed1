package prompts

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSchemasAreEmbeddedAndStrict(t *testing.T) {
	for name := range schemaFiles {
		raw, err := Schema(name)
		if err != nil {
			t.Fatalf("Schema(%s): %v", name, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if doc["additionalProperties"] != false {
			t.Fatalf("schema %s must forbid additional properties", name)
		}
	}
	if _, err := Schema("missing"); err == nil {
		t.Fatalf("expected error for unknown schema")
	}
}

func TestDeclarationAnalysisSchemaIndicators(t *testing.T) {
	var doc struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(MustSchema(SchemaDeclarationAnalysis), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "presence_of_large_gifts,sudden_changes_in_declared_money,discrepancy_between_income_and_property"
	if got := strings.Join(doc.Required, ","); got != want {
		t.Fatalf("required = %s, want %s", got, want)
	}
}

func TestReportUser(t *testing.T) {
	got := ReportUser(ReportFacts{
		Indicators:             []string{"- a: x\n", "- b: y\n"},
		NegativeMentions:       2,
		SuspiciousGifts:        true,
		FinishedInvestigations: 1,
		Score:                  4.5,
	})
	for _, want := range []string{
		"Politician name: Unknown",
		"- a: x\n- b: y\n",
		"- Negative mentions count: 2",
		"- Suspicious gifts and other: True",
		"Final Combined Score: 4.5",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestArticleAnalysisUserNamesPerson(t *testing.T) {
	got := ArticleAnalysisUser("Іван Петренко", "body text")
	if !strings.Contains(got, `Focus on the person named "Іван Петренко"`) || !strings.HasSuffix(got, "body text") {
		t.Fatalf("unexpected prompt %q", got)
	}
}
