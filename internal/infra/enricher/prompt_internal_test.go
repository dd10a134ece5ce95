package enricher

import (
	"strings"
	"testing"

	"blotter/internal/domain/entity"
)

func TestBuildPrompt_IncludesKeyFields(t *testing.T) {
	article := entity.RawArticle{TitleRaw: "Armed robbery downtown", BodyRaw: "Officers responded to a robbery."}
	source := SourceContext{AgencyName: "Test PD", RegionLabel: "Test Region"}

	prompt := buildPrompt(article, source)
	for _, want := range []string{"Test PD", "Test Region", "Armed robbery downtown", "Officers responded"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_TruncatesBody(t *testing.T) {
	article := entity.RawArticle{TitleRaw: "t", BodyRaw: strings.Repeat("a", promptBodyBudget+500)}
	prompt := buildPrompt(article, SourceContext{})
	if strings.Contains(prompt, strings.Repeat("a", promptBodyBudget+1)) {
		t.Error("expected body to be truncated to promptBodyBudget")
	}
}

func TestParseResponse_Valid(t *testing.T) {
	raw := `{"severity":"HIGH","summary_tactical":"Armed suspect fled scene","tags":["robbery"],"entities":[{"type":"Person","name":"Suspect A"}],"location_label":"Main St","lat":49.28,"lng":-123.12,"graph_cluster_key":"robbery-main-st","crime_category":"Violent Crime","temporal_context":"overnight","weapon_involved":"firearm","tactical_advice":"avoid area"}`

	incident, err := parseResponse(raw, 42, "claude:test-model")
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if incident.ID != 42 {
		t.Errorf("ID = %d, want 42", incident.ID)
	}
	if incident.Severity != entity.SeverityHigh {
		t.Errorf("Severity = %q, want HIGH", incident.Severity)
	}
	if len(incident.Entities) != 1 || incident.Entities[0].Type != entity.EntityPerson {
		t.Errorf("Entities = %+v", incident.Entities)
	}
	if incident.LLMModel != "claude:test-model" {
		t.Errorf("LLMModel = %q", incident.LLMModel)
	}
	if incident.PromptVersion != promptVersion {
		t.Errorf("PromptVersion = %q, want %q", incident.PromptVersion, promptVersion)
	}
}

func TestParseResponse_StripsCodeFence(t *testing.T) {
	raw := "```json\n{\"severity\":\"LOW\",\"summary_tactical\":\"minor\",\"crime_category\":\"Other\"}\n```"
	incident, err := parseResponse(raw, 1, "claude:test-model")
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if incident.Severity != entity.SeverityLow {
		t.Errorf("Severity = %q, want LOW", incident.Severity)
	}
}

func TestParseResponse_InvalidSeverity_Fails(t *testing.T) {
	raw := `{"severity":"EXTREME","summary_tactical":"x","crime_category":"Other"}`
	if _, err := parseResponse(raw, 1, "claude:test-model"); err == nil {
		t.Fatal("expected validation error for invalid severity")
	}
}

func TestParseResponse_MalformedJSON_Fails(t *testing.T) {
	if _, err := parseResponse("not json at all", 1, "claude:test-model"); err == nil {
		t.Fatal("expected parse error for malformed JSON")
	}
}

func TestParseResponse_InvalidEntityType_Fails(t *testing.T) {
	raw := `{"severity":"LOW","summary_tactical":"x","crime_category":"Other","entities":[{"type":"Vehicle","name":"Truck"}]}`
	if _, err := parseResponse(raw, 1, "claude:test-model"); err == nil {
		t.Fatal("expected validation error for invalid entity type")
	}
}
