package enricher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"blotter/internal/domain/entity"
)

// promptVersion is stamped on every successfully-enriched incident
// produced through the LLM path (spec §4.5 step 4). Bump this whenever
// the prompt shape below changes meaning.
const promptVersion = "v1"

// buildPrompt constructs the classification prompt described in spec
// §4.5 step 1: agency, region, publication date, title, and a
// budget-truncated body, followed by the strict JSON-only response
// instruction from step 2.
func buildPrompt(article entity.RawArticle, source SourceContext) string {
	publishedAt := "unknown"
	if article.PublishedAt != nil {
		publishedAt = article.PublishedAt.Format(time.RFC3339)
	}

	var sb strings.Builder
	sb.WriteString("You are a police-newsroom incident classifier. Read the release below and respond with a single JSON object only, no prose, matching exactly this shape:\n")
	sb.WriteString(`{"severity":"LOW|MEDIUM|HIGH|CRITICAL","summary_tactical":"string","tags":["string"],"entities":[{"type":"Person|Group|Location","name":"string"}],"location_label":"string","lat":null,"lng":null,"graph_cluster_key":"string","crime_category":"Violent Crime|Property Crime|Traffic Incident|Drug Offense|Sexual Offense|Cybercrime|Public Safety|Other|Unknown","temporal_context":"string","weapon_involved":"string","tactical_advice":"string"}`)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Agency: %s\n", source.AgencyName))
	sb.WriteString(fmt.Sprintf("Region: %s\n", source.RegionLabel))
	sb.WriteString(fmt.Sprintf("Published: %s\n", publishedAt))
	sb.WriteString(fmt.Sprintf("Title: %s\n", article.TitleRaw))
	sb.WriteString("Body:\n")
	sb.WriteString(truncateBody(article.BodyRaw))
	return sb.String()
}

// llmResponse is the wire shape of the JSON object the prompt above
// requests, decoded before being validated and mapped into
// entity.EnrichedIncident.
type llmResponse struct {
	Severity        string             `json:"severity"`
	SummaryTactical string             `json:"summary_tactical"`
	Tags            []string           `json:"tags"`
	Entities        []llmEntity        `json:"entities"`
	LocationLabel   string             `json:"location_label"`
	Lat             *float64           `json:"lat"`
	Lng             *float64           `json:"lng"`
	GraphClusterKey string             `json:"graph_cluster_key"`
	CrimeCategory   string             `json:"crime_category"`
	TemporalContext string             `json:"temporal_context"`
	WeaponInvolved  string             `json:"weapon_involved"`
	TacticalAdvice  string             `json:"tactical_advice"`
}

type llmEntity struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// parseResponse decodes raw JSON (tolerating a leading/trailing code
// fence some models add despite instructions), maps it into an
// EnrichedIncident, and validates it against the closed domains spec
// §4.5/§8 property 4 define. articleID becomes the incident's id,
// enforcing the 1:1 RawArticle/EnrichedIncident relationship.
func parseResponse(raw string, articleID int64, model string) (entity.EnrichedIncident, error) {
	raw = stripCodeFence(raw)

	var resp llmResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return entity.EnrichedIncident{}, fmt.Errorf("parse llm response: %w", err)
	}

	entities := make([]entity.IncidentEntity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entities = append(entities, entity.IncidentEntity{
			Type: entity.EntityType(e.Type),
			Name: e.Name,
		})
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	incident := entity.EnrichedIncident{
		ID:              articleID,
		Severity:        entity.Severity(resp.Severity),
		SummaryTactical: resp.SummaryTactical,
		Tags:            resp.Tags,
		Entities:        entities,
		LocationLabel:   resp.LocationLabel,
		Lat:             resp.Lat,
		Lng:             resp.Lng,
		GraphClusterKey: resp.GraphClusterKey,
		CrimeCategory:   resp.CrimeCategory,
		TemporalContext: resp.TemporalContext,
		WeaponInvolved:  resp.WeaponInvolved,
		TacticalAdvice:  resp.TacticalAdvice,
		LLMModel:        model,
		PromptVersion:   promptVersion,
		ProcessedAt:     time.Now(),
	}

	if err := incident.Validate(); err != nil {
		return entity.EnrichedIncident{}, fmt.Errorf("llm response failed domain validation: %w", err)
	}
	return incident, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
