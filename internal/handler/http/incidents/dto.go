package incidents

import (
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"
)

// coordinates is the {lat, lng} pair embedded in a DTO, both null when
// the incident carries no geocoded location.
type coordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// entityDTO is one {type, name} pair extracted by the enricher.
type entityDTO struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// DTO is the wire shape of a single enriched incident, denormalized
// across Source, RawArticle, and EnrichedIncident.
type DTO struct {
	ID                 int64       `json:"id"`
	Timestamp          string      `json:"timestamp"`
	Source             string      `json:"source"`
	AgencyName         string      `json:"agencyName"`
	Location           string      `json:"location"`
	Coordinates        coordinates `json:"coordinates"`
	Summary            string      `json:"summary"`
	FullText           string      `json:"fullText"`
	Severity           string      `json:"severity"`
	Tags               []string    `json:"tags"`
	Entities           []entityDTO `json:"entities"`
	RelatedIncidentIds []int64     `json:"relatedIncidentIds"`
	SourceURL          string      `json:"sourceUrl"`
	CrimeCategory      string      `json:"crimeCategory"`
	TemporalContext    string      `json:"temporalContext"`
	WeaponInvolved     string      `json:"weaponInvolved"`
	TacticalAdvice     string      `json:"tacticalAdvice"`
}

// severityWire maps the domain's closed severity enum onto spec.md's
// §6 wire values ("Low|Medium|High|Critical"); unknown values pass
// through unchanged so a future severity isn't silently swallowed.
var severityWire = map[entity.Severity]string{
	entity.SeverityLow:      "Low",
	entity.SeverityMedium:   "Medium",
	entity.SeverityHigh:     "High",
	entity.SeverityCritical: "Critical",
}

func toWireSeverity(s entity.Severity) string {
	if wire, ok := severityWire[s]; ok {
		return wire
	}
	return string(s)
}

// toDTO projects one denormalized IncidentRow onto the external wire
// shape spec.md's §6 External Interfaces table names.
func toDTO(row repository.IncidentRow) DTO {
	dto := DTO{
		ID:                 row.Incident.ID,
		Summary:             row.Incident.SummaryTactical,
		FullText:            row.Article.BodyRaw,
		Severity:            toWireSeverity(row.Incident.Severity),
		Tags:                row.Incident.Tags,
		Entities:            make([]entityDTO, 0, len(row.Incident.Entities)),
		RelatedIncidentIds:  []int64{},
		SourceURL:           row.Article.URL,
		CrimeCategory:       row.Incident.CrimeCategory,
		TemporalContext:     row.Incident.TemporalContext,
		WeaponInvolved:      row.Incident.WeaponInvolved,
		TacticalAdvice:      row.Incident.TacticalAdvice,
		Location:            row.Incident.LocationLabel,
		Coordinates:         coordinates{Lat: row.Incident.Lat, Lng: row.Incident.Lng},
	}

	if row.Article.PublishedAt != nil {
		dto.Timestamp = row.Article.PublishedAt.UTC().Format(time.RFC3339)
	} else {
		dto.Timestamp = row.Article.CreatedAt.UTC().Format(time.RFC3339)
	}

	if row.Source != nil {
		dto.Source = row.Source.SourceType
		dto.AgencyName = row.Source.AgencyName
	}

	for _, e := range row.Incident.Entities {
		dto.Entities = append(dto.Entities, entityDTO{Type: string(e.Type), Name: e.Name})
	}

	return dto
}
