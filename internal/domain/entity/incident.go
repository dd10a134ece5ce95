package entity

import "time"

// Severity is the closed domain of incident severity levels.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ValidSeverities enumerates the closed severity set.
var ValidSeverities = map[Severity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// EntityType is the closed domain of entity types discovered in an
// enriched incident, used by the graph query surface to discriminate
// node kinds.
type EntityType string

const (
	EntityPerson   EntityType = "Person"
	EntityGroup    EntityType = "Group"
	EntityLocation EntityType = "Location"
)

// IncidentEntity is a {type, name} pair extracted by the enricher.
type IncidentEntity struct {
	Type EntityType
	Name string
}

// Closed set of crime categories recognized by the enricher. Anything
// else is rejected as a validation failure and falls back to the stub.
const (
	CrimeCategoryViolent    = "Violent Crime"
	CrimeCategoryProperty   = "Property Crime"
	CrimeCategoryTraffic    = "Traffic Incident"
	CrimeCategoryDrug       = "Drug Offense"
	CrimeCategorySexual     = "Sexual Offense"
	CrimeCategoryCyber      = "Cybercrime"
	CrimeCategoryPublicSafe = "Public Safety"
	CrimeCategoryOther      = "Other"
	CrimeCategoryUnknown    = "Unknown"
)

// ValidCrimeCategories enumerates the closed crime-category set.
var ValidCrimeCategories = map[string]bool{
	CrimeCategoryViolent:    true,
	CrimeCategoryProperty:   true,
	CrimeCategoryTraffic:    true,
	CrimeCategoryDrug:       true,
	CrimeCategorySexual:     true,
	CrimeCategoryCyber:      true,
	CrimeCategoryPublicSafe: true,
	CrimeCategoryOther:      true,
	CrimeCategoryUnknown:    true,
}

// EnrichedIncident is the structured interpretation of exactly one
// RawArticle (ID equals the RawArticle ID, enforced 1:1 by the store).
type EnrichedIncident struct {
	ID               int64
	Severity         Severity
	SummaryTactical  string
	Tags             []string
	Entities         []IncidentEntity
	LocationLabel    string
	Lat              *float64
	Lng              *float64
	GraphClusterKey  string
	CrimeCategory    string
	TemporalContext  string
	WeaponInvolved   string
	TacticalAdvice   string
	LLMModel         string
	PromptVersion    string
	ProcessedAt      time.Time
}

// Validate enforces the severity and crime-category domains described
// in spec §4.5 / §8 property 4.
func (e *EnrichedIncident) Validate() error {
	if !ValidSeverities[e.Severity] {
		return &ValidationError{Field: "severity", Message: "must be one of LOW, MEDIUM, HIGH, CRITICAL"}
	}
	if e.CrimeCategory == "" {
		e.CrimeCategory = CrimeCategoryUnknown
	}
	if !ValidCrimeCategories[e.CrimeCategory] {
		return &ValidationError{Field: "crime_category", Message: "not in the closed crime category set"}
	}
	for _, ent := range e.Entities {
		if ent.Type != EntityPerson && ent.Type != EntityGroup && ent.Type != EntityLocation {
			return &ValidationError{Field: "entities.type", Message: "must be Person, Group, or Location"}
		}
	}
	return nil
}
