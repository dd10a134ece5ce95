package query

import (
	"context"
	"fmt"

	"blotter/internal/domain/entity"
)

// Marker is one mappable incident: an incident with known coordinates.
type Marker struct {
	IncidentID int64
	Lat        float64
	Lng        float64
	Label      string
	Severity   entity.Severity
	AgencyName string
}

// mapScanLimit mirrors graphScanLimit: the map view shows recent
// incidents, not a full archive.
const mapScanLimit = 500

// Map projects the region's incidents with known (lat, lng) to marker
// records, per spec §4.8. Incidents with either coordinate unset are
// silently excluded rather than rendered at a default location.
func (s *Service) Map(ctx context.Context, region string) ([]Marker, error) {
	rows, err := s.Articles.ListIncidents(ctx, region, mapScanLimit)
	if err != nil {
		return nil, fmt.Errorf("map: list incidents: %w", err)
	}

	markers := make([]Marker, 0, len(rows))
	for _, row := range rows {
		if row.Incident.Lat == nil || row.Incident.Lng == nil {
			continue
		}
		label := row.Incident.LocationLabel
		if label == "" && row.Article != nil {
			label = row.Article.TitleRaw
		}
		agency := ""
		if row.Source != nil {
			agency = row.Source.AgencyName
		}
		markers = append(markers, Marker{
			IncidentID: row.Incident.ID,
			Lat:        *row.Incident.Lat,
			Lng:        *row.Incident.Lng,
			Label:      label,
			Severity:   row.Incident.Severity,
			AgencyName: agency,
		})
	}
	return markers, nil
}
