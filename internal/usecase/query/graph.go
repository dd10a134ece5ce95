package query

import (
	"context"
	"fmt"
	"sort"

	"blotter/internal/repository"
)

// graphScanLimit bounds how many of a region's newest incidents feed
// the graph derivation; the graph view is a visual overview, not a
// complete archive.
const graphScanLimit = 500

// NodeKind discriminates graph node types.
type NodeKind string

const (
	NodeIncident NodeKind = "incident"
	NodeEntity   NodeKind = "entity"
	NodeLocation NodeKind = "location"
)

// EdgeType discriminates graph edge types.
type EdgeType string

const (
	EdgeInvolved   EdgeType = "involved"
	EdgeOccurredAt EdgeType = "occurred_at"
)

// Node is one vertex of the incident graph: an incident, a distinct
// entity name, or a distinct location label.
type Node struct {
	ID    string
	Kind  NodeKind
	Label string
	// Cluster is non-empty only for incident nodes, carrying
	// EnrichedIncident.GraphClusterKey for optional client-side grouping.
	Cluster string
}

// Edge connects an incident node to an entity or location node.
type Edge struct {
	Source string
	Target string
	Type   EdgeType
}

// Graph is the derived node/edge set for a region.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Graph derives a node/edge set from the region's incident list per
// spec §4.8: one node per incident, one per distinct entity name, one
// per distinct location_label; edges incident->entity (involved) and
// incident->location (occurred_at). Derivation (deriveGraph) is pure
// given the IncidentRow input; only the store read has side effects.
func (s *Service) Graph(ctx context.Context, region string) (*Graph, error) {
	rows, err := s.Articles.ListIncidents(ctx, region, graphScanLimit)
	if err != nil {
		return nil, fmt.Errorf("graph: list incidents: %w", err)
	}
	return deriveGraph(rows), nil
}

func deriveGraph(rows []repository.IncidentRow) *Graph {
	g := &Graph{Nodes: make([]Node, 0, len(rows)), Edges: make([]Edge, 0, len(rows)*2)}

	entityIDs := make(map[string]struct{})
	locationIDs := make(map[string]struct{})

	for _, row := range rows {
		incidentID := incidentNodeID(row.Incident.ID)
		g.Nodes = append(g.Nodes, Node{
			ID:      incidentID,
			Kind:    NodeIncident,
			Label:   incidentLabel(row),
			Cluster: row.Incident.GraphClusterKey,
		})

		for _, ent := range row.Incident.Entities {
			if ent.Name == "" {
				continue
			}
			entityID := entityNodeID(ent.Name)
			if _, seen := entityIDs[entityID]; !seen {
				entityIDs[entityID] = struct{}{}
				g.Nodes = append(g.Nodes, Node{ID: entityID, Kind: NodeEntity, Label: ent.Name})
			}
			g.Edges = append(g.Edges, Edge{Source: incidentID, Target: entityID, Type: EdgeInvolved})
		}

		if row.Incident.LocationLabel != "" {
			locationID := locationNodeID(row.Incident.LocationLabel)
			if _, seen := locationIDs[locationID]; !seen {
				locationIDs[locationID] = struct{}{}
				g.Nodes = append(g.Nodes, Node{ID: locationID, Kind: NodeLocation, Label: row.Incident.LocationLabel})
			}
			g.Edges = append(g.Edges, Edge{Source: incidentID, Target: locationID, Type: EdgeOccurredAt})
		}
	}

	// Stable ordering keeps derivation deterministic for callers/tests:
	// incidents are already newest-first from ListIncidents, entity and
	// location nodes are appended in first-seen order which is stable
	// given a fixed input, but edges can interleave across incidents so
	// sort them for a deterministic wire order.
	sort.SliceStable(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})

	return g
}

func incidentLabel(row repository.IncidentRow) string {
	if row.Article != nil && row.Article.TitleRaw != "" {
		return row.Article.TitleRaw
	}
	return row.Incident.SummaryTactical
}

func incidentNodeID(id int64) string {
	return fmt.Sprintf("incident:%d", id)
}

func entityNodeID(name string) string {
	return "entity:" + name
}

func locationNodeID(label string) string {
	return "location:" + label
}
