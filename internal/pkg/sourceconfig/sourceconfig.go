// Package sourceconfig provides a concrete implementation of the
// opaque source-list config provider spec.md describes: a YAML file
// listing the sources the pipeline should sync, loaded once at
// startup and upserted into the store.
package sourceconfig

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"
)

// sourceRecord mirrors spec.md §"Configuration" reference shape.
type sourceRecord struct {
	AgencyName   string `yaml:"agency_name"`
	Jurisdiction string `yaml:"jurisdiction"`
	RegionLabel  string `yaml:"region_label"`
	SourceType   string `yaml:"source_type"`
	BaseURL      string `yaml:"base_url"`
	ParserID     string `yaml:"parser_id"`
	Active       bool   `yaml:"active"`
	UseBrowser   bool   `yaml:"use_browser"`
	FeedURL      string `yaml:"feed_url"`
}

// document is the top-level shape of a sources YAML file.
type document struct {
	Sources []sourceRecord `yaml:"sources"`
}

// YAMLProvider loads a source list from a YAML file on disk.
type YAMLProvider struct {
	path string
}

// NewYAMLProvider builds a provider reading from path.
func NewYAMLProvider(path string) *YAMLProvider {
	return &YAMLProvider{path: path}
}

// Load parses the YAML file into entity.Source values.
func (p *YAMLProvider) Load() ([]*entity.Source, error) {
	// #nosec G304 -- path is an operator-supplied startup argument, not user input
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read source config %s: %w", p.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse source config %s: %w", p.path, err)
	}

	sources := make([]*entity.Source, 0, len(doc.Sources))
	for _, rec := range doc.Sources {
		sources = append(sources, &entity.Source{
			AgencyName:   rec.AgencyName,
			Jurisdiction: rec.Jurisdiction,
			RegionLabel:  rec.RegionLabel,
			SourceType:   rec.SourceType,
			BaseURL:      rec.BaseURL,
			ParserID:     rec.ParserID,
			Active:       rec.Active,
			UseBrowser:   rec.UseBrowser,
			FeedURL:      rec.FeedURL,
		})
	}
	return sources, nil
}

// Sync loads the provider's source list and upserts each one into
// repo, keyed by BaseURL per repository.SourceRepository's contract.
// Sources are never deleted from the store by this sync.
func Sync(ctx context.Context, p *YAMLProvider, repo repository.SourceRepository) (int, error) {
	sources, err := p.Load()
	if err != nil {
		return 0, err
	}
	for _, s := range sources {
		if err := repo.Upsert(ctx, s); err != nil {
			return 0, fmt.Errorf("upsert source %s: %w", s.BaseURL, err)
		}
	}
	return len(sources), nil
}
