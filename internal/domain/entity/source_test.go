package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr bool
	}{
		{
			name: "valid source",
			src: Source{
				AgencyName:  "Example Detachment",
				RegionLabel: "Fraser Valley, BC",
				ParserID:    "rcmp",
				BaseURL:     "https://example-police.ca/news",
			},
			wantErr: false,
		},
		{
			name:    "missing agency name",
			src:     Source{RegionLabel: "R", ParserID: "rcmp", BaseURL: "https://x.ca"},
			wantErr: true,
		},
		{
			name:    "missing base url",
			src:     Source{AgencyName: "A", RegionLabel: "R", ParserID: "rcmp"},
			wantErr: true,
		},
		{
			name:    "missing region label",
			src:     Source{AgencyName: "A", ParserID: "rcmp", BaseURL: "https://x.ca"},
			wantErr: true,
		},
		{
			name:    "missing parser id",
			src:     Source{AgencyName: "A", RegionLabel: "R", BaseURL: "https://x.ca"},
			wantErr: true,
		},
		{
			name:    "invalid scheme",
			src:     Source{AgencyName: "A", RegionLabel: "R", ParserID: "rcmp", BaseURL: "ftp://x.ca"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
