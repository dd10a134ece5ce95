package parser

import "blotter/internal/infra/fetcher"

// Parser family ids registered by NewDefaultRegistry, matching the
// Source.ParserID values spec §4.2 names.
const (
	FamilyRCMP         = "rcmp"
	FamilyWordPress    = "wordpress"
	FamilyMunicipalList = "municipal_list"
)

// NewDefaultRegistry builds the closed set of parser families spec
// §4.2 registers, all sharing the single fetcher f.
func NewDefaultRegistry(f fetcher.Fetcher) *Registry {
	return NewRegistry(map[string]Parser{
		FamilyRCMP:          NewRCMPParser(f),
		FamilyWordPress:     NewWordPressParser(f),
		FamilyMunicipalList: NewMunicipalListParser(f, ""),
	})
}
