package bleveindex

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// Analyzer names registered on every index mapping.
const (
	// TextAnalyzer segments words on Unicode boundaries and lowercases them.
	// No stemming and no stop words, so titles in any language match.
	TextAnalyzer = "cinedex_text"

	// ExactAnalyzer keeps the whole value as one lowercased term.
	ExactAnalyzer = "cinedex_exact"
)

// buildIndexMapping derives a static bleve mapping from a schema table.
func buildIndexMapping(schema []domain.FieldSpec) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer(TextAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register %s: %w", TextAnalyzer, err)
	}
	if err := im.AddCustomAnalyzer(ExactAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register %s: %w", ExactAnalyzer, err)
	}
	im.DefaultAnalyzer = TextAnalyzer

	// Only declared fields are indexed.
	im.IndexDynamic = false
	im.StoreDynamic = false
	im.DocValuesDynamic = false

	docMapping := bleve.NewDocumentStaticMapping()
	for _, spec := range schema {
		docMapping.AddFieldMappingsAt(spec.Name, fieldMapping(spec))
	}
	im.DefaultMapping = docMapping

	return im, nil
}

func fieldMapping(spec domain.FieldSpec) *mapping.FieldMapping {
	switch spec.Kind {
	case domain.FieldText:
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = TextAnalyzer
		fm.Store = false
		fm.IncludeInAll = false
		fm.DocValues = false
		return fm

	case domain.FieldExact:
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = ExactAnalyzer
		fm.Store = false
		fm.IncludeInAll = false
		fm.IncludeTermVectors = false
		fm.DocValues = false
		return fm

	case domain.FieldRange:
		// Doc values back numeric sorting.
		fm := bleve.NewNumericFieldMapping()
		fm.Store = false
		fm.IncludeInAll = false
		fm.DocValues = true
		return fm

	default:
		fm := bleve.NewTextFieldMapping()
		fm.Index = false
		fm.Store = true
		fm.IncludeInAll = false
		fm.IncludeTermVectors = false
		fm.DocValues = false
		return fm
	}
}
