package model

import "time"

// SourceType identifies where a field observation came from.
type SourceType string

const (
	SourceUPCDatabase    SourceType = "upc_database"
	SourceProductCatalog SourceType = "product_catalog"
	SourceBarcodeScan    SourceType = "barcode_scan"
	SourceVisionAnalysis SourceType = "vision_analysis"
	SourceOCRExtraction  SourceType = "ocr_extraction"
	SourceWebSearch      SourceType = "web_search"
	SourceTargetedSearch SourceType = "targeted_search"
	SourceEbayAPI        SourceType = "marketplace_ebay"
	SourceAmazonAPI      SourceType = "marketplace_amazon"
	SourceUserInput      SourceType = "user_input"
)

// IndependenceGroup clusters source types that share failure modes.
// Corroboration across groups raises confidence; corroboration within a
// single group does not.
type IndependenceGroup string

const (
	GroupCatalogProvider   IndependenceGroup = "catalog_provider"
	GroupCodeLookup        IndependenceGroup = "code_lookup"
	GroupVision            IndependenceGroup = "vision"
	GroupTextExtraction    IndependenceGroup = "text_extraction"
	GroupWebSearch         IndependenceGroup = "web_search"
	GroupMarketplaceEbay   IndependenceGroup = "marketplace_ebay"
	GroupMarketplaceAmazon IndependenceGroup = "marketplace_amazon"
	GroupUserInput         IndependenceGroup = "user_input"
)

// FieldDataSource is a single observation of a field value from one source.
type FieldDataSource struct {
	SourceType SourceType `json:"source_type"`
	Confidence float64    `json:"confidence"`
	Timestamp  time.Time  `json:"timestamp"`
	RawValue   any        `json:"raw_value"`
}

// Concrete reports whether the observation carries a usable value.
// Nil and empty-string values are recorded for audit but never compared
// or counted toward corroboration.
func (s FieldDataSource) Concrete() bool {
	if s.RawValue == nil {
		return false
	}
	if str, ok := s.RawValue.(string); ok && str == "" {
		return false
	}
	return true
}

// FieldConfidenceScore is the current belief in a field value together
// with the observations that produced it.
type FieldConfidenceScore struct {
	Value       float64           `json:"value"`
	Sources     []FieldDataSource `json:"sources,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
}
