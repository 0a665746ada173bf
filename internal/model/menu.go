package model

// ExtractionStrategy identifies which heuristic produced a menu item.
// Kept on every item for diagnostics and merge ranking.
type ExtractionStrategy string

const (
	StrategyStructured ExtractionStrategy = "structured_data"
	StrategyTable      ExtractionStrategy = "table"
	StrategyDensity    ExtractionStrategy = "content_density"
	StrategySelector   ExtractionStrategy = "selector"
	StrategyList       ExtractionStrategy = "list"
	StrategyVisual     ExtractionStrategy = "visual"
	StrategyTextMine   ExtractionStrategy = "text_mining"
	StrategyPDFPattern ExtractionStrategy = "pdf_pattern"
	StrategyPDFAI      ExtractionStrategy = "pdf_ai"
)

// StrategyTrustOrder lists strategies from most to least trusted. The merge
// step keeps the first occurrence of a normalized name in this order.
func StrategyTrustOrder() []ExtractionStrategy {
	return []ExtractionStrategy{
		StrategyStructured,
		StrategyTable,
		StrategyDensity,
		StrategySelector,
		StrategyList,
		StrategyVisual,
		StrategyTextMine,
	}
}

// DefaultCategory is the catch-all category for items whose section could
// not be determined.
const DefaultCategory = "Menu Items"

// MenuItem is a single extracted food or drink item.
type MenuItem struct {
	Name        string             `json:"name"`
	Price       string             `json:"price,omitempty"`
	Description string             `json:"description,omitempty"`
	Category    string             `json:"category"`
	SourceURL   string             `json:"source_url"`
	Strategy    ExtractionStrategy `json:"extraction_strategy"`
	// Confidence is the page-level menu confidence at extraction time,
	// 0-100. Zero when no classifier verdict was available.
	Confidence int `json:"confidence,omitempty"`
}

// DiscoveryMethod records which stage of the search produced the result.
type DiscoveryMethod string

const (
	MethodOriginalValidated   DiscoveryMethod = "original-url-validated"
	MethodOriginalUnvalidated DiscoveryMethod = "original-url-unvalidated"
	MethodAIDiscovery         DiscoveryMethod = "ai-discovery"
	MethodCommonPath          DiscoveryMethod = "common-path"
	MethodPDFDirect           DiscoveryMethod = "pdf-direct"
	MethodPDFParsing          DiscoveryMethod = "pdf-parsing"
	MethodPDFParsingFailed    DiscoveryMethod = "pdf-parsing-failed"
	MethodFailed              DiscoveryMethod = "failed"
	MethodError               DiscoveryMethod = "error"
)

// RestaurantInfo is best-effort metadata about the restaurant itself.
type RestaurantInfo struct {
	Name    string `json:"name,omitempty"`
	Website string `json:"website,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SubMenuSource records provenance of a merged sub-menu page.
type SubMenuSource struct {
	URL       string `json:"url"`
	Category  string `json:"category"`
	ItemCount int    `json:"item_count"`
}

// DiscoveryResult is the outcome of a full menu discovery request. It is
// constructed once per request and never mutated after return.
type DiscoveryResult struct {
	RequestID      string          `json:"request_id,omitempty"`
	Success        bool            `json:"success"`
	MenuPageURL    string          `json:"menu_page_url,omitempty"`
	Method         DiscoveryMethod `json:"discovery_method"`
	Reason         string          `json:"reason,omitempty"`
	Items          []MenuItem      `json:"items"`
	Categories     []string        `json:"categories"`
	RestaurantInfo RestaurantInfo  `json:"restaurant_info"`
	SubMenuSources []SubMenuSource `json:"sub_menu_sources,omitempty"`
}

// CategorySet collects the distinct categories present in items, in first
// appearance order.
func CategorySet(items []MenuItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		c := it.Category
		if c == "" {
			c = DefaultCategory
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
