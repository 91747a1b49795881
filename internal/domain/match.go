package domain

// MatchOutcome is the kind of result produced by product resolution
type MatchOutcome string

const (
	MatchFound     MatchOutcome = "found"
	MatchAmbiguous MatchOutcome = "ambiguous"
	MatchNotFound  MatchOutcome = "not_found"
)

// ScoredProduct pairs a catalog product with its match score (0-100)
type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// MatchResult is the outcome of resolving a free-text query against a catalog.
// Product is set only for MatchFound; Candidates only for MatchAmbiguous,
// ordered by descending score.
type MatchResult struct {
	Outcome    MatchOutcome    `json:"outcome"`
	Product    *Product        `json:"product,omitempty"`
	Score      float64         `json:"score,omitempty"`
	Exact      bool            `json:"exact,omitempty"`
	Candidates []ScoredProduct `json:"candidates,omitempty"`
}

// CandidateProducts returns the candidate products without scores
func (r *MatchResult) CandidateProducts() []Product {
	products := make([]Product, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		products = append(products, c.Product)
	}
	return products
}
