package usecase

import (
	"sort"
	"strings"

	"github.com/quevendi/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Signal scores. A candidate's score is the best single signal, not a sum.
const (
	exactMatchScore     = 100.0 // Query equals name or alias
	prefixMatchScore    = 80.0  // Name or alias starts with query
	substringMatchScore = 60.0  // Query appears inside name or alias
	similarityWeight    = 50.0  // Edit-distance similarity [0,1] scaled
)

// Defaults
const (
	defaultResolveFloor = 40.0
	defaultSearchFloor  = 50.0
	defaultAmbiguityGap = 10.0
	defaultMaxOptions   = 4
	defaultSearchLimit  = 10
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	ResolveFloor float64
	SearchFloor  float64
	AmbiguityGap float64
	MaxOptions   int
	SearchLimit  int
	FoldAccents  bool
}

// MatchingService resolves spoken product names against a catalog snapshot
type MatchingService struct {
	resolveFloor float64
	searchFloor  float64
	ambiguityGap float64
	maxOptions   int
	searchLimit  int
	foldAccents  bool
	logger       zerolog.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, logger zerolog.Logger) *MatchingService {
	resolveFloor := config.ResolveFloor
	if resolveFloor <= 0 {
		resolveFloor = defaultResolveFloor
	}

	searchFloor := config.SearchFloor
	if searchFloor <= 0 {
		searchFloor = defaultSearchFloor
	}

	gap := config.AmbiguityGap
	if gap <= 0 {
		gap = defaultAmbiguityGap
	}

	maxOptions := config.MaxOptions
	if maxOptions < 2 {
		maxOptions = defaultMaxOptions
	}

	limit := config.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return &MatchingService{
		resolveFloor: resolveFloor,
		searchFloor:  searchFloor,
		ambiguityGap: gap,
		maxOptions:   maxOptions,
		searchLimit:  limit,
		foldAccents:  config.FoldAccents,
		logger:       logger.With().Str("component", "matcher").Logger(),
	}
}

// matchQuery is a normalized query plus its naive singular form
type matchQuery struct {
	full     string
	singular string
}

func (q matchQuery) forms() []string {
	if q.singular == q.full {
		return []string{q.full}
	}
	return []string{q.full, q.singular}
}

func (s *MatchingService) normalize(text string) string {
	text = collapseSpaces(lowerSpanish(text))
	if s.foldAccents {
		text = foldAccents(text)
	}
	return text
}

func (s *MatchingService) newQuery(text string) matchQuery {
	full := s.normalize(text)
	singular := strings.TrimSuffix(full, "s")
	if singular == "" {
		singular = full
	}
	return matchQuery{full: full, singular: singular}
}

// Resolve finds the single catalog product meant by query.
// An exact name or alias match wins outright. Otherwise candidates scoring
// above the floor are ranked; near-ties within the ambiguity gap are
// returned as MatchAmbiguous so the user can choose.
func (s *MatchingService) Resolve(query string, products []domain.Product) *domain.MatchResult {
	q := s.newQuery(query)
	if q.full == "" {
		return &domain.MatchResult{Outcome: domain.MatchNotFound}
	}

	if product, ok := s.findExact(q, products); ok {
		s.logger.Debug().Str("query", q.full).Str("product", product.Name).Msg("exact match")
		return &domain.MatchResult{
			Outcome: domain.MatchFound,
			Product: &product,
			Score:   exactMatchScore,
			Exact:   true,
		}
	}

	candidates := s.rank(q, products, s.resolveFloor)
	if len(candidates) == 0 {
		s.logger.Debug().Str("query", q.full).Msg("no match")
		return &domain.MatchResult{Outcome: domain.MatchNotFound}
	}

	if len(candidates) > 1 && candidates[0].Score-candidates[1].Score < s.ambiguityGap {
		n := min(len(candidates), s.maxOptions)
		s.logger.Debug().Str("query", q.full).Int("options", n).Msg("ambiguous match")
		return &domain.MatchResult{
			Outcome:    domain.MatchAmbiguous,
			Candidates: candidates[:n],
		}
	}

	best := candidates[0]
	s.logger.Debug().Str("query", q.full).Str("product", best.Product.Name).
		Float64("score", best.Score).Msg("best match")
	return &domain.MatchResult{
		Outcome: domain.MatchFound,
		Product: &best.Product,
		Score:   best.Score,
	}
}

// Search ranks catalog products for free-text lookup.
// Uses the same scoring as Resolve with a stricter floor and no
// ambiguity handling; at most the configured limit is returned.
func (s *MatchingService) Search(query string, products []domain.Product) []domain.ScoredProduct {
	q := s.newQuery(query)
	if q.full == "" {
		return nil
	}

	results := s.rank(q, products, s.searchFloor)
	if len(results) > s.searchLimit {
		results = results[:s.searchLimit]
	}

	s.logger.Debug().Str("query", q.full).Int("results", len(results)).Msg("catalog search")
	return results
}

// findExact looks for an exact name/alias match, trying the query as spoken
// across the whole catalog before trying its singular form
func (s *MatchingService) findExact(q matchQuery, products []domain.Product) (domain.Product, bool) {
	for _, form := range q.forms() {
		for _, p := range products {
			if !p.IsActive {
				continue
			}
			if s.normalize(p.Name) == form {
				return p, true
			}
			for _, alias := range p.Aliases {
				if s.normalize(alias) == form {
					return p, true
				}
			}
		}
	}
	return domain.Product{}, false
}

// rank scores every active product and keeps those strictly above floor,
// best first. Ties keep catalog order.
func (s *MatchingService) rank(q matchQuery, products []domain.Product, floor float64) []domain.ScoredProduct {
	var scored []domain.ScoredProduct
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		score := s.scoreProduct(q, p)
		if score > floor {
			scored = append(scored, domain.ScoredProduct{Product: p, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// scoreProduct is the best signal over the product name and all aliases
func (s *MatchingService) scoreProduct(q matchQuery, p domain.Product) float64 {
	best := scoreText(q, s.normalize(p.Name))
	for _, alias := range p.Aliases {
		if score := scoreText(q, s.normalize(alias)); score > best {
			best = score
		}
	}
	return best
}

// scoreText computes the best single signal of query against one target
func scoreText(q matchQuery, target string) float64 {
	if target == "" {
		return 0
	}

	best := 0.0
	for _, form := range q.forms() {
		if form == target {
			return exactMatchScore
		}
		if strings.HasPrefix(target, form) {
			best = max(best, prefixMatchScore)
		}
		if strings.Contains(target, form) {
			best = max(best, substringMatchScore)
		}
	}

	return max(best, similarityRatio(q.full, target)*similarityWeight)
}

// similarityRatio is the normalized insert/delete edit similarity in [0,1]:
// (len(a)+len(b)-distance) / (len(a)+len(b)), substitutions costing two edits
func similarityRatio(a, b string) float64 {
	r1 := []rune(a)
	r2 := []rune(b)
	total := len(r1) + len(r2)
	if total == 0 {
		return 1
	}
	distance := editDistance(r1, r2, 2)
	return float64(total-distance) / float64(total)
}

// editDistance calculates the weighted edit distance between two rune slices
func editDistance(r1, r2 []rune, substitutionCost int) int {
	m := len(r1)
	n := len(r2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = substitutionCost
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
