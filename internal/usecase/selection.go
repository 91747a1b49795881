package usecase

import (
	"strings"

	"github.com/quevendi/backend/internal/domain"
)

// ordinalWords map spoken positions to a 1-based option index; -1 is the last one
var ordinalWords = map[string]int{
	"primero": 1, "primera": 1, "primer": 1, "uno": 1, "una": 1,
	"segundo": 2, "segunda": 2, "dos": 2,
	"tercero": 3, "tercera": 3, "tercer": 3, "tres": 3,
	"cuarto": 4, "cuarta": 4, "cuatro": 4,
	"último": -1, "última": -1, "ultimo": -1, "ultima": -1,
}

// selectionFiller is ignored in follow-up replies ("el segundo", "la opción 2")
var selectionFiller = wordSet([]string{
	"el", "la", "lo", "los", "las", "de", "del", "número", "numero", "opción", "opcion",
	"quiero", "dame", "ese", "esa", "este", "esta", "por", "favor",
})

// Select picks one of the candidates offered after an ambiguous match.
// An exact name wins, then a spoken position ("el segundo", "2"), then the
// reply is resolved against the candidates only.
func (s *MatchingService) Select(reply string, candidates []domain.Product) *domain.MatchResult {
	text := removeWords(withoutCommas(normalizeUtterance(reply)), selectionFiller)
	if text == "" || len(candidates) == 0 {
		return &domain.MatchResult{Outcome: domain.MatchNotFound}
	}

	result := s.Resolve(text, candidates)
	if result.Exact {
		return result
	}

	if idx, ok := ordinalIndex(text, len(candidates)); ok {
		chosen := candidates[idx]
		return &domain.MatchResult{
			Outcome: domain.MatchFound,
			Product: &chosen,
			Score:   exactMatchScore,
		}
	}

	return result
}

// ordinalIndex reads a single-token position reply as a 0-based index
func ordinalIndex(text string, n int) (int, bool) {
	tokens := strings.Fields(text)
	if len(tokens) != 1 {
		return 0, false
	}

	pos, ok := ordinalWords[tokens[0]]
	if !ok {
		v, isNum := numberValue(tokens[0])
		if !isNum || v != float64(int(v)) {
			return 0, false
		}
		pos = int(v)
	}

	if pos == -1 {
		pos = n
	}
	if pos < 1 || pos > n {
		return 0, false
	}
	return pos - 1, true
}
