package usecase

import (
	"sort"
	"strconv"
	"strings"

	"github.com/quevendi/backend/internal/domain"
)

// fractionPhrase is a spoken fraction with its exact value.
// Values come from the table, never from arithmetic on the words.
type fractionPhrase struct {
	words []string
	value float64
}

// fractionPhrases is sorted longest phrase first so that
// "tres cuartos" wins over "cuarto".
var fractionPhrases = buildFractionPhrases(map[string]float64{
	"medio":             0.5,
	"media":             0.5,
	"un medio":          0.5,
	"una media":         0.5,
	"cuarto":            0.25,
	"un cuarto":         0.25,
	"cuartito":          0.25,
	"tres cuartos":      0.75,
	"tres cuartitos":    0.75,
	"tercio":            1.0 / 3.0,
	"un tercio":         1.0 / 3.0,
	"una tercera parte": 1.0 / 3.0,
	"dos tercios":       2.0 / 3.0,
	"dos tercio":        2.0 / 3.0,
})

// numberWords maps spoken cardinals to their value
var numberWords = map[string]float64{
	"un": 1, "uno": 1, "una": 1,
	"dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
	"once": 11, "doce": 12, "quince": 15, "veinte": 20,
	"treinta": 30, "cuarenta": 40, "cincuenta": 50,
}

// unitWords are measure nouns; a bare unit before "y <fraction>" counts as one
var unitWords = wordSet([]string{"kilo", "kilos", "kg", "litro", "litros", "unidad", "unidades"})

// itemDeterminers are dropped from single-item product queries
var itemDeterminers = wordSet([]string{"de", "del", "la", "el", "los", "las"})

func buildFractionPhrases(table map[string]float64) []fractionPhrase {
	phrases := make([]fractionPhrase, 0, len(table))
	for phrase, value := range table {
		phrases = append(phrases, fractionPhrase{words: strings.Fields(phrase), value: value})
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i].words) != len(phrases[j].words) {
			return len(phrases[i].words) > len(phrases[j].words)
		}
		return strings.Join(phrases[i].words, " ") < strings.Join(phrases[j].words, " ")
	})
	return phrases
}

// matchFraction returns the longest fraction phrase starting at tokens[i]
func matchFraction(tokens []string, i int) (value float64, length int, ok bool) {
	if i < 0 || i >= len(tokens) {
		return 0, 0, false
	}
	for _, fp := range fractionPhrases {
		if i+len(fp.words) > len(tokens) {
			continue
		}
		matched := true
		for k, w := range fp.words {
			if tokens[i+k] != w {
				matched = false
				break
			}
		}
		if matched {
			return fp.value, len(fp.words), true
		}
	}
	return 0, 0, false
}

// numberValue reads a digit sequence or a number word
func numberValue(tok string) (float64, bool) {
	if isDigits(tok) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	v, ok := numberWords[tok]
	return v, ok
}

// isCompoundConnector reports whether tokens[i] is the "y" of a compound
// quantity such as "uno y medio" or "kilo y medio"
func isCompoundConnector(tokens []string, i int) bool {
	if tokens[i] != "y" || i == 0 {
		return false
	}
	if _, _, ok := matchFraction(tokens, i+1); !ok {
		return false
	}
	prev := tokens[i-1]
	if unitWords[prev] {
		return true
	}
	_, ok := numberValue(prev)
	return ok
}

// parseQuantity finds the quantity spoken in an item fragment.
// Priority: "N y fraction" compound, any fraction phrase, any number word,
// any digit sequence. ok is false when nothing was recognized.
func parseQuantity(tokens []string) (quantity float64, ok bool) {
	for i := range tokens {
		if !isCompoundConnector(tokens, i) {
			continue
		}
		fraction, _, _ := matchFraction(tokens, i+1)
		prev := tokens[i-1]
		base := 1.0
		if unitWords[prev] {
			if i >= 2 {
				if v, isNum := numberValue(tokens[i-2]); isNum {
					base = v
				}
			}
		} else {
			base, _ = numberValue(prev)
		}
		return base + fraction, true
	}

	for i := range tokens {
		if v, _, found := matchFraction(tokens, i); found {
			return v, true
		}
	}

	for _, tok := range tokens {
		if v, found := numberWords[tok]; found {
			return v, true
		}
	}

	for _, tok := range tokens {
		if isDigits(tok) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}

	return 0, false
}

// productQueryFrom strips quantities, determiners and units from an item
// fragment, leaving only the product reference
func productQueryFrom(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if _, n, ok := matchFraction(tokens, i); ok {
			i += n
			continue
		}
		tok := tokens[i]
		i++
		switch {
		case isDigits(tok):
		case tok == "y":
		case numberWords[tok] != 0:
		case itemDeterminers[tok]:
		case unitWords[tok]:
		default:
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// parseSingleItem turns one item fragment into a command item.
// Quantity defaults to 1; nil means no product reference was found.
func parseSingleItem(text string) *domain.CommandItem {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	quantity, ok := parseQuantity(tokens)
	if !ok {
		quantity = 1.0
	}
	if quantity <= 0 {
		return nil
	}

	query := productQueryFrom(tokens)
	if query == "" {
		return nil
	}

	return &domain.CommandItem{
		ProductQuery: query,
		Quantity:     quantity,
	}
}

// splitItems cuts an utterance at each "y" and comma, except the "y" inside
// a compound quantity
func splitItems(text string) []string {
	tokens := strings.Fields(text)
	var parts []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.Join(current, " "))
			current = nil
		}
	}
	for i, tok := range tokens {
		if tok == "," || (tok == "y" && !isCompoundConnector(tokens, i)) {
			flush()
			continue
		}
		current = append(current, tok)
	}
	flush()
	return parts
}
