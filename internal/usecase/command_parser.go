package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/quevendi/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Keyword lists. Matching is done on whole tokens, so "sumale" (add)
// never triggers "suma" (confirm).
var (
	cancelWordList = []string{
		"cancelar", "cancela", "anular", "anula", "borra", "borrar", "elimina", "eliminar",
	}
	confirmWordList = []string{
		"listo", "total", "confirmar", "confirma", "suma", "sumar", "cierra", "cerrar",
		"terminar", "termina", "dale", "ok", "vale",
	}
	addWordList = []string{
		"adicionar", "adiciona", "sumale", "súmale", "agregar", "agrega", "agregale", "agrégale",
		"añadir", "añade", "anadir", "anade", "aumentar", "aumenta", "pon", "poner", "ponle",
		"meter", "mete",
	}
	changeWordList = []string{
		"cambiar", "cambia", "cambio", "cambios", "modificar", "modifica", "modificacion",
		"modificación", "modificaciones", "corregir", "corrige", "actualizar", "actualiza",
		"ajustar", "ajusta",
	}
	removeWordList = []string{
		"quitar", "quita", "quitale", "quítale", "eliminar", "elimina", "sacar", "saca",
		"borrar", "borra", "borrale", "bórrale", "sustraccion", "sustracción", "sustraer",
		"restar", "resta",
	}
	// saleVerbList is stripped from item utterances together with addWordList
	saleVerbList = []string{"vender", "vende", "registrar", "registra"}
)

var (
	cancelLexicon  = wordSet(cancelWordList)
	confirmLexicon = wordSet(confirmWordList)
	addLexicon     = wordSet(addWordList)
	changeLexicon  = wordSet(changeWordList)
	removeLexicon  = wordSet(removeWordList)

	// cancelTargets name the whole operation rather than a product:
	// "borrar todo" cancels, "borrar el arroz" removes an item
	cancelTargets = wordSet([]string{
		"todo", "toda", "venta", "pedido", "carrito", "compra", "orden", "operación", "operacion",
	})

	articleWords = wordSet([]string{"el", "la", "los", "las", "un", "una"})
	removeFiller = wordSet([]string{"el", "la", "los", "las", "un", "una", "de", "del"})
	itemStrip    = wordSet(addWordList, saleVerbList)
	priceStrip   = wordSet(changeWordList, []string{"precio", "de", "del", "el", "la", "los", "las"})
)

// Command patterns
var (
	pricePhraseRegex   = regexp.MustCompile(`\ba\s+\d+(?:\.\d+)?\s*soles?\b`)
	priceOfRegex       = regexp.MustCompile(`precio\s+(?:de\s+|del\s+)?(.+?)\s+a\s+(\d+(?:\.\d+)?)\s*soles?`)
	priceAtRegex       = regexp.MustCompile(`^(?:cambiar\s+precio\s+(?:de\s+)?)?(.+?)\s+a\s+(\d+(?:\.\d+)?)\s*soles?`)
	priceBareRegex     = regexp.MustCompile(`precio\s+(.+?)\s+(\d+(?:\.\d+)?)`)
	productChangeRegex = regexp.MustCompile(`(?:^|\s)(?:cambiar|cambia|cambio|modificar|modifica|corregir|corrige|reemplazar|reemplaza)\s+(.+?)\s+por\s+(.+)$`)
)

// commandChange is the intermediate class for utterances carrying a change
// verb without the " por " connector; it resolves to a price or product change
const commandChange domain.CommandKind = "change"

// CommandParser classifies Spanish voice commands and extracts their fields.
// It holds no per-call state and is safe for concurrent use.
type CommandParser struct {
	logger zerolog.Logger
}

// NewCommandParser creates a new command parser
func NewCommandParser(logger zerolog.Logger) *CommandParser {
	return &CommandParser{
		logger: logger.With().Str("component", "parser").Logger(),
	}
}

// Parse converts an utterance into a structured command.
// Returns nil when the utterance is not understood; it never fails otherwise.
func (p *CommandParser) Parse(utterance string) *domain.ParsedCommand {
	text := normalizeUtterance(utterance)
	if text == "" {
		return nil
	}
	plain := withoutCommas(text)

	kind := classify(plain)
	p.logger.Debug().Str("text", text).Str("class", string(kind)).Msg("classified utterance")

	var cmd *domain.ParsedCommand
	switch kind {
	case domain.CommandCancel, domain.CommandConfirm:
		cmd = &domain.ParsedCommand{Kind: kind}
	case domain.CommandChangeProduct:
		cmd = parseProductChange(plain)
	case domain.CommandChangePrice:
		cmd = parsePriceChange(plain)
	case commandChange:
		cmd = parsePriceChange(plain)
		if cmd == nil {
			cmd = parseProductChange(plain)
		}
	case domain.CommandRemoveItem:
		cmd = parseRemove(plain)
	default:
		cmd = parseItems(text, kind)
	}

	if cmd == nil {
		p.logger.Debug().Str("text", text).Msg("utterance not understood")
		return nil
	}
	p.logger.Debug().Str("type", string(cmd.Kind)).Int("items", len(cmd.Items)).Msg("parsed command")
	return cmd
}

// classify applies the intent rules in fixed priority order
func classify(text string) domain.CommandKind {
	tokens := strings.Fields(text)

	if containsAnyWord(tokens, cancelLexicon) && !isExplicitRemoval(tokens) {
		return domain.CommandCancel
	}
	if containsAnyWord(tokens, confirmLexicon) {
		return domain.CommandConfirm
	}
	if containsAnyWord(tokens, addLexicon) {
		return domain.CommandAddItems
	}
	hasChange := containsAnyWord(tokens, changeLexicon)
	if hasChange && strings.Contains(text, " por ") {
		return domain.CommandChangeProduct
	}
	if pricePhraseRegex.MatchString(text) || (strings.Contains(text, "precio") && strings.Contains(text, " a ")) {
		return domain.CommandChangePrice
	}
	if hasChange {
		return commandChange
	}
	if containsAnyWord(tokens, removeLexicon) {
		// "quita todo" names the operation, not a product
		if containsAnyWord(tokens, cancelTargets) && !isExplicitRemoval(tokens) {
			return domain.CommandCancel
		}
		return domain.CommandRemoveItem
	}
	return domain.CommandSale
}

// isExplicitRemoval decides the cancel/remove overlap: a removal verb
// followed by a product reference removes an item, anything else cancels.
// "cancelar" and "anular" always cancel since they are not removal verbs.
func isExplicitRemoval(tokens []string) bool {
	if !containsAnyWord(tokens, removeLexicon) {
		return false
	}
	for _, tok := range tokens {
		if removeLexicon[tok] || cancelLexicon[tok] || removeFiller[tok] || cancelTargets[tok] {
			continue
		}
		return true
	}
	return false
}

// parsePriceChange extracts "<product> a <number> soles" style price changes
func parsePriceChange(text string) *domain.ParsedCommand {
	if m := priceOfRegex.FindStringSubmatch(text); m != nil {
		return newPriceChange(m[1], m[2])
	}

	if !strings.Contains(text, " y ") {
		if m := priceAtRegex.FindStringSubmatch(text); m != nil {
			if cmd := newPriceChange(m[1], m[2]); cmd != nil {
				return cmd
			}
		}
	}

	if m := priceBareRegex.FindStringSubmatch(text); m != nil {
		return newPriceChange(m[1], m[2])
	}

	return nil
}

func newPriceChange(productText, priceText string) *domain.ParsedCommand {
	query := removeWords(productText, priceStrip)
	if query == "" {
		return nil
	}
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil || price <= 0 {
		return nil
	}
	return &domain.ParsedCommand{
		Kind:         domain.CommandChangePrice,
		ProductQuery: query,
		NewPrice:     price,
	}
}

// parseProductChange extracts "cambiar <old> por <new>"
func parseProductChange(text string) *domain.ParsedCommand {
	m := productChangeRegex.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	oldQuery := removeWords(m[1], articleWords)
	newQuery := removeWords(m[2], articleWords)
	if oldQuery == "" || newQuery == "" {
		return nil
	}
	return &domain.ParsedCommand{
		Kind:            domain.CommandChangeProduct,
		OldProductQuery: oldQuery,
		NewProductQuery: newQuery,
	}
}

// parseRemove extracts the product named in a removal
func parseRemove(text string) *domain.ParsedCommand {
	query := removeWords(removeWords(text, removeLexicon), removeFiller)
	if query == "" {
		return nil
	}
	return &domain.ParsedCommand{
		Kind:         domain.CommandRemoveItem,
		ProductQuery: query,
	}
}

// parseItems extracts every "<quantity> <product>" fragment of a sale or add
func parseItems(text string, kind domain.CommandKind) *domain.ParsedCommand {
	if kind != domain.CommandAddItems {
		kind = domain.CommandSale
	}

	cleaned := removeWords(text, itemStrip)

	var items []domain.CommandItem
	for _, part := range splitItems(cleaned) {
		if item := parseSingleItem(part); item != nil {
			items = append(items, *item)
		}
	}

	if len(items) == 0 {
		return nil
	}
	return &domain.ParsedCommand{
		Kind:  kind,
		Items: items,
	}
}
