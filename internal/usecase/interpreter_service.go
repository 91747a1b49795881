package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quevendi/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const pendingKeyPrefix = "pending:"

// InterpreterServiceConfig holds configuration for the interpreter service
type InterpreterServiceConfig struct {
	PendingTTL time.Duration
}

// InterpreterService turns utterances into intents resolved against a
// store catalog and runs the two-step disambiguation dialogue.
// Pending choices live in the cache under a token the caller sends back.
type InterpreterService struct {
	parser     *CommandParser
	matcher    *MatchingService
	catalog    domain.CatalogRepository
	cache      domain.CacheRepository
	pendingTTL time.Duration
	logger     zerolog.Logger
	newToken   func() string
	now        func() time.Time
}

// NewInterpreterService creates a new interpreter service with dependencies
func NewInterpreterService(
	parser *CommandParser,
	matcher *MatchingService,
	catalog domain.CatalogRepository,
	cache domain.CacheRepository,
	config InterpreterServiceConfig,
	logger zerolog.Logger,
) *InterpreterService {
	ttl := config.PendingTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &InterpreterService{
		parser:     parser,
		matcher:    matcher,
		catalog:    catalog,
		cache:      cache,
		pendingTTL: ttl,
		logger:     logger.With().Str("component", "interpreter").Logger(),
		newToken:   func() string { return uuid.NewString() },
		now:        time.Now,
	}
}

// Interpret parses an utterance and resolves every product it mentions.
// Flow: parse -> load store catalog -> resolve per command kind -> stash ambiguities
func (s *InterpreterService) Interpret(ctx context.Context, storeID, text string) (*domain.Interpretation, error) {
	if storeID == "" || strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidRequest
	}

	cmd := s.parser.Parse(text)
	if cmd == nil {
		return nil, domain.ErrUnparseableCommand
	}

	switch cmd.Kind {
	case domain.CommandCancel:
		return &domain.Interpretation{Kind: cmd.Kind, Message: "Operación cancelada"}, nil
	case domain.CommandConfirm:
		return &domain.Interpretation{Kind: cmd.Kind, Message: "Venta confirmada"}, nil
	}

	products, err := s.catalog.ProductsByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load catalog for store %s: %w", storeID, err)
	}

	interp := &domain.Interpretation{Kind: cmd.Kind}

	switch cmd.Kind {
	case domain.CommandRemoveItem:
		err = s.interpretRemove(ctx, storeID, cmd, products, interp)
	case domain.CommandChangePrice:
		err = s.interpretPriceChange(ctx, storeID, cmd, products, interp)
	case domain.CommandChangeProduct:
		err = s.interpretProductChange(ctx, storeID, cmd, products, interp)
	default:
		err = s.interpretItems(ctx, storeID, cmd, products, interp)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("store_id", storeID).Str("type", string(interp.Kind)).
		Int("items", len(interp.Lines)).Int("ambiguous", len(interp.Ambiguities)).
		Int("not_found", len(interp.NotFound)).Msg("interpreted command")
	return interp, nil
}

func (s *InterpreterService) interpretRemove(
	ctx context.Context, storeID string, cmd *domain.ParsedCommand,
	products []domain.Product, interp *domain.Interpretation,
) error {
	result := s.matcher.Resolve(cmd.ProductQuery, products)
	switch result.Outcome {
	case domain.MatchFound:
		opt := result.Product.Option()
		interp.Product = &opt
		interp.Message = fmt.Sprintf("Eliminar %s del carrito", opt.Name)
	case domain.MatchAmbiguous:
		return s.addAmbiguity(ctx, interp, &domain.PendingDisambiguation{
			StoreID:    storeID,
			Kind:       cmd.Kind,
			Role:       domain.RoleRemove,
			Query:      cmd.ProductQuery,
			Candidates: result.CandidateProducts(),
		})
	default:
		addNotFound(interp, cmd.ProductQuery)
	}
	return nil
}

func (s *InterpreterService) interpretPriceChange(
	ctx context.Context, storeID string, cmd *domain.ParsedCommand,
	products []domain.Product, interp *domain.Interpretation,
) error {
	interp.NewPrice = cmd.NewPrice

	result := s.matcher.Resolve(cmd.ProductQuery, products)
	switch result.Outcome {
	case domain.MatchFound:
		opt := result.Product.Option()
		interp.Product = &opt
		interp.Message = priceChangeMessage(opt.Name, cmd.NewPrice)
	case domain.MatchAmbiguous:
		return s.addAmbiguity(ctx, interp, &domain.PendingDisambiguation{
			StoreID:    storeID,
			Kind:       cmd.Kind,
			Role:       domain.RolePrice,
			Query:      cmd.ProductQuery,
			NewPrice:   cmd.NewPrice,
			Candidates: result.CandidateProducts(),
		})
	default:
		addNotFound(interp, cmd.ProductQuery)
	}
	return nil
}

func (s *InterpreterService) interpretProductChange(
	ctx context.Context, storeID string, cmd *domain.ParsedCommand,
	products []domain.Product, interp *domain.Interpretation,
) error {
	result := s.matcher.Resolve(cmd.OldProductQuery, products)
	switch result.Outcome {
	case domain.MatchFound:
		return s.resolveReplacement(ctx, storeID, result.Product.Option(), cmd.NewProductQuery, products, interp)
	case domain.MatchAmbiguous:
		return s.addAmbiguity(ctx, interp, &domain.PendingDisambiguation{
			StoreID:         storeID,
			Kind:            cmd.Kind,
			Role:            domain.RoleChangeOld,
			Query:           cmd.OldProductQuery,
			NewProductQuery: cmd.NewProductQuery,
			Candidates:      result.CandidateProducts(),
		})
	default:
		addNotFound(interp, cmd.OldProductQuery)
	}
	return nil
}

// resolveReplacement resolves the new product of a swap once the old one is known
func (s *InterpreterService) resolveReplacement(
	ctx context.Context, storeID string, old domain.ProductOption, query string,
	products []domain.Product, interp *domain.Interpretation,
) error {
	interp.OldProduct = &old

	result := s.matcher.Resolve(query, products)
	switch result.Outcome {
	case domain.MatchFound:
		opt := result.Product.Option()
		interp.NewProduct = &opt
		interp.Message = fmt.Sprintf("Cambiar %s por %s", old.Name, opt.Name)
	case domain.MatchAmbiguous:
		return s.addAmbiguity(ctx, interp, &domain.PendingDisambiguation{
			StoreID:    storeID,
			Kind:       domain.CommandChangeProduct,
			Role:       domain.RoleChangeNew,
			Query:      query,
			OldProduct: &old,
			Candidates: result.CandidateProducts(),
		})
	default:
		addNotFound(interp, query)
	}
	return nil
}

func (s *InterpreterService) interpretItems(
	ctx context.Context, storeID string, cmd *domain.ParsedCommand,
	products []domain.Product, interp *domain.Interpretation,
) error {
	for _, item := range cmd.Items {
		result := s.matcher.Resolve(item.ProductQuery, products)
		switch result.Outcome {
		case domain.MatchFound:
			addLine(interp, *result.Product, item.Quantity)
		case domain.MatchAmbiguous:
			err := s.addAmbiguity(ctx, interp, &domain.PendingDisambiguation{
				StoreID:    storeID,
				Kind:       cmd.Kind,
				Role:       domain.RoleItem,
				Query:      item.ProductQuery,
				Quantity:   item.Quantity,
				Candidates: result.CandidateProducts(),
			})
			if err != nil {
				return err
			}
		default:
			addNotFound(interp, item.ProductQuery)
		}
	}

	switch {
	case len(interp.Ambiguities) > 0:
		interp.Message = "Hay varios productos que coinciden. ¿Cuál quieres?"
	case len(interp.Lines) == 0:
		interp.Message = "No se encontraron: " + strings.Join(interp.NotFound, ", ")
	default:
		interp.Message = ""
		if len(interp.NotFound) > 0 {
			interp.Warnings = append(interp.Warnings, "No se encontraron: "+strings.Join(interp.NotFound, ", "))
		}
	}
	return nil
}

// Disambiguate applies the user's follow-up reply to a pending choice.
// The choice is taken out of the cache before the reply is applied, so a
// token completes at most once even across instances sharing Redis.
// A reply that still matches several candidates yields a new, narrower
// pending choice; a reply matching none puts the original one back.
func (s *InterpreterService) Disambiguate(ctx context.Context, token, reply string) (*domain.Interpretation, error) {
	if token == "" || strings.TrimSpace(reply) == "" {
		return nil, domain.ErrInvalidRequest
	}

	pending, err := s.takePending(ctx, token)
	if err != nil {
		return nil, err
	}

	result := s.matcher.Select(reply, pending.Candidates)
	switch result.Outcome {
	case domain.MatchNotFound:
		if err := s.restorePending(ctx, pending); err != nil {
			return nil, err
		}
		return nil, domain.ErrSelectionNotUnderstood
	case domain.MatchAmbiguous:
		narrowed := *pending
		narrowed.Candidates = result.CandidateProducts()
		interp := &domain.Interpretation{Kind: pending.Kind, NewPrice: pending.NewPrice, OldProduct: pending.OldProduct}
		if err := s.addAmbiguity(ctx, interp, &narrowed); err != nil {
			return nil, err
		}
		return interp, nil
	}

	s.logger.Debug().Str("token", token).Str("product", result.Product.Name).Msg("disambiguated")
	return s.complete(ctx, pending, *result.Product)
}

// complete builds the interpretation for a pending choice once its product is known
func (s *InterpreterService) complete(
	ctx context.Context, pending *domain.PendingDisambiguation, product domain.Product,
) (*domain.Interpretation, error) {
	interp := &domain.Interpretation{Kind: pending.Kind}
	opt := product.Option()

	switch pending.Role {
	case domain.RoleItem:
		addLine(interp, product, pending.Quantity)
	case domain.RoleRemove:
		interp.Product = &opt
		interp.Message = fmt.Sprintf("Eliminar %s del carrito", opt.Name)
	case domain.RolePrice:
		interp.Product = &opt
		interp.NewPrice = pending.NewPrice
		interp.Message = priceChangeMessage(opt.Name, pending.NewPrice)
	case domain.RoleChangeOld:
		products, err := s.catalog.ProductsByStore(ctx, pending.StoreID)
		if err != nil {
			return nil, fmt.Errorf("load catalog for store %s: %w", pending.StoreID, err)
		}
		if err := s.resolveReplacement(ctx, pending.StoreID, opt, pending.NewProductQuery, products, interp); err != nil {
			return nil, err
		}
	case domain.RoleChangeNew:
		interp.OldProduct = pending.OldProduct
		interp.NewProduct = &opt
		if pending.OldProduct != nil {
			interp.Message = fmt.Sprintf("Cambiar %s por %s", pending.OldProduct.Name, opt.Name)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRequest, pending.Role)
	}

	return interp, nil
}

// addAmbiguity stores a pending choice and exposes it on the interpretation
func (s *InterpreterService) addAmbiguity(
	ctx context.Context, interp *domain.Interpretation, pending *domain.PendingDisambiguation,
) error {
	pending.Token = s.newToken()
	pending.CreatedAt = s.now()

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending disambiguation: %w", err)
	}
	if err := s.cache.Set(ctx, pendingKeyPrefix+pending.Token, data, s.pendingTTL); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	options := make([]domain.ProductOption, 0, len(pending.Candidates))
	for _, p := range pending.Candidates {
		options = append(options, p.Option())
	}

	interp.Ambiguities = append(interp.Ambiguities, domain.Ambiguity{
		Token:    pending.Token,
		Role:     pending.Role,
		Query:    pending.Query,
		Quantity: pending.Quantity,
		Options:  options,
		Message:  ambiguityMessage(pending.Role, pending.Query),
	})
	return nil
}

func (s *InterpreterService) takePending(ctx context.Context, token string) (*domain.PendingDisambiguation, error) {
	data, err := s.cache.GetDel(ctx, pendingKeyPrefix+token)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrPendingNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	var pending domain.PendingDisambiguation
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("decode pending disambiguation: %w", err)
	}
	return &pending, nil
}

// restorePending puts a taken choice back for the rest of its lifetime
func (s *InterpreterService) restorePending(ctx context.Context, pending *domain.PendingDisambiguation) error {
	ttl := s.pendingTTL - s.now().Sub(pending.CreatedAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending disambiguation: %w", err)
	}
	if err := s.cache.Set(ctx, pendingKeyPrefix+pending.Token, data, ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// addLine appends a cart line, updates the total and warns on short stock.
// Stock is only reported here; enforcing it belongs to the cart.
func addLine(interp *domain.Interpretation, product domain.Product, quantity float64) {
	subtotal := decimal.NewFromFloat(product.SalePrice).
		Mul(decimal.NewFromFloat(quantity)).
		Round(2)

	interp.Lines = append(interp.Lines, domain.CartLine{
		Product:  product.Option(),
		Quantity: quantity,
		Subtotal: subtotal,
	})
	interp.Total = interp.Total.Add(subtotal)

	if float64(product.Stock) < quantity {
		interp.Warnings = append(interp.Warnings,
			fmt.Sprintf("%s: stock insuficiente, solo hay %d", product.Name, product.Stock))
	}
}

func addNotFound(interp *domain.Interpretation, query string) {
	interp.NotFound = append(interp.NotFound, query)
	interp.Message = "No se encontró: " + query
}

func priceChangeMessage(name string, price float64) string {
	return fmt.Sprintf("Cambiar precio de %s a S/ %s", name, decimal.NewFromFloat(price).StringFixed(2))
}

func ambiguityMessage(role domain.DisambiguationRole, query string) string {
	switch role {
	case domain.RoleRemove:
		return fmt.Sprintf("¿Cuál %s quieres eliminar?", query)
	case domain.RolePrice:
		return fmt.Sprintf("¿A cuál %s cambiar el precio?", query)
	case domain.RoleChangeOld:
		return fmt.Sprintf("¿Cuál %s quieres cambiar?", query)
	case domain.RoleChangeNew:
		return fmt.Sprintf("¿Por cuál %s cambiar?", query)
	default:
		return fmt.Sprintf("¿Cuál %s quieres?", query)
	}
}
