package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisambiguationRole tells which slot of a command an ambiguous match belongs to
type DisambiguationRole string

const (
	RoleItem      DisambiguationRole = "item"
	RoleRemove    DisambiguationRole = "remove"
	RolePrice     DisambiguationRole = "price"
	RoleChangeOld DisambiguationRole = "change_old"
	RoleChangeNew DisambiguationRole = "change_new"
)

// CartLine is a resolved product with its requested quantity
type CartLine struct {
	Product  ProductOption   `json:"product"`
	Quantity float64         `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Ambiguity asks the user to pick among close candidates.
// Token must be sent back together with the user's reply.
type Ambiguity struct {
	Token    string             `json:"token"`
	Role     DisambiguationRole `json:"role"`
	Query    string             `json:"query"`
	Quantity float64            `json:"quantity,omitempty"`
	Options  []ProductOption    `json:"options"`
	Message  string             `json:"message"`
}

// Interpretation is an utterance resolved against a store catalog,
// ready to be executed by the cart logic.
type Interpretation struct {
	Kind        CommandKind     `json:"type"`
	Lines       []CartLine      `json:"items,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Product     *ProductOption  `json:"product,omitempty"`
	NewPrice    float64         `json:"new_price,omitempty"`
	OldProduct  *ProductOption  `json:"old_product,omitempty"`
	NewProduct  *ProductOption  `json:"new_product,omitempty"`
	Ambiguities []Ambiguity     `json:"ambiguities,omitempty"`
	NotFound    []string        `json:"not_found,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// PendingDisambiguation is the short-lived conversational state kept between
// an ambiguous answer and the user's follow-up. It is addressed by Token.
type PendingDisambiguation struct {
	Token           string             `json:"token"`
	StoreID         string             `json:"store_id"`
	Kind            CommandKind        `json:"kind"`
	Role            DisambiguationRole `json:"role"`
	Query           string             `json:"query"`
	Quantity        float64            `json:"quantity,omitempty"`
	NewPrice        float64            `json:"new_price,omitempty"`
	NewProductQuery string             `json:"new_product_query,omitempty"`
	OldProduct      *ProductOption     `json:"old_product,omitempty"`
	Candidates      []Product          `json:"candidates"`
	CreatedAt       time.Time          `json:"created_at"`
}
