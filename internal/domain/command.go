package domain

// CommandKind identifies the intent recognized in an utterance
type CommandKind string

const (
	CommandSale          CommandKind = "sale"
	CommandAddItems      CommandKind = "add"
	CommandChangePrice   CommandKind = "change_price"
	CommandChangeProduct CommandKind = "change_product"
	CommandRemoveItem    CommandKind = "remove"
	CommandConfirm       CommandKind = "confirm"
	CommandCancel        CommandKind = "cancel"
)

// CommandItem is one product line requested in a sale or add command
type CommandItem struct {
	ProductQuery string  `json:"product_query"`
	Quantity     float64 `json:"quantity"`
}

// ParsedCommand is the structured form of an utterance.
// Only the fields belonging to Kind are populated:
//   - Sale, AddItems: Items
//   - ChangePrice: ProductQuery, NewPrice
//   - ChangeProduct: OldProductQuery, NewProductQuery
//   - RemoveItem: ProductQuery
//   - Confirm, Cancel: nothing
type ParsedCommand struct {
	Kind            CommandKind   `json:"type"`
	Items           []CommandItem `json:"items,omitempty"`
	ProductQuery    string        `json:"product_query,omitempty"`
	NewPrice        float64       `json:"new_price,omitempty"`
	OldProductQuery string        `json:"old_product_query,omitempty"`
	NewProductQuery string        `json:"new_product_query,omitempty"`
}

// HasItems reports whether the command carries a cart item list
func (c *ParsedCommand) HasItems() bool {
	return c.Kind == CommandSale || c.Kind == CommandAddItems
}

// VoiceCommandRequest is the body accepted by the voice endpoints
type VoiceCommandRequest struct {
	Text string `json:"text" binding:"required"`
}

// DisambiguationRequest carries the user's follow-up to an ambiguous match
type DisambiguationRequest struct {
	Token string `json:"token" binding:"required"`
	Reply string `json:"reply" binding:"required"`
}
