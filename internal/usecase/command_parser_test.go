package usecase

import (
	"testing"

	"github.com/quevendi/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *CommandParser {
	return NewCommandParser(zerolog.Nop())
}

func TestParse_Classification(t *testing.T) {
	parser := newTestParser()

	tests := []struct {
		name      string
		utterance string
		want      domain.CommandKind
	}{
		{"bare cancel", "cancelar", domain.CommandCancel},
		{"cancel with punctuation", "¡Anula!", domain.CommandCancel},
		{"delete everything cancels", "borrar todo", domain.CommandCancel},
		{"delete the sale cancels", "elimina la venta", domain.CommandCancel},
		{"confirm", "listo", domain.CommandConfirm},
		{"confirm total", "Total", domain.CommandConfirm},
		{"confirm ok", "ok", domain.CommandConfirm},
		{"add verb", "agrega dos panes", domain.CommandAddItems},
		{"sumale is add not confirm", "sumale un pan", domain.CommandAddItems},
		{"product change", "cambiar coca cola por inca kola", domain.CommandChangeProduct},
		{"price phrase", "arroz a 5 soles", domain.CommandChangePrice},
		{"price keyword", "cambiar precio café a 5 soles", domain.CommandChangePrice},
		{"change verb with bare price", "modificar precio leche 6", domain.CommandChangePrice},
		{"remove", "quitar el pan", domain.CommandRemoveItem},
		{"remove everything cancels", "quita todo", domain.CommandCancel},
		{"remove the order cancels", "saca el pedido", domain.CommandCancel},
		{"explicit removal beats cancel", "eliminar el arroz", domain.CommandRemoveItem},
		{"sale default", "dos panes y un café", domain.CommandSale},
		{"sale verb", "vende tres panes", domain.CommandSale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := parser.Parse(tt.utterance)
			require.NotNil(t, cmd, "Parse(%q) returned nil", tt.utterance)
			assert.Equal(t, tt.want, cmd.Kind)
		})
	}
}

func TestParse_Unparseable(t *testing.T) {
	parser := newTestParser()

	tests := []struct {
		name      string
		utterance string
	}{
		{"empty", ""},
		{"only spaces", "   "},
		{"only punctuation", "¿?"},
		{"quantity without product", "dos"},
		{"change verb without pattern", "cambia el arroz"},
		{"remove verb without product", "quitar el"},
		{"zero price", "arroz a 0 soles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, parser.Parse(tt.utterance))
		})
	}
}

func TestParse_Items(t *testing.T) {
	parser := newTestParser()

	tests := []struct {
		name      string
		utterance string
		want      []domain.CommandItem
	}{
		{
			name:      "default quantity",
			utterance: "café",
			want:      []domain.CommandItem{{ProductQuery: "café", Quantity: 1}},
		},
		{
			name:      "multi item split",
			utterance: "dos panes y un café",
			want: []domain.CommandItem{
				{ProductQuery: "panes", Quantity: 2},
				{ProductQuery: "café", Quantity: 1},
			},
		},
		{
			name:      "fraction",
			utterance: "medio kilo de azúcar",
			want:      []domain.CommandItem{{ProductQuery: "azúcar", Quantity: 0.5}},
		},
		{
			name:      "compound quantity is not split",
			utterance: "kilo y medio de arroz",
			want:      []domain.CommandItem{{ProductQuery: "arroz", Quantity: 1.5}},
		},
		{
			name:      "compound number word",
			utterance: "dos y medio kilos de papa",
			want:      []domain.CommandItem{{ProductQuery: "papa", Quantity: 2.5}},
		},
		{
			name:      "decimal digits",
			utterance: "2.5 kilos de arroz",
			want:      []domain.CommandItem{{ProductQuery: "arroz", Quantity: 2.5}},
		},
		{
			name:      "comma separated",
			utterance: "tres panes, una leche",
			want: []domain.CommandItem{
				{ProductQuery: "panes", Quantity: 3},
				{ProductQuery: "leche", Quantity: 1},
			},
		},
		{
			name:      "add strips verb",
			utterance: "agrégale un cuarto de queso",
			want:      []domain.CommandItem{{ProductQuery: "queso", Quantity: 0.25}},
		},
		{
			name:      "unparseable part is skipped",
			utterance: "dos inca kola y tres",
			want:      []domain.CommandItem{{ProductQuery: "inca kola", Quantity: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := parser.Parse(tt.utterance)
			require.NotNil(t, cmd)
			assert.True(t, cmd.HasItems())
			assert.Equal(t, tt.want, cmd.Items)
		})
	}
}

func TestParse_PriceChange(t *testing.T) {
	parser := newTestParser()

	tests := []struct {
		utterance string
		query     string
		price     float64
	}{
		{"cambiar precio café a 5 soles", "café", 5},
		{"precio del arroz a 4.50 soles", "arroz", 4.5},
		{"arroz a 5 soles", "arroz", 5},
		{"cambia la leche a 6 soles", "leche", 6},
		{"modificar precio leche 6", "leche", 6},
		{"cambiar precio del café a 4,50 soles", "café", 4.5},
		{"arroz a 3,20 soles", "arroz", 3.2},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			cmd := parser.Parse(tt.utterance)
			require.NotNil(t, cmd)
			assert.Equal(t, domain.CommandChangePrice, cmd.Kind)
			assert.Equal(t, tt.query, cmd.ProductQuery)
			assert.Equal(t, tt.price, cmd.NewPrice)
		})
	}
}

func TestParse_ProductChange(t *testing.T) {
	parser := newTestParser()

	cmd := parser.Parse("Cambiar la coca cola por una inca kola")
	require.NotNil(t, cmd)
	assert.Equal(t, domain.CommandChangeProduct, cmd.Kind)
	assert.Equal(t, "coca cola", cmd.OldProductQuery)
	assert.Equal(t, "inca kola", cmd.NewProductQuery)
}

func TestParse_Remove(t *testing.T) {
	parser := newTestParser()

	tests := []struct {
		utterance string
		query     string
	}{
		{"quitar el pan", "pan"},
		{"saca la leche gloria", "leche gloria"},
		{"eliminar el arroz", "arroz"},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			cmd := parser.Parse(tt.utterance)
			require.NotNil(t, cmd)
			assert.Equal(t, domain.CommandRemoveItem, cmd.Kind)
			assert.Equal(t, tt.query, cmd.ProductQuery)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	parser := newTestParser()

	first := parser.Parse("dos panes y medio kilo de azúcar")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, parser.Parse("dos panes y medio kilo de azúcar"))
	}
}
