package availability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyPrecedence(t *testing.T) {
	rules := DefaultRules().Merge(
		[]string{"cannot be shipped to your area"},
		[]string{"ships from our warehouse"},
	)

	testCases := []struct {
		name     string
		sig      Signals
		expected State
	}{
		{
			name:     "blocking wins over everything",
			sig:      Signals{PageText: "Robot Check. In stock. Add to cart.", PriceFound: true},
			expected: StateBlocked,
		},
		{
			name:     "site negative overrides positive in same scan",
			sig:      Signals{PageText: "In stock! Cannot be shipped to your area."},
			expected: StateOutOfStock,
		},
		{
			name:     "out of stock marker overrides stock marker",
			sig:      Signals{HasOutOfStockMarker: true, HasStockMarker: true},
			expected: StateOutOfStock,
		},
		{
			name:     "site positive phrase",
			sig:      Signals{PageText: "Ships from our warehouse in 2 days"},
			expected: StateInStock,
		},
		{
			name:     "structural add to cart marker",
			sig:      Signals{HasStockMarker: true},
			expected: StateInStock,
		},
		{
			name:     "generic negative beats generic positive",
			sig:      Signals{PageText: "add to cart (currently unavailable)"},
			expected: StateOutOfStock,
		},
		{
			name:     "generic positive",
			sig:      Signals{PageText: "Hurry, buy now!"},
			expected: StateInStock,
		},
		{
			name:     "no indicators but price found defaults in stock",
			sig:      Signals{PageText: "some product page", PriceFound: true},
			expected: StateInStock,
		},
		{
			name:     "no indicators and no price is unknown",
			sig:      Signals{PageText: "some product page"},
			expected: StateUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Classify(tc.sig, rules))
		})
	}
}

func TestClassifyBothPhrasesIsOutOfStock(t *testing.T) {
	// a page saying both "in stock" and "sold out" must classify out of
	// stock regardless of phrase order
	rules := DefaultRules()
	for _, text := range []string{
		"in stock ... sold out",
		"sold out ... in stock",
	} {
		require.Equal(t, StateOutOfStock, Classify(Signals{PageText: text}, rules), text)
	}
}

func TestIsBlockedText(t *testing.T) {
	rules := DefaultRules()
	require.True(t, IsBlockedText("Please Verify You Are Human to continue", rules))
	require.True(t, IsBlockedText("checking your browser before accessing example.com", rules))
	require.False(t, IsBlockedText("a normal product page", rules))
}
