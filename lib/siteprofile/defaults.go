package siteprofile

// Default returns the registry that ships with the binary, covering the
// suppliers the sheet has historically pointed at. A profile file, when
// present, replaces this wholesale.
func Default() *Registry {
	r, err := NewRegistry(defaultFile())
	if err != nil {
		// the built-in table is validated by tests, a failure here is a
		// programming error
		panic(err)
	}
	return r
}

func defaultFile() File {
	return File{
		Profiles: []Profile{
			{
				Name:  "Amazon",
				Hosts: []string{"amazon.com"},
				PriceSelectors: []Selector{
					{Query: "span.a-price span.a-offscreen"},
					{Query: "#corePrice_feature_div span.a-offscreen"},
					{Query: "input[name*='customerVisiblePrice']", Attr: "value"},
					{Query: "#priceblock_ourprice"},
					{Query: "#priceblock_dealprice"},
				},
				SplitPrice: &SplitPriceSelectors{
					Whole:    "span.a-price-whole",
					Fraction: "span.a-price-fraction",
				},
				InStockSelectors: []string{"#add-to-cart-button", "#buy-now-button"},
				OutOfStockSelectors: []string{
					"#outOfStock",
					"#availability span.a-color-error",
				},
				NegativePhrases: []string{
					"temporarily out of stock",
					"not deliverable",
					"cannot be shipped",
					"can't be shipped",
					"delivery not available",
					"choose a different delivery location",
					"select a different delivery location",
					"item cannot be shipped to your",
					"this item cannot be shipped",
					"unavailable in your area",
					"not available in your area",
				},
				PositivePhrases: []string{"ships from"},
			},
			{
				Name:  "Walmart",
				Hosts: []string{"walmart.com"},
				PriceSelectors: []Selector{
					{Query: "span[itemprop='price']"},
					{Query: "span[data-automation-id='product-price']"},
				},
				InStockSelectors:    []string{"button[data-automation-id='atc']"},
				OutOfStockSelectors: []string{"div[data-testid='oos-label']"},
			},
			{
				Name:  "Kohls",
				Hosts: []string{"kohls.com"},
				PriceSelectors: []Selector{
					{Query: "span.pdpprice-row2"},
					{Query: ".main_price"},
				},
				InStockSelectors:    []string{"#addtobag"},
				OutOfStockSelectors: []string{".out-of-stock-text"},
			},
			{
				Name:  "Vivo",
				Hosts: []string{"vivo-us.com"},
				PriceSelectors: []Selector{
					{Query: "span.price-item--regular"},
					{Query: "span.price-item"},
				},
				InStockSelectors:    []string{"button[name='add']"},
				OutOfStockSelectors: []string{"button.sold-out"},
			},
			{
				Name:  "Wayfair",
				Hosts: []string{"wayfair.com"},
				PriceSelectors: []Selector{
					{Query: "span[data-test-id='PriceDisplay']"},
					{Query: ".SFPrice"},
				},
				InStockSelectors: []string{"button[data-test-id='add-to-cart-button']"},
				NegativePhrases:  []string{"cannot be shipped to your area"},
			},
			{
				Name:  "Vevor",
				Hosts: []string{"vevor.com"},
				PriceSelectors: []Selector{
					{Query: ".product-price"},
					{Query: "[itemprop='price']", Attr: "content"},
				},
				OutOfStockSelectors: []string{".discontinue_gxC7", ".dt_txt_cqUZ"},
				NegativePhrases:     []string{"discontinued"},
			},
		},
		Generic: Profile{
			Name: "",
			PriceSelectors: []Selector{
				{Query: "[itemprop='price']"},
				{Query: ".price"},
				{Query: ".product-price"},
				{Query: ".price-current"},
				{Query: "[class*='price']"},
			},
			InStockSelectors:    []string{".add-to-cart", ".in-stock", "button[name='add']"},
			OutOfStockSelectors: []string{".out-of-stock", ".unavailable", ".sold-out"},
		},
	}
}
