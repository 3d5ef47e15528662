package probe

import (
	"context"
	"errors"
	"testing"

	"pricewatch/lib/availability"
	"pricewatch/lib/page"

	"github.com/stretchr/testify/require"
)

type readySolver struct{ ready bool }

func (s readySolver) Ready(ctx context.Context) bool { return s.ready }

func newFake(docs map[string]string) *page.Fake {
	return &page.Fake{Docs: docs}
}

func TestProbeInStock(t *testing.T) {
	const url = "https://www.amazon.com/dp/B0TEST"
	fake := newFake(map[string]string{
		url: `<html><body>
			<span class="a-price"><span class="a-offscreen">$89.99</span></span>
			<div id="add-to-cart-button">Add to Cart</div>
			<p>FREE Shipping on orders over $25</p>
		</body></html>`,
	})

	p := New(Options{})
	result := p.Probe(context.Background(), fake, url)

	require.Equal(t, FailureNone, result.Failure)
	require.True(t, result.HasPrice)
	require.InDelta(t, 89.99, result.Price, 0.001)
	require.True(t, result.InStock)
	require.Equal(t, availability.StateInStock, result.Availability)
	require.Equal(t, "Amazon", result.SupplierName)
	require.True(t, result.HasShipping)
	require.Zero(t, result.ShippingFee)
	require.InDelta(t, 89.99, result.Landed(), 0.001)
}

func TestProbeShippingFee(t *testing.T) {
	const url = "https://shop.example.org/item/1"
	fake := newFake(map[string]string{
		url: `<html><body>
			<span class="price">$40.00</span>
			<div class="add-to-cart">Add</div>
			<p>+ $5.99 shipping</p>
		</body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNone, result.Failure)
	require.True(t, result.HasShipping)
	require.InDelta(t, 5.99, result.ShippingFee, 0.001)
	require.InDelta(t, 45.99, result.Landed(), 0.001)
	require.Equal(t, "Unknown", result.SupplierName)
}

func TestProbeBlocked(t *testing.T) {
	const url = "https://www.walmart.com/ip/99"
	fake := newFake(map[string]string{
		url: `<html><body><h1>Robot or human?</h1><span itemprop="price">$12.00</span></body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureBlocked, result.Failure)
	require.True(t, result.Failure.Blocking())
	require.False(t, result.HasPrice, "error set means price must be absent")
	require.Equal(t, availability.StateBlocked, result.Availability)
}

func TestProbeBlockedWithSolver(t *testing.T) {
	const url = "https://www.walmart.com/ip/99"
	fake := newFake(map[string]string{
		url: `<html><body>please verify you are human</body></html>`,
	})

	result := New(Options{Captcha: readySolver{ready: true}}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureBlockedCaptcha, result.Failure)

	result = New(Options{Captcha: readySolver{ready: false}}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureBlocked, result.Failure)
}

func TestProbeNavigationError(t *testing.T) {
	const url = "https://shop.example.org/item/1"
	fake := &page.Fake{
		NavErrors: map[string]error{url: errors.New("net timeout")},
	}

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNavigation, result.Failure)
	require.False(t, result.HasPrice)
	require.Contains(t, result.Detail, "net timeout")
}

func TestProbePriceNotFoundStopsPipeline(t *testing.T) {
	const url = "https://shop.example.org/item/2"
	fake := newFake(map[string]string{
		url: `<html><body>
			<div class="add-to-cart">Add</div>
			<p>Free shipping on all orders</p>
		</body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailurePriceNotFound, result.Failure)
	// shipping extraction is skipped once the price step fails
	require.False(t, result.HasShipping)
	require.False(t, result.InStock)
}

func TestProbeErrorPage(t *testing.T) {
	const url = "https://shop.example.org/item/3"
	fake := newFake(map[string]string{
		url: `<html><body><h1>404 Page Not Found</h1><span class="price">$9.99</span></body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailurePriceNotFound, result.Failure)
	require.Equal(t, "error page", result.Detail)
}

func TestProbeQuantityFilter(t *testing.T) {
	const url = "https://shop.example.org/item/4"
	fake := newFake(map[string]string{
		url: `<html><body>
			<span class="price">3</span>
			<span class="price">$49.99</span>
			<div class="add-to-cart">Add</div>
		</body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNone, result.Failure)
	require.InDelta(t, 49.99, result.Price, 0.001)
}

func TestProbeQuantityAttributeFilter(t *testing.T) {
	const url = "https://shop.example.org/item/5"
	fake := newFake(map[string]string{
		url: `<html><body>
			<input class="price" name="qty-selector" value="1"/>
			<span class="price">$15.50</span>
			<div class="add-to-cart">Add</div>
		</body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNone, result.Failure)
	require.InDelta(t, 15.50, result.Price, 0.001)
}

func TestProbeNegativePhraseWins(t *testing.T) {
	const url = "https://www.amazon.com/dp/B0TEST2"
	fake := newFake(map[string]string{
		url: `<html><body>
			<span class="a-price"><span class="a-offscreen">$30.00</span></span>
			<div id="add-to-cart-button">Add to Cart</div>
			<div id="availability">This item cannot be shipped to your selected address.</div>
		</body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNone, result.Failure)
	require.True(t, result.HasPrice)
	require.False(t, result.InStock)
	require.Equal(t, availability.StateOutOfStock, result.Availability)
}

func TestProbeSplitPrice(t *testing.T) {
	const url = "https://www.amazon.com/dp/B0TEST3"
	fake := newFake(map[string]string{
		url: `<html><body>
			<span class="a-price-whole">124</span><span class="a-price-fraction">95</span>
			<div id="add-to-cart-button">Add to Cart</div>
		</body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNone, result.Failure)
	require.InDelta(t, 124.95, result.Price, 0.001)
}

func TestProbeContentFallback(t *testing.T) {
	const url = "https://shop.example.org/item/6"
	fake := newFake(map[string]string{
		url: `<html><body><p>Our best offer: $77.25 while stocks last. In stock.</p></body></html>`,
	})

	result := New(Options{}).Probe(context.Background(), fake, url)
	require.Equal(t, FailureNone, result.Failure)
	require.InDelta(t, 77.25, result.Price, 0.001)
	require.True(t, result.InStock)
}
