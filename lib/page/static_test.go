package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const productHTML = `<!DOCTYPE html>
<html><body>
	<h1 id="title">VIVO Electric Standing Desk</h1>
	<span class="price">$ 189.99</span>
	<button class="add-to-cart" data-sku="DESK-E-1">Add to Cart</button>
</body></html>`

func TestStaticPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productHTML))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{Timeout: time.Second * 5})
	require.NoError(t, err)

	p := NewStatic(client)
	ctx := context.Background()

	status, err := p.Navigate(ctx, server.URL, time.Second*5)
	require.NoError(t, err)
	require.Equal(t, 200, status)

	content, err := p.Content(ctx)
	require.NoError(t, err)
	require.Contains(t, content, "Standing Desk")

	el, ok := p.Query(ctx, ".price")
	require.True(t, ok)
	require.Equal(t, "$ 189.99", el.Text())

	el, ok = p.Query(ctx, ".add-to-cart")
	require.True(t, ok)
	require.Equal(t, "DESK-E-1", el.Attr("data-sku"))

	_, ok = p.Query(ctx, ".does-not-exist")
	require.False(t, ok)

	require.NoError(t, p.WaitFor(ctx, []string{".nope", ".price"}, time.Second))
	require.Error(t, p.WaitFor(ctx, []string{".nope"}, time.Second))

	_, err = p.Evaluate(ctx, "document.title")
	require.ErrorIs(t, err, ErrScriptsUnsupported)
}

func TestStaticPageNavigateError(t *testing.T) {
	client, err := NewClient(ClientOptions{Timeout: time.Second})
	require.NoError(t, err)

	p := NewStatic(client)
	_, err = p.Navigate(context.Background(), "http://127.0.0.1:1/none", time.Second)
	require.Error(t, err)

	_, err = p.Content(context.Background())
	require.Error(t, err)
}
