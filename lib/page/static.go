package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"

	"pricewatch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

var ErrScriptsUnsupported = errors.New("static pages cannot evaluate scripts")

type ClientOptions struct {
	// overrides the default desktop chrome user agent
	UserAgent string
	// defaults to 30s
	Timeout time.Duration
}

// NewClient builds the shared HTTP client used by static pages: cookie jar,
// cloudflare bypass transport and span instrumentation.
func NewClient(opts ClientOptions) (*resty.Client, error) {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client.SetHeader("user-agent", ua)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "pricewatch.lib.page")

	return client, nil
}

// Static implements Page over plain HTTP fetches. It renders nothing, the
// document it sees is whatever the server returned. One Static is good for
// any number of sequential navigations, it is not safe for concurrent use.
type Static struct {
	client *resty.Client

	url    string
	status int
	body   string
	doc    *goquery.Document
}

func NewStatic(client *resty.Client) *Static {
	return &Static{client: client}
}

func (p *Static) Navigate(ctx context.Context, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.url = ""
	p.doc = nil
	p.body = ""
	p.status = 0

	res, err := p.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return 0, err
	}

	body := res.Body()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return res.StatusCode(), fmt.Errorf("parse document: %w", err)
	}

	p.url = res.RawResponse.Request.URL.String()
	p.status = res.StatusCode()
	p.body = string(body)
	p.doc = doc
	return p.status, nil
}

func (p *Static) Content(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", errors.New("no document loaded")
	}
	return p.body, nil
}

func (p *Static) Query(ctx context.Context, selector string) (Element, bool) {
	if p.doc == nil {
		return nil, false
	}
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return staticElement{sel}, true
}

func (p *Static) QueryAll(ctx context.Context, selector string) []Element {
	if p.doc == nil {
		return nil
	}
	var out []Element
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, staticElement{sel.First()})
	})
	return out
}

// WaitFor on a static page is a presence check, there is nothing to wait
// for once the document is parsed.
func (p *Static) WaitFor(ctx context.Context, selectors []string, timeout time.Duration) error {
	if p.doc == nil {
		return errors.New("no document loaded")
	}
	for _, s := range selectors {
		if p.doc.Find(s).Length() > 0 {
			return nil
		}
	}
	return fmt.Errorf("none of %d selectors present", len(selectors))
}

func (p *Static) Evaluate(ctx context.Context, script string) (string, error) {
	return "", ErrScriptsUnsupported
}

func (p *Static) URL() string {
	return p.url
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

type staticElement struct {
	sel *goquery.Selection
}

func (e staticElement) Text() string {
	var parts []string
	for _, n := range e.sel.Nodes {
		parts = append(parts, nodeText(n))
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	return innerWhitespace.ReplaceAllString(text, " ")
}

func (e staticElement) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}
