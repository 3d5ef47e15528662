package page

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fake is an in-memory Page backed by canned HTML, used by tests and the
// dry-run mode. Navigate serves whatever Docs maps the url to.
type Fake struct {
	// url -> html document
	Docs map[string]string
	// urls that fail navigation outright
	NavErrors map[string]error
	// status returned on successful navigation, defaults to 200
	Status int

	url string
	doc *goquery.Document
	raw string
}

func (f *Fake) Navigate(ctx context.Context, url string, timeout time.Duration) (int, error) {
	f.url = ""
	f.doc = nil
	f.raw = ""

	if err, ok := f.NavErrors[url]; ok {
		return 0, err
	}
	raw, ok := f.Docs[url]
	if !ok {
		return 0, errors.New("navigation failed: unknown url")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return 0, err
	}
	f.url = url
	f.doc = doc
	f.raw = raw
	if f.Status != 0 {
		return f.Status, nil
	}
	return 200, nil
}

func (f *Fake) Content(ctx context.Context) (string, error) {
	if f.doc == nil {
		return "", errors.New("no document loaded")
	}
	return f.raw, nil
}

func (f *Fake) Query(ctx context.Context, selector string) (Element, bool) {
	if f.doc == nil {
		return nil, false
	}
	sel := f.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return staticElement{sel}, true
}

func (f *Fake) QueryAll(ctx context.Context, selector string) []Element {
	if f.doc == nil {
		return nil
	}
	var out []Element
	f.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, staticElement{sel.First()})
	})
	return out
}

func (f *Fake) WaitFor(ctx context.Context, selectors []string, timeout time.Duration) error {
	for _, s := range selectors {
		if f.doc != nil && f.doc.Find(s).Length() > 0 {
			return nil
		}
	}
	return errors.New("selectors never appeared")
}

func (f *Fake) Evaluate(ctx context.Context, script string) (string, error) {
	return "", ErrScriptsUnsupported
}

func (f *Fake) URL() string {
	return f.url
}
