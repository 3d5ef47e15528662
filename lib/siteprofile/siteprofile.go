// Package siteprofile maps supplier hosts to scraping profiles: ordered
// price selectors, stock selectors and availability phrases. Profiles are
// plain data loaded from configuration and validated up front, so a typo in
// a selector file fails the run at startup instead of silently falling back
// per page.
package siteprofile

import (
	"fmt"
	"net/url"
	"strings"

	"pricewatch/lib/configutil"
)

// Selector describes one place a value may live on a page. When Attr is
// empty the element's text is used, otherwise the named attribute.
type Selector struct {
	Query string `json:"query"`
	Attr  string `json:"attr,omitempty"`
}

type Profile struct {
	// supplier display name, e.g. "Amazon"
	Name string `json:"name"`
	// host suffixes this profile claims, e.g. "amazon.com"
	Hosts []string `json:"hosts"`
	// tried in order, first hit wins
	PriceSelectors      []Selector `json:"price_selectors"`
	InStockSelectors    []string   `json:"in_stock_selectors"`
	OutOfStockSelectors []string   `json:"out_of_stock_selectors"`
	NegativePhrases     []string   `json:"negative_phrases"`
	PositivePhrases     []string   `json:"positive_phrases"`
	// prices occasionally render as separate whole/fraction nodes
	SplitPrice *SplitPriceSelectors `json:"split_price,omitempty"`
}

type SplitPriceSelectors struct {
	Whole    string `json:"whole"`
	Fraction string `json:"fraction"`
}

// File is the on-disk shape of a profile configuration.
type File struct {
	Profiles []Profile `json:"profiles"`
	Generic  Profile   `json:"generic"`
}

type Registry struct {
	profiles []Profile
	generic  Profile
}

// NewRegistry validates profiles and builds a host lookup. Validation is
// strict: a profile without a name, without hosts, or with an empty selector
// query is a configuration bug, not something to tolerate at scrape time.
func NewRegistry(file File) (*Registry, error) {
	seen := map[string]string{}
	for i, p := range file.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d: missing name", i)
		}
		if len(p.Hosts) == 0 {
			return nil, fmt.Errorf("profile %q: no hosts", p.Name)
		}
		for _, h := range p.Hosts {
			h = strings.ToLower(h)
			if h == "" {
				return nil, fmt.Errorf("profile %q: empty host", p.Name)
			}
			if prev, ok := seen[h]; ok {
				return nil, fmt.Errorf("host %q claimed by both %q and %q", h, prev, p.Name)
			}
			seen[h] = p.Name
		}
		if err := validateSelectors(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	if err := validateSelectors(file.Generic); err != nil {
		return nil, fmt.Errorf("generic profile: %w", err)
	}
	if len(file.Generic.PriceSelectors) == 0 {
		return nil, fmt.Errorf("generic profile: no price selectors")
	}
	return &Registry{profiles: file.Profiles, generic: file.Generic}, nil
}

func validateSelectors(p Profile) error {
	for _, s := range p.PriceSelectors {
		if strings.TrimSpace(s.Query) == "" {
			return fmt.Errorf("empty price selector query")
		}
	}
	for _, s := range append(append([]string{}, p.InStockSelectors...), p.OutOfStockSelectors...) {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("empty stock selector")
		}
	}
	return nil
}

// Load reads a profile file through configutil (json5 with local overrides)
// and compiles a registry from it.
func Load(path string) (*Registry, error) {
	file, err := configutil.ReadConfig[File](path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(file)
}

// Profile returns the site profile for a listing URL, falling back to the
// generic profile for unknown hosts.
func (r *Registry) Profile(rawURL string) Profile {
	host := hostOf(rawURL)
	if host == "" {
		return r.generic
	}
	for _, p := range r.profiles {
		for _, h := range p.Hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p
			}
		}
	}
	return r.generic
}

// Generic returns the fallback profile used after a site profile's own
// selectors come up empty.
func (r *Registry) Generic() Profile {
	return r.generic
}

// SupplierName derives a display name from a listing URL host. Unknown
// hosts are reported as "Unknown".
func (r *Registry) SupplierName(rawURL string) string {
	p := r.Profile(rawURL)
	if p.Name == "" {
		return "Unknown"
	}
	return p.Name
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}
