package scrape

import (
	"fmt"
	"net/url"
	"time"

	"github.com/miekg/dns"
)

// Preflight resolves a page's host before the browser is pointed at
// it, so a dead target is reported as a DNS problem instead of an
// opaque navigation error.
type Preflight struct {
	server  string
	timeout time.Duration
}

func NewPreflight(server string, timeout time.Duration) *Preflight {
	return &Preflight{server: server, timeout: timeout}
}

// ResolveURL checks that the host of pageURL answers an A query.
func (p *Preflight) ResolveURL(pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}

	c := new(dns.Client)
	c.Timeout = p.timeout

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(u.Hostname()), dns.TypeA)

	r, _, err := c.Exchange(m, p.server)
	if err != nil {
		return fmt.Errorf("DNS query failed: %w", err)
	}
	if r.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("DNS query failed with code: %s", dns.RcodeToString[r.Rcode])
	}
	if len(r.Answer) == 0 {
		return fmt.Errorf("no A records for %s", u.Hostname())
	}
	return nil
}
