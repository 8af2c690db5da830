package spfchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// maxHops caps how many include: references the verifier follows from the
// apex before declaring a loop.
const maxHops = 15

// Resolver answers TXT lookups. The production implementation queries a
// real DNS server; tests inject a map-backed fake.
type Resolver interface {
	LookupTXT(ctx context.Context, fqdn string) ([]string, error)
}

// DNSResolver resolves against a specific DNS server ("host:port").
type DNSResolver struct {
	Server string
	client dns.Client
}

// NewDNSResolver creates a resolver for the given server, defaulting to
// Cloudflare's public resolver.
func NewDNSResolver(server string) *DNSResolver {
	if server == "" {
		server = "1.1.1.1:53"
	}
	return &DNSResolver{Server: server}
}

// LookupTXT implements Resolver against r.Server.
func (r *DNSResolver) LookupTXT(ctx context.Context, fqdn string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(fqdn), dns.TypeTXT)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.Server)
	if err != nil {
		return nil, fmt.Errorf("spfchain: TXT lookup %s: %w", fqdn, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("spfchain: TXT lookup %s: rcode %s", fqdn, dns.RcodeToString[resp.Rcode])
	}

	var out []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	return out, nil
}

// VerifyResult reports how far a published chain resolves.
type VerifyResult struct {
	Hops         []string // FQDNs visited after the apex, in order
	FinalBody    string   // TXT body of the terminal hop
	ReachedFinal bool     // terminal body contains the expected directive
	BrokenAt     string   // FQDN where resolution stopped, empty when complete
	BrokenReason string
}

// Verifier walks a published SPF chain over DNS.
type Verifier struct {
	Resolver Resolver
}

// Verify follows include: references from the domain's apex SPF record
// until it reaches a body without an in-domain include, then checks that
// body against finalDirective.
func (v *Verifier) Verify(ctx context.Context, domain, finalDirective string) (VerifyResult, error) {
	var res VerifyResult

	body, err := v.spfBody(ctx, domain)
	if err != nil {
		res.BrokenAt = domain
		res.BrokenReason = err.Error()
		return res, err
	}

	current := body
	for hop := 0; hop < maxHops; hop++ {
		next, ok := includeTarget(current, domain)
		if !ok {
			res.FinalBody = current
			res.ReachedFinal = strings.Contains(current, strings.TrimSpace(finalDirective)) ||
				current == strings.TrimSpace(finalDirective)
			return res, nil
		}

		res.Hops = append(res.Hops, next)
		current, err = v.spfBody(ctx, next)
		if err != nil {
			res.BrokenAt = next
			res.BrokenReason = err.Error()
			return res, err
		}
	}

	res.BrokenAt = domain
	res.BrokenReason = fmt.Sprintf("more than %d hops", maxHops)
	return res, fmt.Errorf("spfchain: verify %s: %s", domain, res.BrokenReason)
}

// spfBody returns the first SPF-like TXT record at fqdn.
func (v *Verifier) spfBody(ctx context.Context, fqdn string) (string, error) {
	records, err := v.Resolver.LookupTXT(ctx, fqdn)
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if SPFLike(r) {
			return strings.TrimSpace(r), nil
		}
	}
	return "", fmt.Errorf("spfchain: no SPF record at %s", fqdn)
}

// includeTarget extracts the include: target from an SPF body when it
// points inside domain. Off-domain includes terminate the walk: they
// belong to the caller-supplied final directive.
func includeTarget(body, domain string) (string, bool) {
	for _, field := range strings.Fields(body) {
		target, found := strings.CutPrefix(field, "include:")
		if !found {
			continue
		}
		if strings.HasSuffix(strings.ToLower(target), "."+strings.ToLower(domain)) {
			return target, true
		}
	}
	return "", false
}
