// Package porkbun implements the registrar.Client interface against the
// Porkbun v3 JSON API. Every endpoint is a POST with the credential pair
// embedded in the request body.
package porkbun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar"
)

const defaultBaseURL = "https://api.porkbun.com/api/json/v3"

func init() {
	registrar.Register("porkbun", func(log logr.Logger, settings map[string]string) (registrar.Client, error) {
		return New(log, settings)
	})
}

// Client talks to the Porkbun v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	defaultTTL int
	retry      registrar.RetryPolicy
	limiter    *rate.Limiter
	client     *http.Client
	log        logr.Logger
}

// New creates a Porkbun client from the given settings map.
// Required settings: api_key, secret_api_key.
// Optional settings: base_url, default_ttl (default 600), max_attempts
// (default 3), backoff (default 500ms), rate (requests/sec, default 2),
// burst (default 5).
func New(log logr.Logger, settings map[string]string) (*Client, error) {
	apiKey := settings["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("porkbun: missing required setting 'api_key'")
	}
	secretKey := settings["secret_api_key"]
	if secretKey == "" {
		return nil, fmt.Errorf("porkbun: missing required setting 'secret_api_key'")
	}

	baseURL := settings["base_url"]
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	defaultTTL := 600
	if v := settings["default_ttl"]; v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("porkbun: invalid default_ttl %q: %w", v, err)
		}
		defaultTTL = parsed
	}

	retryPolicy := registrar.DefaultRetryPolicy
	if v := settings["max_attempts"]; v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("porkbun: invalid max_attempts %q: %w", v, err)
		}
		retryPolicy.Attempts = parsed
	}
	if v := settings["backoff"]; v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("porkbun: invalid backoff %q: %w", v, err)
		}
		retryPolicy.Backoff = parsed
	}

	rps := 2.0
	if v := settings["rate"]; v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("porkbun: invalid rate %q", v)
		}
		rps = parsed
	}
	burst := 5
	if v := settings["burst"]; v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("porkbun: invalid burst %q", v)
		}
		burst = parsed
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		defaultTTL: defaultTTL,
		retry:      retryPolicy,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}, nil
}

// envelope is the response framing common to every Porkbun endpoint.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// doRequest executes one POST against the API with the credentials merged
// into the payload, decoding the response into out (which must embed the
// envelope fields).
func (c *Client) doRequest(ctx context.Context, op, path string, payload map[string]any, out any) error {
	body := map[string]any{
		"apikey":       c.apiKey,
		"secretapikey": c.secretKey,
	}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return &registrar.Error{Op: op, Kind: registrar.KindValidation, Message: "marshal request body", Err: err}
	}

	url := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &registrar.Error{Op: op, Kind: registrar.KindValidation, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &registrar.Error{Op: op, Kind: registrar.KindTransient, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &registrar.Error{Op: op, Kind: registrar.KindTransient, Message: "read response", Err: err}
	}

	var env envelope
	if jsonErr := json.Unmarshal(respBody, &env); jsonErr != nil {
		// Not even a JSON envelope; classify on the HTTP status alone.
		return classifyHTTP(op, resp.StatusCode, string(respBody))
	}

	if env.Status == "ERROR" || resp.StatusCode != http.StatusOK {
		return classify(op, resp.StatusCode, env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &registrar.Error{Op: op, Kind: registrar.KindValidation, Message: "decode response", Err: err}
		}
	}
	return nil
}

// call applies the shared rate limit and the retry policy around one
// API request.
func (c *Client) call(ctx context.Context, op, path string, payload map[string]any, out any) error {
	return registrar.Retry(ctx, c.log, c.retry, op, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &registrar.Error{Op: op, Kind: registrar.KindTransient, Message: "rate limiter", Err: err}
		}
		return c.doRequest(ctx, op, path, payload, out)
	})
}

// classify maps a Porkbun error message to the registrar error taxonomy.
func classify(op string, httpStatus int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "api keys"):
		return &registrar.Error{Op: op, Kind: registrar.KindAuth, Message: message}
	case strings.Contains(lower, "not opted in") ||
		strings.Contains(lower, "not enabled for api access"):
		return &registrar.Error{Op: op, Kind: registrar.KindAuth, Message: message}
	case strings.Contains(lower, "not found") ||
		strings.Contains(lower, "could not be found"):
		return &registrar.Error{Op: op, Kind: registrar.KindNotFound, Message: message}
	case httpStatus == http.StatusTooManyRequests || httpStatus >= 500:
		return &registrar.Error{Op: op, Kind: registrar.KindTransient, Message: message}
	default:
		return &registrar.Error{Op: op, Kind: registrar.KindValidation, Message: message}
	}
}

func classifyHTTP(op string, httpStatus int, body string) error {
	msg := fmt.Sprintf("status %d: %s", httpStatus, strings.TrimSpace(body))
	switch {
	case httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden:
		return &registrar.Error{Op: op, Kind: registrar.KindAuth, Message: msg}
	case httpStatus == http.StatusNotFound:
		return &registrar.Error{Op: op, Kind: registrar.KindNotFound, Message: msg}
	case httpStatus == http.StatusTooManyRequests || httpStatus >= 500:
		return &registrar.Error{Op: op, Kind: registrar.KindTransient, Message: msg}
	default:
		return &registrar.Error{Op: op, Kind: registrar.KindValidation, Message: msg}
	}
}

// Ping tests the API connection and credentials.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", "/ping", nil, nil)
}

// ListDomains returns every domain on the account.
func (c *Client) ListDomains(ctx context.Context) ([]registrar.Domain, error) {
	var out struct {
		envelope
		Domains []struct {
			Domain string `json:"domain"`
			Status string `json:"status"`
		} `json:"domains"`
	}
	if err := c.call(ctx, "domain/listAll", "/domain/listAll", nil, &out); err != nil {
		return nil, err
	}
	domains := make([]registrar.Domain, 0, len(out.Domains))
	for _, d := range out.Domains {
		domains = append(domains, registrar.Domain{Name: strings.ToLower(d.Domain), Status: d.Status})
	}
	return domains, nil
}

// GetNameservers returns the current nameservers for a domain.
func (c *Client) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	var out struct {
		envelope
		NS []string `json:"ns"`
	}
	if err := c.call(ctx, "domain/getNs", "/domain/getNs/"+domain, nil, &out); err != nil {
		return nil, err
	}
	return out.NS, nil
}

// UpdateNameservers replaces a domain's nameservers. Empty entries are
// dropped; at least two valid nameservers are required and at most ten
// are sent.
func (c *Client) UpdateNameservers(ctx context.Context, domain string, nameservers []string) error {
	valid := make([]string, 0, len(nameservers))
	for _, ns := range nameservers {
		ns = strings.TrimSpace(ns)
		if ns != "" && strings.Contains(ns, ".") && len(ns) > 3 {
			valid = append(valid, ns)
		}
	}
	if len(valid) < 2 {
		return &registrar.Error{Op: "domain/updateNs", Kind: registrar.KindValidation,
			Message: "at least two nameservers required"}
	}
	if len(valid) > 10 {
		valid = valid[:10]
	}
	return c.call(ctx, "domain/updateNs", "/domain/updateNs/"+domain, map[string]any{"ns": valid}, nil)
}

// apiRecord is the wire shape Porkbun uses for DNS records. Numeric
// fields arrive as strings.
type apiRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
	Prio    string `json:"prio"`
	Notes   string `json:"notes"`
}

// ListRecords returns all DNS records for a domain, with names converted
// from FQDNs to subdomain labels.
func (c *Client) ListRecords(ctx context.Context, domain string) ([]record.Record, error) {
	var out struct {
		envelope
		Records []apiRecord `json:"records"`
	}
	if err := c.call(ctx, "dns/retrieve", "/dns/retrieve/"+domain, nil, &out); err != nil {
		return nil, err
	}

	records := make([]record.Record, 0, len(out.Records))
	for _, ar := range out.Records {
		ttl, _ := strconv.Atoi(ar.TTL)
		prio, _ := strconv.Atoi(ar.Prio)
		records = append(records, record.Record{
			ID:       ar.ID,
			Name:     toLabel(ar.Name, domain),
			Type:     record.Type(ar.Type),
			Content:  ar.Content,
			TTL:      ttl,
			Priority: prio,
			Notes:    ar.Notes,
		})
	}
	return records, nil
}

// CreateRecord creates a DNS record and returns the registrar-assigned id.
func (c *Client) CreateRecord(ctx context.Context, domain string, r record.Record) (string, error) {
	var out struct {
		envelope
		ID json.Number `json:"id"`
	}
	if err := c.call(ctx, "dns/create", "/dns/create/"+domain, c.recordPayload(r), &out); err != nil {
		return "", err
	}
	c.log.V(1).Info("record created", "domain", domain, "name", r.Name, "type", r.Type, "id", out.ID.String())
	return out.ID.String(), nil
}

// UpdateRecord edits an existing DNS record by id.
func (c *Client) UpdateRecord(ctx context.Context, domain, id string, r record.Record) error {
	if id == "" {
		return &registrar.Error{Op: "dns/edit", Kind: registrar.KindNotFound, Message: "record id required"}
	}
	if err := c.call(ctx, "dns/edit", "/dns/edit/"+domain+"/"+id, c.recordPayload(r), nil); err != nil {
		return err
	}
	c.log.V(1).Info("record updated", "domain", domain, "id", id)
	return nil
}

// DeleteRecord deletes a DNS record by id.
func (c *Client) DeleteRecord(ctx context.Context, domain, id string) error {
	if id == "" {
		return &registrar.Error{Op: "dns/delete", Kind: registrar.KindNotFound, Message: "record id required"}
	}
	if err := c.call(ctx, "dns/delete", "/dns/delete/"+domain+"/"+id, nil, nil); err != nil {
		return err
	}
	c.log.V(1).Info("record deleted", "domain", domain, "id", id)
	return nil
}

// recordPayload builds the create/edit request body. TTL and priority are
// sent as strings, matching the API's own representation.
func (c *Client) recordPayload(r record.Record) map[string]any {
	ttl := r.TTL
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	payload := map[string]any{
		"type":    string(r.Type),
		"content": r.Content,
		"ttl":     strconv.Itoa(ttl),
	}
	if r.Name != "" {
		payload["name"] = r.Name
	}
	if r.Type == record.TypeMX || r.Type == record.TypeSRV {
		payload["prio"] = strconv.Itoa(r.Priority)
	}
	if r.Notes != "" {
		payload["notes"] = r.Notes
	}
	return payload
}

// toLabel converts an FQDN from the API into a subdomain label relative
// to domain. The apex maps to the empty label.
func toLabel(fqdn, domain string) string {
	fqdn = strings.TrimSuffix(fqdn, ".")
	if strings.EqualFold(fqdn, domain) {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(fqdn), "."+strings.ToLower(domain)) {
		return fqdn[:len(fqdn)-len(domain)-1]
	}
	return fqdn
}

// DefaultNameservers returns Porkbun's standard nameserver set.
func DefaultNameservers() []string {
	return []string{
		"curitiba.ns.porkbun.com",
		"fortaleza.ns.porkbun.com",
		"maceio.ns.porkbun.com",
		"salvador.ns.porkbun.com",
	}
}

// UsesDefaultNameservers reports whether every entry in ns belongs to
// Porkbun. An empty list reports false.
func UsesDefaultNameservers(ns []string) bool {
	if len(ns) == 0 {
		return false
	}
	for _, n := range ns {
		if !strings.Contains(strings.ToLower(n), "porkbun.com") {
			return false
		}
	}
	return true
}
