package record

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/miekg/dns"
)

// Limits holds the registrar-imposed bounds the validator enforces.
// MaxTXTLength counts characters, not bytes.
type Limits struct {
	MaxTXTLength int
	MinTTL       int
}

// DefaultLimits matches Porkbun: TXT content up to 2048 characters,
// TTL floor of 600 seconds.
var DefaultLimits = Limits{MaxTXTLength: 2048, MinTTL: 600}

// FieldError describes a single rejected field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError aggregates the per-field failures for one record.
type ValidationError struct {
	Record Record
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		reasons = append(reasons, f.Error())
	}
	return fmt.Sprintf("invalid %s record %q: %s", e.Record.Type, e.Record.Name, strings.Join(reasons, "; "))
}

// Validate checks r against the per-type content rules and limits.
// Failures are reported per field and never coerced.
func Validate(r Record, limits Limits) error {
	if limits.MaxTXTLength == 0 {
		limits.MaxTXTLength = DefaultLimits.MaxTXTLength
	}
	if limits.MinTTL == 0 {
		limits.MinTTL = DefaultLimits.MinTTL
	}

	var fields []FieldError
	add := func(field, reason string) {
		fields = append(fields, FieldError{Field: field, Reason: reason})
	}

	if _, err := ParseType(string(r.Type)); err != nil {
		add("type", err.Error())
	}
	if r.TTL != 0 && r.TTL < limits.MinTTL {
		add("ttl", fmt.Sprintf("must be at least %d", limits.MinTTL))
	}
	if r.Content == "" {
		add("content", "must not be empty")
	}

	switch r.Type {
	case TypeA:
		if addr, err := netip.ParseAddr(r.Content); err != nil || !addr.Is4() {
			add("content", "must be an IPv4 literal")
		}
	case TypeAAAA:
		if addr, err := netip.ParseAddr(r.Content); err != nil || !addr.Is6() || addr.Is4() {
			add("content", "must be an IPv6 literal")
		}
	case TypeCNAME, TypeNS, TypeALIAS:
		if !validHostname(r.Content) {
			add("content", "must be a valid hostname")
		}
	case TypeMX:
		if !validHostname(r.Content) {
			add("content", "must be a valid hostname")
		}
		if r.Priority < 0 {
			add("priority", "must be non-negative")
		}
	case TypeSRV:
		if r.Priority < 0 {
			add("priority", "must be non-negative")
		}
		validateSRV(r.Content, add)
	case TypeTXT:
		if utf8.RuneCountInString(r.Content) > limits.MaxTXTLength {
			add("content", fmt.Sprintf("exceeds %d characters", limits.MaxTXTLength))
		}
	case TypeCAA:
		validateCAA(r.Content, add)
	case TypeTLSA:
		validateTLSA(r.Content, add)
	case TypeHTTPS, TypeSVCB:
		validateSVCB(r.Content, add)
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Record: r, Fields: fields}
}

func validHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if s == "" || !strings.Contains(s, ".") {
		return false
	}
	_, ok := dns.IsDomainName(s)
	return ok
}

// validateSRV checks the "weight port target" content form used by the
// registrar (priority travels in its own field).
func validateSRV(content string, add func(field, reason string)) {
	parts := strings.Fields(content)
	if len(parts) != 3 {
		add("content", "must be \"weight port target\"")
		return
	}
	if n, err := strconv.Atoi(parts[0]); err != nil || n < 0 || n > 65535 {
		add("content", "weight must be 0-65535")
	}
	if n, err := strconv.Atoi(parts[1]); err != nil || n < 1 || n > 65535 {
		add("content", "port must be 1-65535")
	}
	if parts[2] != "." && !validHostname(parts[2]) {
		add("content", "target must be a valid hostname")
	}
}

func validateCAA(content string, add func(field, reason string)) {
	parts := strings.SplitN(content, " ", 3)
	if len(parts) != 3 {
		add("content", "must be \"flag tag value\"")
		return
	}
	if n, err := strconv.Atoi(parts[0]); err != nil || n < 0 || n > 255 {
		add("content", "flag must be 0-255")
	}
	switch parts[1] {
	case "issue", "issuewild", "iodef":
	default:
		add("content", "tag must be issue, issuewild or iodef")
	}
	if strings.TrimSpace(parts[2]) == "" {
		add("content", "value must not be empty")
	}
}

func validateTLSA(content string, add func(field, reason string)) {
	parts := strings.Fields(content)
	if len(parts) != 4 {
		add("content", "must be \"usage selector matching-type data\"")
		return
	}
	ranges := []struct {
		name string
		max  int
	}{
		{"usage", 3},
		{"selector", 1},
		{"matching-type", 2},
	}
	for i, rng := range ranges {
		if n, err := strconv.Atoi(parts[i]); err != nil || n < 0 || n > rng.max {
			add("content", fmt.Sprintf("%s must be 0-%d", rng.name, rng.max))
		}
	}
	if _, err := hex.DecodeString(parts[3]); err != nil {
		add("content", "data must be hexadecimal")
	}
}

// validateSVCB covers HTTPS and SVCB: an integer priority followed by a
// target name (or "." for the alias form), then optional parameters.
func validateSVCB(content string, add func(field, reason string)) {
	parts := strings.Fields(content)
	if len(parts) < 2 {
		add("content", "must be \"priority target [params]\"")
		return
	}
	if n, err := strconv.Atoi(parts[0]); err != nil || n < 0 || n > 65535 {
		add("content", "priority must be 0-65535")
	}
	if parts[1] != "." && !validHostname(parts[1]) {
		add("content", "target must be \".\" or a valid hostname")
	}
}
