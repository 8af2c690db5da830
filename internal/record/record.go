// Package record holds the DNS record model shared by the registrar
// client, the reconciliation engine and the SPF chain generator.
package record

import "fmt"

// Type is a DNS record type supported by the registrar.
type Type string

const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeMX    Type = "MX"
	TypeCNAME Type = "CNAME"
	TypeALIAS Type = "ALIAS"
	TypeTXT   Type = "TXT"
	TypeNS    Type = "NS"
	TypeSRV   Type = "SRV"
	TypeTLSA  Type = "TLSA"
	TypeCAA   Type = "CAA"
	TypeHTTPS Type = "HTTPS"
	TypeSVCB  Type = "SVCB"
)

// Types lists every supported record type.
var Types = []Type{
	TypeA, TypeAAAA, TypeMX, TypeCNAME, TypeALIAS, TypeTXT,
	TypeNS, TypeSRV, TypeTLSA, TypeCAA, TypeHTTPS, TypeSVCB,
}

// ParseType validates a record type string.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported record type: %q", s)
}

// Record represents a single DNS record at the registrar.
type Record struct {
	ID       string // registrar-assigned, empty until created
	Name     string // subdomain label, empty for the apex
	Type     Type
	Content  string
	TTL      int
	Priority int    // meaningful for MX and SRV only
	Notes    string // free-text registrar notes
}

// ConflictKey identifies records that the template workflow treats as
// interchangeable: same name and type.
func (r Record) ConflictKey() string {
	return r.Name + "/" + string(r.Type)
}

// FQDN returns the record's fully qualified name under domain.
func (r Record) FQDN(domain string) string {
	if r.Name == "" {
		return domain
	}
	return r.Name + "." + domain
}
