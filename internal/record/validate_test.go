package record

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAccepts(t *testing.T) {
	tests := []Record{
		{Name: "www", Type: TypeA, Content: "192.0.2.10", TTL: 600},
		{Name: "www", Type: TypeAAAA, Content: "2001:db8::1", TTL: 600},
		{Name: "alias", Type: TypeCNAME, Content: "target.example.com", TTL: 600},
		{Name: "", Type: TypeALIAS, Content: "target.example.com", TTL: 600},
		{Name: "", Type: TypeMX, Content: "mail.example.com", TTL: 600, Priority: 10},
		{Name: "", Type: TypeMX, Content: "mail.example.com.", TTL: 600},
		{Name: "", Type: TypeTXT, Content: "v=spf1 -all", TTL: 600},
		{Name: "sub", Type: TypeNS, Content: "ns1.example.net", TTL: 3600},
		{Name: "_sip._tcp", Type: TypeSRV, Content: "5 5060 sip.example.com", TTL: 600, Priority: 10},
		{Name: "", Type: TypeCAA, Content: "0 issue letsencrypt.org", TTL: 600},
		{Name: "_443._tcp", Type: TypeTLSA, Content: "3 1 1 abcdef0123456789", TTL: 600},
		{Name: "", Type: TypeHTTPS, Content: "1 .", TTL: 600},
		{Name: "", Type: TypeSVCB, Content: "0 svc.example.com", TTL: 600},
		{Name: "zero-ttl", Type: TypeA, Content: "192.0.2.1"}, // 0 means registrar default
	}

	for _, r := range tests {
		t.Run(string(r.Type)+"/"+r.Name, func(t *testing.T) {
			if err := Validate(r, DefaultLimits); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		field string
	}{
		{"a with hostname", Record{Type: TypeA, Content: "not.an.ip", TTL: 600}, "content"},
		{"a with ipv6", Record{Type: TypeA, Content: "2001:db8::1", TTL: 600}, "content"},
		{"aaaa with ipv4", Record{Type: TypeAAAA, Content: "192.0.2.1", TTL: 600}, "content"},
		{"cname not hostname", Record{Type: TypeCNAME, Content: "nodots", TTL: 600}, "content"},
		{"mx negative priority", Record{Type: TypeMX, Content: "mail.example.com", TTL: 600, Priority: -1}, "priority"},
		{"srv bad shape", Record{Type: TypeSRV, Content: "5 5060", TTL: 600}, "content"},
		{"srv bad port", Record{Type: TypeSRV, Content: "5 99999 sip.example.com", TTL: 600}, "content"},
		{"txt empty", Record{Type: TypeTXT, Content: "", TTL: 600}, "content"},
		{"txt too long", Record{Type: TypeTXT, Content: strings.Repeat("x", 2049), TTL: 600}, "content"},
		{"caa bad flag", Record{Type: TypeCAA, Content: "300 issue ca.example", TTL: 600}, "content"},
		{"caa bad tag", Record{Type: TypeCAA, Content: "0 issuer ca.example", TTL: 600}, "content"},
		{"tlsa bad usage", Record{Type: TypeTLSA, Content: "9 1 1 abcdef", TTL: 600}, "content"},
		{"tlsa not hex", Record{Type: TypeTLSA, Content: "3 1 1 zzzz", TTL: 600}, "content"},
		{"https no target", Record{Type: TypeHTTPS, Content: "1", TTL: 600}, "content"},
		{"svcb bad priority", Record{Type: TypeSVCB, Content: "x svc.example.com", TTL: 600}, "content"},
		{"ttl below floor", Record{Type: TypeA, Content: "192.0.2.1", TTL: 60}, "ttl"},
		{"unknown type", Record{Type: Type("SPF"), Content: "v=spf1 -all", TTL: 600}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rec, DefaultLimits)
			if err == nil {
				t.Fatal("expected error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			found := false
			for _, f := range ve.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a %q field error, got %v", tt.field, ve.Fields)
			}
		})
	}
}

func TestValidateTXTLengthCountsCharacters(t *testing.T) {
	// 2048 two-byte characters is 4096 bytes but still within the limit.
	r := Record{Type: TypeTXT, Content: strings.Repeat("ü", 2048), TTL: 600}
	if err := Validate(r, DefaultLimits); err != nil {
		t.Errorf("unexpected error for 2048-character content: %v", err)
	}
	r.Content = strings.Repeat("ü", 2049)
	if err := Validate(r, DefaultLimits); err == nil {
		t.Error("expected error for 2049-character content")
	}
}

func TestValidateCustomTXTLimit(t *testing.T) {
	r := Record{Type: TypeTXT, Content: strings.Repeat("x", 300), TTL: 600}
	if err := Validate(r, Limits{MaxTXTLength: 255, MinTTL: 600}); err == nil {
		t.Error("expected error with 255-char limit")
	}
	if err := Validate(r, DefaultLimits); err != nil {
		t.Errorf("unexpected error with default limit: %v", err)
	}
}

func TestParseType(t *testing.T) {
	if _, err := ParseType("TXT"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseType("PTR"); err == nil {
		t.Error("expected error for PTR")
	}
}

func TestConflictKey(t *testing.T) {
	a := Record{Name: "_spf", Type: TypeTXT, Content: "one"}
	b := Record{Name: "_spf", Type: TypeTXT, Content: "two"}
	c := Record{Name: "_spf", Type: TypeCNAME, Content: "one"}
	if a.ConflictKey() != b.ConflictKey() {
		t.Error("same name/type should share a conflict key")
	}
	if a.ConflictKey() == c.ConflictKey() {
		t.Error("different types should not share a conflict key")
	}
}

func TestFQDN(t *testing.T) {
	if got := (Record{Name: ""}).FQDN("example.com"); got != "example.com" {
		t.Errorf("apex FQDN: got %q", got)
	}
	if got := (Record{Name: "www"}).FQDN("example.com"); got != "www.example.com" {
		t.Errorf("subdomain FQDN: got %q", got)
	}
}
