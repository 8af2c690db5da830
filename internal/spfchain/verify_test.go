package spfchain

import (
	"context"
	"fmt"
	"testing"
)

// mapResolver serves TXT records from a fixed map.
type mapResolver map[string][]string

func (m mapResolver) LookupTXT(_ context.Context, fqdn string) ([]string, error) {
	records, ok := m[fqdn]
	if !ok {
		return nil, fmt.Errorf("NXDOMAIN %s", fqdn)
	}
	return records, nil
}

func TestVerifyCompleteChain(t *testing.T) {
	final := "v=spf1 include:_spf.anchor.example ~all"
	resolver := mapResolver{
		"example.com":         {"v=spf1 include:linkaaa.example.com ~all"},
		"linkaaa.example.com": {"v=spf1 include:linkbbb.example.com ~all"},
		"linkbbb.example.com": {final},
	}

	v := &Verifier{Resolver: resolver}
	res, err := v.Verify(context.Background(), "example.com", final)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ReachedFinal {
		t.Errorf("expected final directive reached, got body %q", res.FinalBody)
	}
	if len(res.Hops) != 2 {
		t.Errorf("expected 2 hops, got %v", res.Hops)
	}
}

func TestVerifyIgnoresNonSPFRecords(t *testing.T) {
	final := "v=spf1 -all"
	resolver := mapResolver{
		"example.com":         {"google-site-verification=xyz", "v=spf1 include:linkccc.example.com ~all"},
		"linkccc.example.com": {final},
	}

	v := &Verifier{Resolver: resolver}
	res, err := v.Verify(context.Background(), "example.com", final)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ReachedFinal {
		t.Errorf("expected final directive reached, got %q", res.FinalBody)
	}
}

func TestVerifyBrokenChain(t *testing.T) {
	resolver := mapResolver{
		"example.com": {"v=spf1 include:missing.example.com ~all"},
	}

	v := &Verifier{Resolver: resolver}
	res, err := v.Verify(context.Background(), "example.com", "v=spf1 -all")
	if err == nil {
		t.Fatal("expected error for broken chain")
	}
	if res.BrokenAt != "missing.example.com" {
		t.Errorf("BrokenAt = %q, want missing.example.com", res.BrokenAt)
	}
}

func TestVerifyWrongFinalDirective(t *testing.T) {
	resolver := mapResolver{
		"example.com":         {"v=spf1 include:linkddd.example.com ~all"},
		"linkddd.example.com": {"v=spf1 include:_spf.other.example -all"},
	}

	v := &Verifier{Resolver: resolver}
	res, err := v.Verify(context.Background(), "example.com", "v=spf1 include:_spf.anchor.example ~all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ReachedFinal {
		t.Error("expected ReachedFinal false for mismatched directive")
	}
}

func TestVerifyLoopCapped(t *testing.T) {
	resolver := mapResolver{
		"example.com":   {"v=spf1 include:a.example.com ~all"},
		"a.example.com": {"v=spf1 include:b.example.com ~all"},
		"b.example.com": {"v=spf1 include:a.example.com ~all"},
	}

	v := &Verifier{Resolver: resolver}
	if _, err := v.Verify(context.Background(), "example.com", "v=spf1 -all"); err == nil {
		t.Fatal("expected error for looping chain")
	}
}
