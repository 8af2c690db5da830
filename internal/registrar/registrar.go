package registrar

import (
	"context"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
)

// Domain is a registered domain as reported by the registrar.
type Domain struct {
	Name   string // registered domain name, e.g. "example.com"
	Status string // registrar-specific status string, e.g. "ACTIVE"
}

// Client is the interface that registrar backends must implement.
// Record names are subdomain labels relative to the domain; an empty
// name means the apex.
type Client interface {
	Ping(ctx context.Context) error
	ListDomains(ctx context.Context) ([]Domain, error)
	GetNameservers(ctx context.Context, domain string) ([]string, error)
	UpdateNameservers(ctx context.Context, domain string, nameservers []string) error
	ListRecords(ctx context.Context, domain string) ([]record.Record, error)
	CreateRecord(ctx context.Context, domain string, r record.Record) (string, error)
	UpdateRecord(ctx context.Context, domain, id string, r record.Record) error
	DeleteRecord(ctx context.Context, domain, id string) error
}
