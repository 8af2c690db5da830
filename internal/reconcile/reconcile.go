// Package reconcile applies a per-domain record change set against the
// registrar: all deletions first, then creations in order.
package reconcile

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar"
)

// Status is the terminal state of one domain's reconciliation.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
	StatusFailure        Status = "failure"
	StatusCancelled      Status = "cancelled"
)

// RecordError attributes a failure to a single record operation.
type RecordError struct {
	Op     string // "delete" or "create"
	Record record.Record
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Record.Type, e.Record.Name, e.Err)
}

// Outcome is the result of reconciling one domain.
type Outcome struct {
	Domain     string
	Deleted    int
	Created    int
	Status     Status
	Errors     []RecordError
	BackupPath string // pre-change snapshot of the domain's records, if taken
}

// Engine executes record change sets through a registrar client.
type Engine struct {
	client registrar.Client
	limits record.Limits
	log    logr.Logger
}

// New creates an Engine.
func New(client registrar.Client, limits record.Limits, log logr.Logger) *Engine {
	return &Engine{client: client, limits: limits, log: log}
}

// Reconcile deletes toDelete and then creates toCreate for domain.
//
// Every deletion is issued and settled before the first creation, so a new
// record can never collide with one that is about to be removed. A failed
// record never aborts its siblings; an authentication failure aborts the
// whole domain since every further call would fail identically. Creations
// keep their slice order, which chain generation relies on (the apex entry
// record comes last).
func (e *Engine) Reconcile(ctx context.Context, domain string, toDelete, toCreate []record.Record) Outcome {
	out := Outcome{Domain: domain}
	log := e.log.WithValues("domain", domain)

	for _, r := range toDelete {
		if err := ctx.Err(); err != nil {
			out.Status = StatusCancelled
			return out
		}

		err := e.client.DeleteRecord(ctx, domain, r.ID)
		switch {
		case err == nil:
			out.Deleted++
			log.V(1).Info("deleted record", "name", r.Name, "type", r.Type, "id", r.ID)
		case registrar.IsNotFound(err):
			// Already absent: deletion achieved its goal.
			out.Deleted++
			log.V(1).Info("record already absent", "name", r.Name, "type", r.Type, "id", r.ID)
		case registrar.IsAuth(err):
			log.Error(err, "authentication failed, aborting domain")
			out.Status = StatusFailure
			out.Errors = append(out.Errors, RecordError{Op: "delete", Record: r, Err: err})
			return out
		default:
			log.Error(err, "delete failed", "name", r.Name, "type", r.Type, "id", r.ID)
			out.Errors = append(out.Errors, RecordError{Op: "delete", Record: r, Err: err})
		}
	}

	for _, r := range toCreate {
		if err := ctx.Err(); err != nil {
			out.Status = StatusCancelled
			return out
		}

		if err := record.Validate(r, e.limits); err != nil {
			log.Error(err, "record rejected by validator", "name", r.Name, "type", r.Type)
			out.Errors = append(out.Errors, RecordError{Op: "create", Record: r, Err: err})
			continue
		}

		id, err := e.client.CreateRecord(ctx, domain, r)
		switch {
		case err == nil:
			out.Created++
			log.V(1).Info("created record", "name", r.Name, "type", r.Type, "id", id)
		case registrar.IsAuth(err):
			log.Error(err, "authentication failed, aborting domain")
			out.Status = StatusFailure
			out.Errors = append(out.Errors, RecordError{Op: "create", Record: r, Err: err})
			return out
		default:
			log.Error(err, "create failed", "name", r.Name, "type", r.Type)
			out.Errors = append(out.Errors, RecordError{Op: "create", Record: r, Err: err})
		}
	}

	switch {
	case len(out.Errors) == 0:
		out.Status = StatusSuccess
	case out.Deleted == 0 && out.Created == 0:
		out.Status = StatusFailure
	default:
		out.Status = StatusPartialFailure
	}
	return out
}
