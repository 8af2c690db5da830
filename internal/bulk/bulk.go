// Package bulk fans reconciliation tasks out across many domains with a
// bounded worker pool and aggregates the per-domain outcomes.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/export"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/reconcile"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/spfchain"
)

// DefaultConcurrency caps simultaneous domain tasks; the registrar rate
// limit is the real bottleneck, more workers would just queue on it.
const DefaultConcurrency = 5

// Result aggregates one orchestrator run.
type Result struct {
	RunID    string
	Outcomes []reconcile.Outcome
}

// Succeeded, PartiallyFailed and Failed split the outcomes by terminal
// status so a retry can target exactly the failed subset.
func (r Result) Succeeded() []reconcile.Outcome { return r.byStatus(reconcile.StatusSuccess) }

func (r Result) PartiallyFailed() []reconcile.Outcome {
	return r.byStatus(reconcile.StatusPartialFailure)
}

func (r Result) Failed() []reconcile.Outcome {
	out := r.byStatus(reconcile.StatusFailure)
	return append(out, r.byStatus(reconcile.StatusCancelled)...)
}

func (r Result) byStatus(s reconcile.Status) []reconcile.Outcome {
	var out []reconcile.Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Orchestrator drives one reconcile task per selected domain.
type Orchestrator struct {
	client      registrar.Client
	engine      *reconcile.Engine
	generator   *spfchain.Generator
	concurrency int
	backupDir   string
	log         logr.Logger
}

// New creates an Orchestrator. A concurrency of 0 means DefaultConcurrency;
// an empty backupDir disables pre-change snapshots.
func New(client registrar.Client, engine *reconcile.Engine, generator *spfchain.Generator, concurrency int, backupDir string, log logr.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		client:      client,
		engine:      engine,
		generator:   generator,
		concurrency: concurrency,
		backupDir:   backupDir,
		log:         log,
	}
}

// writeBackup snapshots a domain's current records to a timestamped JSON
// file in the backup directory. It runs before any deletion; a failed
// backup fails the whole domain so records are never deleted without a
// recoverable copy.
func (o *Orchestrator) writeBackup(domain string, records []record.Record) (string, error) {
	if o.backupDir == "" {
		return "", nil
	}
	rendered, err := export.Render(records, export.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("bulk: rendering backup for %s: %w", domain, err)
	}
	if err := os.MkdirAll(o.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("bulk: creating backup directory: %w", err)
	}
	path := filepath.Join(o.backupDir, fmt.Sprintf("%s_%s.json", time.Now().Format("20060102-1504"), domain))
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("bulk: writing backup for %s: %w", domain, err)
	}
	return path, nil
}

// RunChain replaces every SPF-bearing TXT record on each selected domain
// with a freshly generated include chain built from spec (the spec's
// Domain field is set per domain).
func (o *Orchestrator) RunChain(ctx context.Context, domains []string, spec spfchain.Spec) (Result, error) {
	probe := spec
	probe.Domain = "probe.invalid"
	if err := probe.Validate(); err != nil {
		return Result{}, err
	}

	return o.run(ctx, domains, func(ctx context.Context, domain string) reconcile.Outcome {
		existing, err := o.client.ListRecords(ctx, domain)
		if err != nil {
			return failedOutcome(domain, "list", err)
		}

		backupPath, err := o.writeBackup(domain, existing)
		if err != nil {
			return failedOutcome(domain, "backup", err)
		}

		names := make(map[string]struct{}, len(existing))
		for _, r := range existing {
			names[r.Name] = struct{}{}
		}

		domainSpec := spec
		domainSpec.Domain = domain
		chain, err := o.generator.Generate(domainSpec, names)
		if err != nil {
			// Generation failures surface before any write so a partial
			// chain is never left behind by randomness alone.
			return failedOutcome(domain, "generate", err)
		}

		var toDelete []record.Record
		for _, r := range existing {
			if r.Type == record.TypeTXT && spfchain.SPFLike(r.Content) {
				toDelete = append(toDelete, r)
			}
		}

		out := o.engine.Reconcile(ctx, domain, toDelete, chain)
		out.BackupPath = backupPath
		return out
	})
}

// RunRecords applies a static record template to each selected domain,
// first clearing existing records that share a conflict key with a
// template entry.
func (o *Orchestrator) RunRecords(ctx context.Context, domains []string, template []record.Record) (Result, error) {
	return o.run(ctx, domains, func(ctx context.Context, domain string) reconcile.Outcome {
		existing, err := o.client.ListRecords(ctx, domain)
		if err != nil {
			return failedOutcome(domain, "list", err)
		}

		backupPath, err := o.writeBackup(domain, existing)
		if err != nil {
			return failedOutcome(domain, "backup", err)
		}

		keys := make(map[string]struct{}, len(template))
		for _, r := range template {
			keys[r.ConflictKey()] = struct{}{}
		}

		var toDelete []record.Record
		for _, r := range existing {
			if _, ok := keys[r.ConflictKey()]; ok {
				toDelete = append(toDelete, r)
			}
		}

		out := o.engine.Reconcile(ctx, domain, toDelete, template)
		out.BackupPath = backupPath
		return out
	})
}

type task func(ctx context.Context, domain string) reconcile.Outcome

// run executes one task per domain on a bounded worker pool. Aggregation
// waits for every task to reach a terminal state; a cancelled context
// turns unstarted domains into cancelled outcomes instead of dropping
// them.
func (o *Orchestrator) run(ctx context.Context, domains []string, fn task) (Result, error) {
	if len(domains) == 0 {
		return Result{}, fmt.Errorf("bulk: no domains selected")
	}

	result := Result{RunID: uuid.NewString()}
	log := o.log.WithValues("run", result.RunID)
	log.Info("starting bulk run", "domains", len(domains), "concurrency", o.concurrency)

	jobs := make(chan string)
	outcomes := make(chan reconcile.Outcome, len(domains))

	var wg sync.WaitGroup
	for i := 0; i < o.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for domain := range jobs {
				if ctx.Err() != nil {
					outcomes <- reconcile.Outcome{Domain: domain, Status: reconcile.StatusCancelled}
					continue
				}
				outcomes <- fn(ctx, domain)
			}
		}()
	}

	for _, domain := range domains {
		jobs <- domain
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for outcome := range outcomes {
		result.Outcomes = append(result.Outcomes, outcome)
	}
	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Domain < result.Outcomes[j].Domain
	})

	log.Info("bulk run finished",
		"succeeded", len(result.Succeeded()),
		"partial", len(result.PartiallyFailed()),
		"failed", len(result.Failed()))
	return result, nil
}

func failedOutcome(domain, op string, err error) reconcile.Outcome {
	status := reconcile.StatusFailure
	if err != nil && domainCancelled(err) {
		status = reconcile.StatusCancelled
	}
	return reconcile.Outcome{
		Domain: domain,
		Status: status,
		Errors: []reconcile.RecordError{{Op: op, Err: err}},
	}
}

func domainCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
