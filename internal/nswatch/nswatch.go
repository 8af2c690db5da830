// Package nswatch periodically polls domain nameservers through the
// registrar and publishes updates on a channel. The display layer is just
// a consumer of that channel.
package nswatch

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar/porkbun"
)

// Update is one nameserver observation for a domain.
type Update struct {
	Domain      string
	Nameservers []string
	External    bool // not using the registrar's default nameservers
	Err         error
}

// Watcher polls nameservers for a fixed set of domains.
type Watcher struct {
	client   registrar.Client
	interval time.Duration
	log      logr.Logger

	mu   sync.RWMutex
	last map[string]Update
}

// New creates a Watcher. Interval 0 means one minute.
func New(client registrar.Client, interval time.Duration, log logr.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		client:   client,
		interval: interval,
		log:      log,
		last:     make(map[string]Update),
	}
}

// Watch polls every domain immediately and then on each interval tick,
// publishing one Update per domain per round. The returned channel is
// closed when ctx is done.
func (w *Watcher) Watch(ctx context.Context, domains []string) <-chan Update {
	out := make(chan Update)

	go func() {
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.poll(ctx, domains, out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll(ctx, domains, out)
			}
		}
	}()
	return out
}

func (w *Watcher) poll(ctx context.Context, domains []string, out chan<- Update) {
	for _, domain := range domains {
		if ctx.Err() != nil {
			return
		}

		ns, err := w.client.GetNameservers(ctx, domain)
		u := Update{Domain: domain, Nameservers: ns, Err: err}
		if err == nil {
			u.External = !porkbun.UsesDefaultNameservers(ns)
		} else {
			w.log.V(1).Info("nameserver lookup failed", "domain", domain, "error", err.Error())
		}

		w.mu.Lock()
		w.last[domain] = u
		w.mu.Unlock()

		select {
		case out <- u:
		case <-ctx.Done():
			return
		}
	}
}

// Last returns the most recent observation for a domain, if any.
func (w *Watcher) Last(domain string) (Update, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	u, ok := w.last[domain]
	return u, ok
}

// ExternalDomains returns the domains whose last observation was not on
// the registrar's default nameservers.
func (w *Watcher) ExternalDomains() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []string
	for domain, u := range w.last {
		if u.Err == nil && u.External {
			out = append(out, domain)
		}
	}
	return out
}
