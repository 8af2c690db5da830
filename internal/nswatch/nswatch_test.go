package nswatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar"
)

// fakeNSClient answers nameserver lookups from a fixed map.
type fakeNSClient struct {
	ns   map[string][]string
	errs map[string]error
}

func (f *fakeNSClient) Ping(context.Context) error { return nil }
func (f *fakeNSClient) ListDomains(context.Context) ([]registrar.Domain, error) {
	return nil, nil
}
func (f *fakeNSClient) GetNameservers(_ context.Context, domain string) ([]string, error) {
	if err := f.errs[domain]; err != nil {
		return nil, err
	}
	return f.ns[domain], nil
}
func (f *fakeNSClient) UpdateNameservers(context.Context, string, []string) error { return nil }
func (f *fakeNSClient) ListRecords(context.Context, string) ([]record.Record, error) {
	return nil, nil
}
func (f *fakeNSClient) CreateRecord(context.Context, string, record.Record) (string, error) {
	return "", nil
}
func (f *fakeNSClient) UpdateRecord(context.Context, string, string, record.Record) error {
	return nil
}
func (f *fakeNSClient) DeleteRecord(context.Context, string, string) error { return nil }

func TestWatchPublishesAndCloses(t *testing.T) {
	client := &fakeNSClient{
		ns: map[string][]string{
			"internal.example": {"curitiba.ns.porkbun.com", "fortaleza.ns.porkbun.com"},
			"external.example": {"ns1.provider.net", "ns2.provider.net"},
		},
		errs: map[string]error{
			"broken.example": &registrar.Error{Op: "domain/getNs", Kind: registrar.KindTransient},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := New(client, time.Hour, logr.Discard())
	updates := w.Watch(ctx, []string{"internal.example", "external.example", "broken.example"})

	got := map[string]Update{}
	for i := 0; i < 3; i++ {
		select {
		case u := <-updates:
			got[u.Domain] = u
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for updates")
		}
	}

	if u := got["internal.example"]; u.External || u.Err != nil {
		t.Errorf("internal.example: external=%v err=%v", u.External, u.Err)
	}
	if u := got["external.example"]; !u.External {
		t.Error("external.example should be flagged external")
	}
	if u := got["broken.example"]; u.Err == nil {
		t.Error("broken.example should carry its lookup error")
	}

	cancel()
	select {
	case _, open := <-updates:
		if open {
			// One buffered update may still be in flight; the next
			// receive must observe the close.
			if _, open := <-updates; open {
				t.Error("channel should close after cancellation")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancellation")
	}
}

func TestLastAndExternalDomains(t *testing.T) {
	client := &fakeNSClient{
		ns: map[string][]string{
			"external.example": {"ns1.provider.net", "ns2.provider.net"},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(client, time.Hour, logr.Discard())
	updates := w.Watch(ctx, []string{"external.example"})
	<-updates

	u, ok := w.Last("external.example")
	if !ok {
		t.Fatal("expected a cached observation")
	}
	if !u.External {
		t.Error("cached observation should be external")
	}

	ext := w.ExternalDomains()
	if len(ext) != 1 || ext[0] != "external.example" {
		t.Errorf("ExternalDomains = %v", ext)
	}

	if _, ok := w.Last("never.polled"); ok {
		t.Error("unexpected cache entry for unpolled domain")
	}
}

func TestWatchErrorsDoNotMarkExternal(t *testing.T) {
	client := &fakeNSClient{
		errs: map[string]error{
			"broken.example": errors.New("boom"),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(client, time.Hour, logr.Discard())
	<-w.Watch(ctx, []string{"broken.example"})

	if ext := w.ExternalDomains(); len(ext) != 0 {
		t.Errorf("errored domains must not count as external, got %v", ext)
	}
}
