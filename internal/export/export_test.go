package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
)

func sampleRecords() []record.Record {
	return []record.Record{
		{ID: "1", Name: "", Type: record.TypeA, Content: "192.0.2.1", TTL: 600},
		{ID: "2", Name: "", Type: record.TypeMX, Content: "mail.example.com", TTL: 600, Priority: 10},
		{ID: "3", Name: "_spf", Type: record.TypeTXT, Content: "v=spf1 -all", TTL: 600},
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(sampleRecords(), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded []record.Record
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("expected 3 records, got %d", len(decoded))
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := Render(sampleRecords(), FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,name,type") {
		t.Errorf("unexpected header: %q", lines[0])
	}
}

func TestRenderZone(t *testing.T) {
	out, err := Render(sampleRecords(), FormatZone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "@\t600\tIN\tA\t192.0.2.1") {
		t.Errorf("apex A line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "IN\tMX\t10 mail.example.com") {
		t.Errorf("MX line should carry priority: %q", lines[1])
	}
	if !strings.Contains(lines[2], `"v=spf1 -all"`) {
		t.Errorf("TXT content should be quoted: %q", lines[2])
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	if _, err := Render(sampleRecords(), Format("xml")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
