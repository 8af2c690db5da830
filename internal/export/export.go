// Package export renders a domain's record list as JSON, CSV or BIND-style
// zone lines.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
)

// Format is a supported export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatZone Format = "zone"
)

// Render formats records in the given format.
func Render(records []record.Record, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(records)
	case FormatCSV:
		return renderCSV(records)
	case FormatZone:
		return renderZone(records), nil
	default:
		return "", fmt.Errorf("export: unsupported format: %q", format)
	}
}

func renderJSON(records []record.Record) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return string(data), nil
}

func renderCSV(records []record.Record) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"id", "name", "type", "content", "ttl", "priority", "notes"}); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	for _, r := range records {
		row := []string{r.ID, r.Name, string(r.Type), r.Content,
			fmt.Sprintf("%d", r.TTL), fmt.Sprintf("%d", r.Priority), r.Notes}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("export: %w", err)
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func renderZone(records []record.Record) string {
	var lines []string
	for _, r := range records {
		name := r.Name
		if name == "" {
			name = "@"
		}
		if r.Type == record.TypeMX || r.Type == record.TypeSRV {
			lines = append(lines, fmt.Sprintf("%s\t%d\tIN\t%s\t%d %s", name, r.TTL, r.Type, r.Priority, r.Content))
			continue
		}
		content := r.Content
		if r.Type == record.TypeTXT {
			content = fmt.Sprintf("%q", content)
		}
		lines = append(lines, fmt.Sprintf("%s\t%d\tIN\t%s\t%s", name, r.TTL, r.Type, content))
	}
	return strings.Join(lines, "\n")
}
