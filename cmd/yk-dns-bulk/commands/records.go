package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/export"
)

var exportFormat string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect a domain's DNS records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list <domain>",
	Short: "List all DNS records for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}
		records, err := client.ListRecords(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, r := range records {
			name := r.Name
			if name == "" {
				name = "@"
			}
			fmt.Printf("%s\t%s\t%s\t%d\t%s\n", r.ID, name, r.Type, r.TTL, r.Content)
		}
		return nil
	},
}

var recordsExportCmd = &cobra.Command{
	Use:   "export <domain>",
	Short: "Export a domain's records as json, csv or zone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}
		records, err := client.ListRecords(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := export.Render(records, export.Format(exportFormat))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	recordsExportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json, csv or zone")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsExportCmd)
}
