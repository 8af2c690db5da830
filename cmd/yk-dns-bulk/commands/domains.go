package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test API connectivity and credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("OK")
		return nil
	},
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List all domains on the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}
		domains, err := client.ListDomains(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range domains {
			fmt.Printf("%s\t%s\n", d.Name, d.Status)
		}
		return nil
	},
}
