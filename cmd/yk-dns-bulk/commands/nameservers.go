package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/nswatch"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar/porkbun"
)

var nsWatchInterval time.Duration

var nsCmd = &cobra.Command{
	Use:   "ns",
	Short: "Inspect and change domain nameservers",
}

var nsGetCmd = &cobra.Command{
	Use:   "get <domain>",
	Short: "Show a domain's current nameservers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}
		ns, err := client.GetNameservers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, n := range ns {
			fmt.Println(n)
		}
		if !porkbun.UsesDefaultNameservers(ns) {
			fmt.Println("(external nameservers)")
		}
		return nil
	},
}

var nsSetCmd = &cobra.Command{
	Use:   "set <domain> <ns>...",
	Short: "Replace a domain's nameservers (use 'default' for the registrar set)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}
		nameservers := args[1:]
		if len(nameservers) == 1 && nameservers[0] == "default" {
			nameservers = porkbun.DefaultNameservers()
		}
		if err := client.UpdateNameservers(cmd.Context(), args[0], nameservers); err != nil {
			return err
		}
		fmt.Printf("updated nameservers for %s: %s\n", args[0], strings.Join(nameservers, ", "))
		return nil
	},
}

var nsWatchCmd = &cobra.Command{
	Use:   "watch <domain>...",
	Short: "Poll nameservers periodically and print updates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := newClient()
		if err != nil {
			return err
		}

		watcher := nswatch.New(client, nsWatchInterval, log.WithName("nswatch"))
		for u := range watcher.Watch(cmd.Context(), args) {
			if u.Err != nil {
				fmt.Printf("%s\tERROR\t%v\n", u.Domain, u.Err)
				continue
			}
			marker := ""
			if u.External {
				marker = "\t(external)"
			}
			fmt.Printf("%s\t%s%s\n", u.Domain, strings.Join(u.Nameservers, ","), marker)
		}
		return nil
	},
}

func init() {
	nsWatchCmd.Flags().DurationVar(&nsWatchInterval, "interval", time.Minute, "polling interval")

	nsCmd.AddCommand(nsGetCmd)
	nsCmd.AddCommand(nsSetCmd)
	nsCmd.AddCommand(nsWatchCmd)
}
