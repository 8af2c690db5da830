package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/bulk"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/reconcile"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/record"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/spfchain"
)

var (
	chainDomains   []string
	chainLength    int
	chainFinal     string
	chainAllActive bool
	verifyServer   string
	verifyFinal    string
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Generate and verify randomized SPF include chains",
}

var chainApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replace SPF TXT records on the selected domains with a fresh chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := newClient()
		if err != nil {
			return err
		}

		domains := chainDomains
		if chainAllActive {
			all, err := client.ListDomains(cmd.Context())
			if err != nil {
				return err
			}
			domains = domains[:0]
			for _, d := range all {
				domains = append(domains, d.Name)
			}
		}
		if len(domains) == 0 {
			return fmt.Errorf("no domains selected: pass --domains or --all")
		}

		length := chainLength
		if length == 0 {
			length = cfg.Chain.Length
		}
		final := chainFinal
		if final == "" {
			final = cfg.Chain.FinalDirective
		}
		spec := spfchain.Spec{
			ChainLength:    length,
			FinalDirective: final,
			MinLabelLength: cfg.Chain.MinLabelLength,
		}

		engine := reconcile.New(client, record.DefaultLimits, log.WithName("reconcile"))
		orch := bulk.New(client, engine, spfchain.New(), cfg.Bulk.Concurrency, cfg.Bulk.BackupDir, log.WithName("bulk"))

		result, err := orch.RunChain(cmd.Context(), domains, spec)
		if err != nil {
			return err
		}

		for _, o := range result.Outcomes {
			fmt.Printf("%s\t%s\tdeleted=%d created=%d\n", o.Domain, o.Status, o.Deleted, o.Created)
			for _, re := range o.Errors {
				fmt.Printf("  %v\n", re)
			}
		}
		if failed := result.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d domains failed", len(failed), len(result.Outcomes))
		}
		return nil
	},
}

var chainVerifyCmd = &cobra.Command{
	Use:   "verify <domain>",
	Short: "Follow a published chain over DNS and check its final directive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		final := verifyFinal
		if final == "" {
			final = cfg.Chain.FinalDirective
		}
		if final == "" {
			return fmt.Errorf("no final directive: pass --final or set chain.final_directive")
		}

		v := &spfchain.Verifier{Resolver: spfchain.NewDNSResolver(verifyServer)}
		res, err := v.Verify(cmd.Context(), args[0], final)
		if err != nil {
			return fmt.Errorf("chain broken at %s: %s", res.BrokenAt, res.BrokenReason)
		}

		fmt.Printf("hops: %d\n", len(res.Hops))
		for _, h := range res.Hops {
			fmt.Printf("  %s\n", h)
		}
		fmt.Printf("final: %s\n", res.FinalBody)
		if !res.ReachedFinal {
			return fmt.Errorf("final directive not reached")
		}
		return nil
	},
}

func init() {
	chainApplyCmd.Flags().StringSliceVar(&chainDomains, "domains", nil, "domains to apply the chain to")
	chainApplyCmd.Flags().BoolVar(&chainAllActive, "all", false, "apply to every domain on the account")
	chainApplyCmd.Flags().IntVar(&chainLength, "length", 0, "chain length 1-10 (default from config)")
	chainApplyCmd.Flags().StringVar(&chainFinal, "final", "", "final SPF directive (default from config)")

	chainVerifyCmd.Flags().StringVar(&verifyServer, "server", "", "DNS server host:port (default 1.1.1.1:53)")
	chainVerifyCmd.Flags().StringVar(&verifyFinal, "final", "", "expected final directive (default from config)")

	chainCmd.AddCommand(chainApplyCmd)
	chainCmd.AddCommand(chainVerifyCmd)
}
