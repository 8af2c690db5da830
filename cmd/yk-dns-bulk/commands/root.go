// Package commands implements the yk-dns-bulk command tree.
package commands

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/config"
	"github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar"
	_ "github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar/registrars"
)

var (
	configPath string
	profile    string
	verbosity  int

	log logr.Logger
)

var rootCmd = &cobra.Command{
	Use:   "yk-dns-bulk",
	Short: "Bulk DNS record and SPF chain management through the registrar API",
	Long: `yk-dns-bulk manages DNS records for many domains at once through the
registrar's HTTP API, including bulk replacement of SPF TXT records with
randomized include chains.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
		zl, err := zcfg.Build()
		if err != nil {
			log = logr.Discard()
			return
		}
		log = zapr.NewLogger(zl)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default from YK_DNS_BULK_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "credential profile to use")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "log verbosity")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(domainsCmd)
	rootCmd.AddCommand(nsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(chainCmd)
}

// loadConfig reads the config file from --config or the environment.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// newClient builds the registrar client from the loaded configuration.
func newClient() (*config.Config, registrar.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	settings, err := cfg.ResolveSettings(profile)
	if err != nil {
		return nil, nil, err
	}
	client, err := registrar.New(cfg.Registrar, log.WithName(cfg.Registrar), settings)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}
