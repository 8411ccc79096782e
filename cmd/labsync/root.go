package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"labsync/internal/codec"
	"labsync/internal/config"
	"labsync/internal/credentials"
	"labsync/internal/domain"
	"labsync/internal/loader"
	"labsync/internal/logger"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	logLevel     string
	driverName   string
	strict       bool

	// Shared state set during PersistentPreRun
	cfg     *config.Config
	cfgPath string
	log     logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "labsync",
	Short: "Sync containerlab devices and their live facts into a NetBox inventory",
	Long: `labsync reads a containerlab topology, collects facts from each node over
SNMP or SSH, and reconciles sites, devices and interfaces into a
NetBox-compatible inventory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, cfgPath, err = config.LoadFromPath(cfgFile)
		} else {
			cfg, cfgPath, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Flags override file and environment
		if driverName != "" {
			cfg.Collection.Driver = driverName
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err = logger.Init(cfg.LoggerConfig())
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		log.Debug().Str("path", cfgPath).Str("driver", cfg.Collection.Driver).Msg("Configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search $LABSYNC_CONFIG, ./labsync.yaml, ~/.config/labsync/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: json, yaml, ansible-inventory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", "", "collection driver: snmp, ssh (aliases napalm, netmiko)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "exit non-zero when any device fails")
}

// topologyPath is the first argument or the configured topology
func topologyPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Topology == "" {
		return "", fmt.Errorf("no topology file: pass one as an argument or set topology in the config")
	}
	return cfg.Topology, nil
}

// loadSite reads the topology named by the first argument or the config
func loadSite(args []string) (*domain.Site, error) {
	path, err := topologyPath(args)
	if err != nil {
		return nil, err
	}

	topo, err := loader.LoadTopology(path)
	if err != nil {
		return nil, fmt.Errorf("load topology %s: %w", path, err)
	}

	site, err := loader.BuildSite(topo)
	if err != nil {
		return nil, fmt.Errorf("build site from %s: %w", path, err)
	}

	log.Info().Str("site", site.Name).Int("devices", site.Len()).Str("path", path).Msg("Topology loaded")
	return site, nil
}

// buildCredentials layers per-device config overrides, then mounted
// secrets, then the config or environment default pair
func buildCredentials() (credentials.Provider, error) {
	overrides := credentials.NewMap(nil)
	for name, c := range cfg.Credentials.Devices {
		overrides.Set(name, domain.Credentials{Username: c.Username, Password: c.Password})
	}

	mounted := credentials.NewMounted(log, cfg.Credentials.SecretsPaths...)
	if err := mounted.Load(); err != nil {
		return nil, err
	}

	var def *domain.Credentials
	if cfg.Credentials.Password != "" {
		def = domain.NewCredentials(cfg.Credentials.Username, cfg.Credentials.Password)
	}

	return credentials.Chain{overrides, mounted, credentials.NewMap(def)}, nil
}

// export writes v in the selected output format
func export(w io.Writer, v any, fallback string) error {
	format := outputFormat
	if format == "" {
		format = fallback
	}

	e, err := codec.New(format)
	if err != nil {
		return err
	}
	return e.Export(v, w)
}
