// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/vgrid/internal/config"
	"github.com/xkilldash9x/vgrid/internal/observability"
)

type contextKey string

// configKey stores the validated config in the command context.
const configKey contextKey = "config"

// annotationFullScreen marks commands that take over the terminal. Their
// logs go to the log file only.
const annotationFullScreen = "vgrid.full_screen"

var fallbackLoggerConfig = config.LoggerConfig{Level: "info", Format: "console", ServiceName: "vgrid"}

// NewRootCommand builds a fresh command tree. Every call returns independent
// flag state, which keeps tests isolated.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile       string
		catalogDriver string
		catalogDSN    string
	)

	cmd := &cobra.Command{
		Use:   "vgrid",
		Short: "vgrid renders large item catalogs as virtualized grids.",
		Long: `vgrid lays out report sections as responsive grids and only materializes
the rows around the viewport. The same grid engine drives a full-screen
terminal view (browse) and a live Chrome page (chrome).`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)
			if err := initializeConfig(v, cfgFile); err != nil {
				observability.InitializeLogger(fallbackLoggerConfig)
				return err
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(fallbackLoggerConfig)
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			// Flags take precedence over the file and environment.
			flags := cmd.Flags()
			if flags.Changed("catalog") {
				cfg.SetCatalogDriver(catalogDriver)
			}
			if flags.Changed("dsn") {
				cfg.SetCatalogDSN(catalogDSN)
			}
			if err := cfg.Validate(); err != nil {
				observability.InitializeLogger(fallbackLoggerConfig)
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if _, ok := cmd.Annotations[annotationFullScreen]; ok {
				observability.InitializeFileOnly(cfg.Logger())
			} else {
				observability.Initialize(cfg.Logger(), zapcore.Lock(os.Stderr))
			}
			observability.GetLogger().Debug("Starting vgrid", zap.String("version", Version), zap.String("command", cmd.Name()))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./vgrid.yaml, then ~/.vgrid/vgrid.yaml)")
	cmd.PersistentFlags().StringVar(&catalogDriver, "catalog", "", "catalog driver: synthetic, sqlite or postgres")
	cmd.PersistentFlags().StringVar(&catalogDSN, "dsn", "", "catalog data source name")
	cmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newChromeCmd())
	cmd.AddCommand(newLayoutCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the command tree with a signal-aware context.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	observability.Sync()
	return err
}

// initializeConfig reads the config file and VGRID_* environment variables into v.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".vgrid"))
		}
		v.SetConfigName("vgrid")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("VGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}
	return nil
}

// configFrom returns the config stored by the root command.
func configFrom(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}
