// Package cmd provides the pageforge command-line interface.
//
// Configuration is read, from highest to lowest priority, from command-line
// flags, PAGEFORGE_* environment variables (a .env file in the working
// directory is loaded first) and the .pageforge.yml configuration file.
// Nested keys map to environment variables by replacing dots with
// underscores, e.g. PAGEFORGE_SERVER_PORT or PAGEFORGE_ROUTER_BASE.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pageforge/internal/config"
	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/renderer"
)

// ConfigFileEnv names a configuration file to use instead of .pageforge.yml.
const ConfigFileEnv = config.EnvPrefix + "_CONFIG_FILE"

var (
	cfgFile string

	// pageRegistry holds the compiled templ pages of the application
	// embedding the CLI.
	pageRegistry renderer.Registry
)

var rootCmd = &cobra.Command{
	Use:   "pageforge",
	Short: "File-system routed server rendering for templ",
	Long: `pageforge turns a directory of templ pages into a route table and serves
them through a server-side render pipeline.

Quick Start:
  pageforge init site  Create a new project in ./site
  pageforge dev        Start the development server with hot reload
  pageforge build      Build the project for production
  pageforge start      Serve a production build
  pageforge routes     Print the compiled route table`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI without any compiled pages. Every route renders
// client side.
func Execute() error {
	return ExecuteWithPages(nil)
}

// ExecuteWithPages runs the CLI with the application's page registry.
func ExecuteWithPages(pages renderer.Registry) error {
	pageRegistry = pages
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, pferrors.FormatErrorWithSuggestions(err))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .pageforge.yml, can also use "+ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	configureViper(viper.GetViper(), cfgFile)
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureViper points v at the configuration file and environment. A
// missing .env file is not an error.
func configureViper(v *viper.Viper, file string) {
	_ = godotenv.Load()

	if file == "" {
		file = os.Getenv(ConfigFileEnv)
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".pageforge")
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, pferrors.NewConfigError(pferrors.ErrCodeConfigInvalid, err.Error()).
			WithContext("field", "log.level")
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = cfg.Log.Format
	lc.Component = "pageforge"
	return logging.NewLogger(lc), nil
}

// loadConfig decodes the configuration, with dev forcing development mode.
func loadConfig(dev bool) (*config.Config, logging.Logger, error) {
	viper.Set("dev", dev)
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
