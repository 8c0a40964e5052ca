package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iiasa/ixmp/internal/config"
	"github.com/iiasa/ixmp/internal/log"
	"github.com/iiasa/ixmp/internal/presentation"
)

var (
	version    = "dev"
	logCleanup func()
)

// loadStore builds the store commands operate on.
func loadStore() (*config.Store, error) {
	return config.Load()
}

var rootCmd = &cobra.Command{
	Use:   "ixmp",
	Short: "Manage ixmp configuration and platforms",
	Long: `Manage the ixmp configuration file and the named platforms used to
connect to ixmp backends.

Configuration is read from config.json in the first of these directories
that has one, and saved to the first of them:
  $IXMP_DATA
  $XDG_DATA_HOME/ixmp
  ~/.local/share/ixmp`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().Bool("debug", false, "log debug messages (env IXMP_DEBUG)")
	rootCmd.PersistentFlags().String("log-file", "", "write log messages to this file instead of stderr (env IXMP_LOG_FILE)")
	rootCmd.PersistentFlags().StringP("format", "f", string(presentation.FormatText), "output format: text, json or yaml (env IXMP_FORMAT)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
}

// initViper binds IXMP_* environment variables. The configuration file
// itself is not read through viper: viper folds key case, and platform
// names are case-sensitive.
func initViper() {
	viper.SetEnvPrefix("ixmp")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	if path := viper.GetString("log_file"); path != "" {
		cleanup, err := log.Init(path)
		if err != nil {
			return err
		}
		logCleanup = cleanup
	} else {
		log.SetOutput(cmd.ErrOrStderr())
	}

	if viper.GetBool("debug") {
		log.SetMinLevel(log.LevelDebug)
	} else {
		log.SetMinLevel(log.LevelWarn)
	}
	log.Debug(log.CatCLI, "Running command", "command", cmd.CommandPath())
	return nil
}

func formatter(cmd *cobra.Command) (*presentation.Formatter, error) {
	format, err := presentation.ParseFormat(viper.GetString("format"))
	if err != nil {
		return nil, err
	}
	return presentation.NewFormatter(cmd.OutOrStdout(), format), nil
}

// Execute runs the root command. Errors are printed as a single line.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", singleLine(err))
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func singleLine(err error) string {
	var pe *config.ParseError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s is not valid JSON: %v", pe.Path, pe.Err)
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
