package main

import (
	"errors"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codepetca/pika-sub005/internal/config"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "pika-history",
		Short: "Document revision history tooling",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(
		newRecordCommand(),
		newReplayCommand(),
		newReportCommand(),
		newTimelineCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Float64("snapshot-threshold", defaults.GetFloat64("snapshot.threshold_ratio"), "Patch weight ratio at which a save stores a full snapshot")
	cmd.PersistentFlags().Float64("keystroke-ratio", defaults.GetFloat64("authenticity.keystroke_ratio"), "Minimum keystrokes per added character before flagging")
	cmd.PersistentFlags().Float64("wps-ceiling", defaults.GetFloat64("authenticity.wps_ceiling"), "Words per second above which an interval is flagged")
	cmd.PersistentFlags().String("timezone", defaults.GetString("timeline.timezone"), "IANA timezone for timeline grouping")

	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "snapshot.threshold_ratio", "snapshot-threshold")
	bindFlag(cmd, "authenticity.keystroke_ratio", "keystroke-ratio")
	bindFlag(cmd, "authenticity.wps_ceiling", "wps-ceiling")
	bindFlag(cmd, "timeline.timezone", "timezone")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}
