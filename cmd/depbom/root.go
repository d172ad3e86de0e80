package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	slogcontext "github.com/veqryn/slog-context"
)

const (
	flagConfig    = "config"
	flagLogLevel  = "loglevel"
	flagLogFormat = "logformat"

	envPrefix  = "DEPBOM"
	configName = ".depbom"
)

type rootOptions struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "depbom",
		Short: "Generate CycloneDX bills of materials for multi-module JVM builds",
		Long: `depbom records every third-party artifact consumed by a multi-module build in a
CycloneDX 1.4 document, with content hashes and publisher, description and license
data taken from each artifact's Maven descriptor.

Settings are read from flags, then DEPBOM_* environment variables, then a
.depbom.yaml file in the working directory (or the file given with --config).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "path to a configuration file (default ./.depbom.yaml)")
	flags.String(flagLogLevel, "info", "log level: debug, info, warn or error")
	flags.String(flagLogFormat, "text", "log format: text or json")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration for cmd and installs the logger in its context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := o.loadConfig(cmd); err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), o.v.GetString(flagLogLevel), o.v.GetString(flagLogFormat))
	if err != nil {
		return err
	}
	o.logger = logger
	cmd.SetContext(slogcontext.NewCtx(cmd.Context(), logger))
	return nil
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) error {
	v := o.v
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// newLogger builds the CLI logger writing to w.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", flagLogLevel, level, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid --%s %q: want text or json", flagLogFormat, format)
	}
}

// flagChanged reports whether a flag was set on the command line or through
// the environment or the config file.
func (o *rootOptions) flagChanged(fs *pflag.FlagSet, name string) bool {
	if f := fs.Lookup(name); f != nil && f.Changed {
		return true
	}
	return o.v.InConfig(name) || o.envSet(name)
}

func (o *rootOptions) envSet(name string) bool {
	key := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	_, ok := os.LookupEnv(key)
	return ok
}
