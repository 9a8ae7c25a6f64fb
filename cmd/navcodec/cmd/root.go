package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ssargent/navcodec/pkg/codec"
	"github.com/ssargent/navcodec/pkg/config"
	"github.com/ssargent/navcodec/pkg/di"
	"github.com/ssargent/navcodec/pkg/logger"
	"github.com/ssargent/navcodec/pkg/navfile"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

type envKey struct{}

// env is what every command receives from the root pre-run: the effective
// configuration, the logger and the journal when one is enabled.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	journal di.Journal
}

func (e *env) processor() (*navfile.Processor, error) {
	var opts []navfile.Option
	if e.journal != nil {
		opts = append(opts, navfile.WithRecorder(e.journal))
	}
	return navfile.NewProcessor(e.cfg.Codec, e.log, opts...)
}

func (e *env) close() {
	if e.journal != nil {
		if err := e.journal.Close(); err != nil {
			e.log.Warn().Err(err).Msg("failed to close journal")
		}
		e.journal = nil
	}
	_ = e.log.Close()
}

// withEnv adapts fn to a cobra RunE that receives the environment set up by
// the root pre-run and releases it afterwards.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, ok := cmd.Context().Value(envKey{}).(*env)
		if !ok {
			return errors.New("command environment not initialized")
		}
		defer e.close()
		return fn(cmd, args, e)
	}
}

// NewRootCmd builds the navcodec command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "navcodec",
		Short: "NAV file decoder and encoder",
		Long: `navcodec converts NAV files to text and back.

A NAV file is a plaintext header followed by content XORed with a single byte
key. Decoding keeps the leading bytes below the header threshold and XORs the
rest; encoding keeps the leading short lines and XORs everything from the first
long line on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, true)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default "+config.GetDefaultConfigPath()+")")
	flags.StringP("xor-key", "k", "", "XOR key, decimal or 0x-prefixed hex (default 0x85)")
	flags.StringP("directory", "d", "", "directory for auto-processing (default current directory)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Int("steps", codec.DefaultProgressSteps, "progress milestones per transform")
	flags.String("encoding", codec.DefaultTextEncoding, "text encoding of decoded files")
	flags.String("journal-dir", "", "record runs in a journal stored in this directory")

	rootCmd.AddCommand(
		newDecodeCmd(),
		newEncodeCmd(),
		newAutoCmd(),
		newServeCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newServiceCmd(),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log, logErr := logger.New(logger.DefaultConfig())
		if logErr != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		} else {
			log.Error().Err(err).Msg("Operation failed")
		}
		os.Exit(1)
	}
}

// loadEnv reads the config file, applies flag overrides and sets up logging.
// The journal is opened only when withJournal is set and it is enabled.
func loadEnv(cmd *cobra.Command, withJournal bool) (*env, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(flags, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Logging.Out == nil && cmd.ErrOrStderr() != os.Stderr {
		cfg.Logging.Out = cmd.ErrOrStderr()
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log}
	if withJournal && cfg.Journal.Enabled {
		if container == nil {
			_ = log.Close()
			return nil, fmt.Errorf("dependency container not initialized")
		}
		j, err := container.GetJournalOpener()(cfg.Journal.Dir)
		if err != nil {
			_ = log.Close()
			return nil, err
		}
		e.journal = j
		log.Debug().Str("dir", cfg.Journal.Dir).Msg("journal opened")
	}
	return e, nil
}

// loadConfig loads the file at path. Without an explicit path the default
// location is used when it exists and built-in defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	if defaultPath := config.GetDefaultConfigPath(); config.ConfigExists(defaultPath) {
		return config.LoadConfig(defaultPath)
	}
	return config.DefaultConfig(), nil
}

// applyFlags overrides cfg with every flag given on the command line
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("xor-key") {
		s, _ := flags.GetString("xor-key")
		key, err := parseKey(s)
		if err != nil {
			return err
		}
		cfg.Codec.XORKey = key
	}
	if flags.Changed("directory") {
		cfg.Directory, _ = flags.GetString("directory")
	}
	if flags.Changed("verbose") {
		if verbose, _ := flags.GetBool("verbose"); verbose {
			cfg.Logging.Level = "debug"
		}
	}
	if flags.Changed("steps") {
		cfg.Codec.ProgressSteps, _ = flags.GetInt("steps")
	}
	if flags.Changed("encoding") {
		cfg.Codec.TextEncoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("journal-dir") {
		cfg.Journal.Dir, _ = flags.GetString("journal-dir")
		cfg.Journal.Enabled = true
	}
	return nil
}

// parseKey accepts a decimal or 0x-prefixed hexadecimal byte value
func parseKey(s string) (int, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: xor key %q must be a value between 0 and 255", codec.ErrInvalidConfig, s)
	}
	return int(v), nil
}
