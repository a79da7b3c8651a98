// Package persistctl implements the persistctl command line tool for reading
// and editing persisted state entries.
package persistctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	persist "github.com/goliatone/go-persist"
	"github.com/goliatone/go-persist/layering"
	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment variables read for flags, for example
// PERSISTCTL_BACKEND.
const EnvPrefix = "PERSISTCTL"

// NewRootCommand returns persistctl wired to the real backends.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(OpenBackend)
}

// NewRootCommandWith returns persistctl using open to reach storage.
func NewRootCommandWith(open Opener) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "persistctl",
		Short:         "persistctl inspects and edits persisted state entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.String("backend", BackendMemory, "storage backend: memory, bolt, sqlite, redis or s3")
	flags.String("dsn", "", "backend address: file path, redis address or s3 endpoint")
	flags.String("bucket", "", "bolt bucket or s3 bucket")
	flags.String("prefix", "", "namespace prepended to every key")
	flags.String("region", "us-east-1", "s3 region")
	flags.Bool("verbose", false, "log backend activity")
	_ = v.BindPFlags(flags)

	env := &environment{viper: v, open: open}
	root.AddCommand(
		newGetCmd(env),
		newSetCmd(env),
		newRemoveCmd(env),
		newDescribeCmd(env),
		newListCmd(env),
	)
	return root
}

type environment struct {
	viper *viper.Viper
	open  Opener
}

func (e *environment) settings() Settings {
	return Settings{
		Backend: e.viper.GetString("backend"),
		DSN:     e.viper.GetString("dsn"),
		Bucket:  e.viper.GetString("bucket"),
		Prefix:  e.viper.GetString("prefix"),
		Region:  e.viper.GetString("region"),
	}
}

func (e *environment) logger() *zap.Logger {
	if !e.viper.GetBool("verbose") {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// with opens the backend for the duration of fn.
func (e *environment) with(cmd *cobra.Command, fn func(storage.Storage) error) (err error) {
	logger := e.logger()
	defer func() { _ = logger.Sync() }()

	backend, closer, err := e.open(cmd.Context(), e.settings(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(backend)
}

func newGetCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY [PATH]",
		Short: "Print the entry stored under KEY, or the value at PATH inside it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.with(cmd, func(backend storage.Storage) error {
				state, err := loadEntry(backend, args[0])
				if err != nil {
					return err
				}
				var value any = state
				if len(args) == 2 {
					found, ok := layering.Get(state, args[1])
					if !ok {
						return fmt.Errorf("%w: %s", persist.ErrPathNotFound, args[1])
					}
					value = found
				}
				return writeJSON(cmd.OutOrStdout(), value)
			})
		},
	}
}

func newSetCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY JSON",
		Short: "Store a JSON object under KEY, replacing any previous entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state map[string]any
			if err := json.Unmarshal([]byte(args[1]), &state); err != nil || state == nil {
				return fmt.Errorf("%w: value must be a JSON object", persist.ErrMalformedPayload)
			}
			return env.with(cmd, func(backend storage.Storage) error {
				return persist.JSONSetState(args[0], state, backend)
			})
		},
	}
}

func newRemoveCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY",
		Aliases: []string{"remove"},
		Short:   "Remove the entry stored under KEY",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.with(cmd, func(backend storage.Storage) error {
				return persist.RemoveState(args[0], backend)
			})
		},
	}
}

func newDescribeCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "describe KEY",
		Short: "List the leaf paths of the entry stored under KEY with their types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.with(cmd, func(backend storage.Storage) error {
				state, err := loadEntry(backend, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PATH\tTYPE\tKIND")
				for _, field := range persist.Describe(state) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", field.Path, field.Type, field.Kind)
				}
				return w.Flush()
			})
		},
	}
}

func newListCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PREFIX]",
		Short: "List stored keys, optionally only those starting with PREFIX",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return env.with(cmd, func(backend storage.Storage) error {
				keys, err := storage.Keys(backend, prefix)
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	}
}

func loadEntry(backend storage.Storage, key string) (map[string]any, error) {
	state, err := persist.JSONGetState(key, backend)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
	}
	return state, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return errors.Join(errors.New("encode output"), err)
	}
	return nil
}
