package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iiasa/ixmp/internal/config"
	"github.com/iiasa/ixmp/internal/log"
	"github.com/iiasa/ixmp/internal/presentation"
	"github.com/iiasa/ixmp/internal/watcher"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration values",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print all configuration values",
	Long: `Print every configuration value: registered keys with their current
or default values, and unregistered keys kept from the configuration file.

Examples:
  ixmp config show
  ixmp config show --format yaml
  ixmp config show -f json | jq '.platform'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadStore()
		if err != nil {
			return err
		}
		return showValues(cmd, s)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStore()
		if err != nil {
			return err
		}
		v, err := s.Get(args[0])
		if err != nil {
			return err
		}
		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		return f.FormatValue(presentation.Plain(v))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value and save",
	Long: `Convert VALUE to the registered type of KEY, store it and save the
configuration file. Lists and maps are given as JSON.

Examples:
  ixmp config set platform '{"default": "local", "local": {"class": "jdbc", "driver": "hsqldb", "path": "/data/db"}}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStore()
		if err != nil {
			return err
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], s.Path())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use and the directories searched",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadStore()
		if err != nil {
			return err
		}

		var candidates []presentation.CandidateDTO
		for c := range s.Resolver().Candidates() {
			_, statErr := os.Stat(filepath.Join(c.Path, config.ConfigFile))
			candidates = append(candidates, presentation.CandidateDTO{
				Label:  c.Label,
				Path:   c.Path,
				Exists: statErr == nil,
			})
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		return f.FormatCandidates(s.Path(), candidates)
	},
}

var configWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print configuration values whenever the file changes",
	Long: `Watch the configuration file and print all values each time it
changes. Without a configuration file, the file that "ixmp config set" would
write is watched. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runConfigWatch,
}

func init() {
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configPathCmd, configWatchCmd)
	rootCmd.AddCommand(configCmd)
}

func showValues(cmd *cobra.Command, s *config.Store) error {
	f, err := formatter(cmd)
	if err != nil {
		return err
	}
	return f.FormatValues(presentation.FromValues(s.Values(), s.Registry()))
}

func runConfigWatch(cmd *cobra.Command, _ []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}

	path := s.Path()
	if path == "" {
		first, ok := s.Resolver().First()
		if !ok {
			return config.ErrNoConfigDir
		}
		if err := os.MkdirAll(first.Path, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		path = filepath.Join(first.Path, config.ConfigFile)
	}

	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", path)
	if err := showValues(cmd, s); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-onChange:
			s.Clear()
			if err := s.Read(); err != nil {
				// Keep watching: the file may be mid-edit.
				log.ErrorErr(log.CatWatcher, "Reloading config failed", err, "path", path)
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", singleLine(err))
				continue
			}
			if err := showValues(cmd, s); err != nil {
				return err
			}
		}
	}
}
