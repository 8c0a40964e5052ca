package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iiasa/ixmp/internal/config"
	"github.com/iiasa/ixmp/internal/platform"
	"github.com/iiasa/ixmp/internal/presentation"
)

var platformOpts []string

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Manage named platforms",
	Long: `Manage the named platforms stored under the "platform" configuration key.

The reserved name "default" is an alias for another platform.`,
}

var platformListCmd = &cobra.Command{
	Use:   "list",
	Short: "List platforms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadStore()
		if err != nil {
			return err
		}
		set, err := s.Platforms()
		if err != nil {
			return err
		}
		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		return f.FormatPlatforms(presentation.FromPlatforms(set))
	},
}

var platformInfoCmd = &cobra.Command{
	Use:   "info [NAME]",
	Short: "Print the record of a platform",
	Long: `Print the record of platform NAME, or of the default platform when NAME
is omitted or "default".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := platform.DefaultName
		if len(args) == 1 {
			name = args[0]
		}

		s, err := loadStore()
		if err != nil {
			return err
		}
		resolved, rec, err := s.GetPlatformInfo(name)
		if err != nil {
			return err
		}
		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		return f.FormatPlatform(resolved, rec)
	},
}

var platformAddCmd = &cobra.Command{
	Use:   "add NAME CLASS [ARGS...]",
	Short: "Add or replace a platform and save",
	Long: `Add platform NAME using backend CLASS. ARGS and --opt values are passed
to the backend, which shapes them into the stored record. An existing
platform with the same name is replaced.

Examples:
  ixmp platform add local jdbc hsqldb ~/data/localdb/default
  ixmp platform add shared jdbc oracle db.example:1521/SID user password
  ixmp platform add mem jdbc hsqldb --opt url=jdbc:hsqldb:mem:temp`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == platform.DefaultName {
			return fmt.Errorf("%w: use \"ixmp platform alias\" to set the default", config.ErrInvalidArguments)
		}
		kwargs, err := parseOpts(platformOpts)
		if err != nil {
			return err
		}
		return mutatePlatforms(cmd, func(s *config.Store) error {
			return s.AddPlatform(name, args[1:], kwargs)
		}, "Added platform %q", name)
	},
}

var platformAliasCmd = &cobra.Command{
	Use:   "alias NAME",
	Short: "Make an existing platform the default and save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlatforms(cmd, func(s *config.Store) error {
			return s.AddPlatform(platform.DefaultName, args, nil)
		}, "Default platform is now %q", args[0])
	},
}

var platformRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a platform and save",
	Long: `Remove platform NAME. The current default platform cannot be removed;
point the alias elsewhere with "ixmp platform alias" first, or remove the
"default" alias itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlatforms(cmd, func(s *config.Store) error {
			return s.RemovePlatform(args[0])
		}, "Removed platform %q", args[0])
	},
}

func init() {
	platformAddCmd.Flags().StringArrayVarP(&platformOpts, "opt", "o", nil, "backend option as key=value (repeatable)")

	platformCmd.AddCommand(platformListCmd, platformInfoCmd, platformAddCmd, platformAliasCmd, platformRemoveCmd)
	rootCmd.AddCommand(platformCmd)
}

// mutatePlatforms loads the store, applies fn and saves.
func mutatePlatforms(cmd *cobra.Command, fn func(*config.Store) error, done string, args ...any) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), done+" in %s\n", append(args, s.Path())...)
	return nil
}

func parseOpts(opts []string) (map[string]any, error) {
	kwargs := make(map[string]any, len(opts))
	for _, opt := range opts {
		key, value, ok := strings.Cut(opt, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: option %q is not key=value", config.ErrInvalidArguments, opt)
		}
		kwargs[key] = value
	}
	return kwargs, nil
}
