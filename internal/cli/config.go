package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mountstack/mountstack/internal/config"
	"github.com/spf13/cobra"
)

var configKeys = []string{
	config.KeyPackageManager,
	config.KeyLogLevel,
	config.KeyDefaultDestination,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/.mountstack/config.yaml.

Keys: ` + strings.Join(configKeys, ", "),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := checkConfigKey(key); err != nil {
			return err
		}
		if key == config.KeyDefaultDestination {
			if err := ValidateDestination(value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkConfigKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

func checkConfigKey(key string) error {
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(configKeys, ", "))
	}
	return nil
}
