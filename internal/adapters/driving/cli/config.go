package cli

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docloader/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docloader/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show loader configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective loader settings as TOML",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a dotted config key. The value is parsed as a TOML value when possible
and stored as a string otherwise.

Examples:
  docloader config set loader.batch_size 100
  docloader config set loader.collections '["docs", "app"]'
  docloader config set loader.writer.type sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openConfig()
	if err != nil {
		return err
	}

	settings, err := file.LoadLoaderSettings(store)
	if err != nil {
		return err
	}

	table, err := settingsTable(settings)
	if err != nil {
		return err
	}

	out, err := toml.Marshal(map[string]any{file.LoaderSection: table})
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	cmd.Printf("# %s\n", store.Path())
	cmd.Print(string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], parseConfigValue(args[1])

	store, err := openConfig()
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if strings.HasPrefix(key, file.LoaderSection+".") {
		if _, err := file.LoadLoaderSettings(store); err != nil {
			return fmt.Errorf("saved %s, but the loader settings are now invalid: %w", key, err)
		}
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

// parseConfigValue reads raw as a TOML value, falling back to the plain string.
func parseConfigValue(raw string) any {
	var doc struct {
		V any `toml:"v"`
	}
	if err := toml.Unmarshal([]byte("v = "+raw), &doc); err != nil || doc.V == nil {
		return raw
	}
	return doc.V
}

// settingsTable converts settings into a table keyed like the config file.
func settingsTable(s domain.LoaderSettings) (map[string]any, error) {
	var table map[string]any
	if err := mapstructure.Decode(s, &table); err != nil {
		return nil, err
	}

	procs := make([]map[string]any, len(s.Processors))
	for i, p := range s.Processors {
		cfg := p.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		procs[i] = map[string]any{"name": p.Name, "config": cfg}
	}
	table["processors"] = procs
	return table, nil
}
