package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docloader/internal/connectors/filesystem"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/services"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Inspect and load a modules directory",
	Long: `A modules directory holds REST services, library assets (ext), query
options, transforms and namespaces. Only assets are loaded as documents.`,
}

var modulesListCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List the modules found in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesList,
}

var modulesLoadCmd = &cobra.Command{
	Use:   "load <dir>",
	Short: "Load the assets of a modules directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesLoad,
}

func init() {
	addLoadFlags(modulesLoadCmd)
	modulesCmd.AddCommand(modulesListCmd)
	modulesCmd.AddCommand(modulesLoadCmd)
	rootCmd.AddCommand(modulesCmd)
}

func runModulesList(cmd *cobra.Command, args []string) error {
	modules, err := filesystem.NewModulesFinder().FindModules(args[0])
	if err != nil {
		return fmt.Errorf("failed to find modules: %w", err)
	}
	printModules(cmd, modules)
	return nil
}

func printModules(cmd *cobra.Command, m *domain.Modules) {
	printGroup(cmd, "Services", m.Services)

	assets := make([]string, len(m.Assets))
	for i, a := range m.Assets {
		assets[i] = a.URI
	}
	printGroup(cmd, "Assets", assets)
	printGroup(cmd, "Options", m.Options)
	printGroup(cmd, "Transforms", m.Transforms)
	printGroup(cmd, "Namespaces", m.Namespaces)

	if m.PropertiesFile != "" {
		cmd.Printf("REST properties: %s\n", m.PropertiesFile)
	}
}

func printGroup(cmd *cobra.Command, title string, items []string) {
	cmd.Printf("%s (%d)\n", title, len(items))
	for _, item := range items {
		cmd.Printf("  %s\n", item)
	}
}

func runModulesLoad(cmd *cobra.Command, args []string) error {
	settings, store, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	rt, err := buildLoader(settings, store)
	if err != nil {
		return err
	}
	defer rt.Close()

	finder := filesystem.NewModulesFinder()
	assets := services.NewAssetLoader(finder, rt.loader, finder.AssetsDir)

	docs, err := assets.LoadAssets(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load assets: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No assets to load.")
		return nil
	}
	cmd.Printf("Loaded %d assets.\n", len(docs))
	return nil
}
