package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

var partnersCmd = &cobra.Command{
	Use:   "partners",
	Short: "List the partner profiles available for login",
	Long: `List the device profiles that can be used for the partner handshake.

The built-in profiles can be replaced with a YAML file set as
pandora.partners_file in the config.`,
	RunE: runPartners,
}

func init() {
	rootCmd.AddCommand(partnersCmd)
}

func runPartners(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	registry := pandora.DefaultRegistry()
	if cfg.Pandora.PartnersFile != "" {
		registry, err = pandora.LoadRegistryFile(cfg.Pandora.PartnersFile)
		if err != nil {
			return fmt.Errorf("failed to load partners: %w", err)
		}
	}

	for _, name := range registry.Names() {
		p, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == cfg.Pandora.Partner {
			marker = "*"
		}
		fmt.Printf("%s %-10s %-16s %s\n", marker, p.Name, p.DeviceModel, p.Username)
	}
	return nil
}
