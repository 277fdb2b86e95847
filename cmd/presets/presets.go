// Package presets provides the "hlockit presets" command for inspecting the
// configuration schema.
package presets

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mapforge/hlockit/internal/presets"
)

// schema is the full preset catalogue as one serializable document.
type schema struct {
	Features       []presets.Feature   `json:"features" yaml:"features"`
	Matchers       []presets.Matcher   `json:"matchers" yaml:"matchers"`
	Retrievals     []presets.Retrieval `json:"retrievals" yaml:"retrievals"`
	PairingMethods []string            `json:"pairingMethods" yaml:"pairing_methods"`
	CameraModels   []string            `json:"cameraModels" yaml:"camera_models"`
}

func fullSchema() schema {
	return schema{
		Features:       presets.Features,
		Matchers:       presets.Matchers,
		Retrievals:     presets.Retrievals,
		PairingMethods: presets.PairingMethods,
		CameraModels:   presets.CameraModels,
	}
}

// NewCommand creates the "presets" command group.
func NewCommand() *cobra.Command {
	var yamlOut bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the supported extractor, matcher, and retrieval presets",
		Long:  "Shows every preset name the workflow commands accept, with defaults marked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(fullSchema())
			}
			if yamlOut {
				data, err := yaml.Marshal(fullSchema())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			}
			printPretty(cmd)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yamlOut, "yaml", false, "Output the schema as YAML")

	cmd.AddCommand(newListCommand("features", "List feature extractor presets", func(c *cobra.Command) {
		for _, f := range presets.Features {
			printEntry(c, f.Name, f.Description, f.Name == presets.DefaultFeature)
		}
	}))
	cmd.AddCommand(newListCommand("matchers", "List feature matcher presets", func(c *cobra.Command) {
		for _, m := range presets.Matchers {
			desc := m.Description
			if m.HasWeights {
				desc += " (indoor/outdoor weights)"
			}
			printEntry(c, m.Name, desc, m.Name == presets.DefaultMatcher)
		}
	}))
	cmd.AddCommand(newListCommand("retrievals", "List retrieval presets", func(c *cobra.Command) {
		for _, r := range presets.Retrievals {
			printEntry(c, r.Name, r.Description, r.Name == presets.DefaultRetrieval)
		}
	}))

	return cmd
}

func newListCommand(use, short string, print func(*cobra.Command)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			print(cmd)
			return nil
		},
	}
}

func printPretty(cmd *cobra.Command) {
	header := color.New(color.Bold, color.FgCyan)

	header.Fprintln(cmd.OutOrStdout(), "Features")
	for _, f := range presets.Features {
		printEntry(cmd, f.Name, f.Description, f.Name == presets.DefaultFeature)
	}
	header.Fprintln(cmd.OutOrStdout(), "\nMatchers")
	for _, m := range presets.Matchers {
		printEntry(cmd, m.Name, m.Description, m.Name == presets.DefaultMatcher)
	}
	header.Fprintln(cmd.OutOrStdout(), "\nRetrievals")
	for _, r := range presets.Retrievals {
		printEntry(cmd, r.Name, r.Description, r.Name == presets.DefaultRetrieval)
	}
	header.Fprintln(cmd.OutOrStdout(), "\nPairing methods")
	for _, p := range presets.PairingMethods {
		printEntry(cmd, p, "", p == presets.DefaultPairing)
	}
	header.Fprintln(cmd.OutOrStdout(), "\nCamera models")
	for _, m := range presets.CameraModels {
		printEntry(cmd, m, "", m == presets.DefaultCameraModel)
	}
}

func printEntry(cmd *cobra.Command, name, desc string, isDefault bool) {
	marker := "  "
	if isDefault {
		marker = color.GreenString("* ")
	}
	if desc == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, name)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%-22s %s\n", marker, name, desc)
}
