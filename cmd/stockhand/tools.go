package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockhand/internal/catalog"
)

func toolsCmd() *cobra.Command {
	var asSchema bool
	cmd := &cobra.Command{
		Use:          "tools",
		Short:        "List the available inventory tools",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cat := catalog.MustDefault()
			for _, spec := range cat.Specs() {
				if asSchema {
					schema, err := spec.SchemaJSON()
					if err != nil {
						return err
					}
					fmt.Printf("%s:\n%s\n", spec.Name, schema)
					continue
				}
				fmt.Printf("%s: %s\n", spec.Name, spec.Description)
				for _, f := range spec.Fields {
					req := "optional"
					if f.Required {
						req = "required"
					}
					fmt.Printf("    %-20s %-8s %-9s %s\n", f.Name, f.Type, req, f.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asSchema, "schema", false, "print JSON Schemas instead of a summary")
	return cmd
}
