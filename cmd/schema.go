package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/registry"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [category]",
	Short: "Show the field schema for a category",
	Long:  "Without an argument, lists the known categories. With a category, shows the fields tracked for items of that category.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemas, err := registry.LoadSchemas(cfg.Registry.SchemasPath)
		if err != nil {
			return eris.Wrap(err, "load category schemas")
		}

		if len(args) == 0 {
			for _, category := range schemas.Categories() {
				fmt.Fprintln(os.Stdout, category)
			}
			return nil
		}

		schema := schemas.ForCategory(args[0])
		formatSchemaTable(os.Stdout, schema)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

// formatSchemaTable writes a category schema as a table to w.
func formatSchemaTable(out io.Writer, schema model.CategorySchema) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Category:\t%s\n", schema.Category)
	_, _ = fmt.Fprintln(w, "FIELD\tTYPE\tREQUIRED\tREQUIRED_BY")
	_, _ = fmt.Fprintln(w, "-----\t----\t--------\t-----------")

	for _, f := range schema.Fields {
		required := ""
		if f.Required {
			required = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			f.Name,
			f.DataType,
			required,
			f.RequiredBy,
		)
	}
	_ = w.Flush()
}
