package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/registry"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the research tool catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := registry.LoadCatalog(cfg.Registry.ToolsPath)
		if err != nil {
			return eris.Wrap(err, "load tool catalog")
		}

		formatToolsTable(os.Stdout, catalog.Tools())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// formatToolsTable writes the catalog as a table to w.
func formatToolsTable(out io.Writer, tools []model.Tool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPRIORITY\tCOST\tATTEMPTS\tREQUIRES\tFIELDS")
	_, _ = fmt.Fprintln(w, "--\t--------\t----\t--------\t--------\t------")

	for _, t := range tools {
		requires := strings.Join(t.Requires, ",")
		if requires == "" {
			requires = "-"
		}

		fields := strings.Join(t.Fields, ",")
		if len(fields) > 40 {
			fields = fields[:37] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%.0f\t$%.3f\t%d\t%s\t%s\n",
			t.ID,
			t.Priority,
			t.CostUsd,
			t.MaxAttempts,
			requires,
			fields,
		)
	}
	_ = w.Flush()
}
