package commands

import (
	"fmt"

	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Prints the stored snapshot as a table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)

			enriched := enrich.AnyEnriched(doc.ItemList)
			header := table.Row{"#", "Code", "Title"}
			if enriched {
				header = append(header, "Pages", "Language", "Grade Level", "Reading Age")
			}
			t.AppendHeader(header)

			for i, r := range doc.ItemList {
				row := table.Row{i + 1, r.ProductCode(), r.Title}
				if enriched {
					m := r.Metadata
					if m == nil {
						m = &enrich.Metadata{}
					}
					row = append(row, m.PageCount, m.Language, m.GradeLevel, m.ReadingAge)
				}
				t.AppendRow(row)
			}
			t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d items", len(doc.ItemList))})
			t.Render()

			return nil
		},
	}
}
