package commands

import "github.com/spf13/cobra"

func newRenderCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render [--out index.html]",
		Short: "Renders the stored snapshot as a sortable HTML table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			return a.renderStore(cmd.Context(), store, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output HTML file (default $OUTPUT_HTML or index.html)")

	return cmd
}
