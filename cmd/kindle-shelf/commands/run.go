package commands

import "github.com/spf13/cobra"

func newRunCmd(a *app) *cobra.Command {
	var (
		withEnrich bool
		out        string
	)

	cmd := &cobra.Command{
		Use:   "run [--enrich] [--out index.html]",
		Short: "Fetches the catalog, optionally enriches it, and renders the HTML table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Every credential the run needs is checked before any request.
			if err := a.cfg.ValidateCatalog(); err != nil {
				return err
			}
			if withEnrich {
				if err := a.cfg.ValidateEnrichment(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := a.collect(ctx, store); err != nil {
				return err
			}

			if withEnrich {
				doc, err := a.enrichStore(ctx, store)
				if err != nil {
					return err
				}
				return a.renderDocument(doc, out)
			}

			return a.renderStore(ctx, store, out)
		},
	}
	cmd.Flags().BoolVar(&withEnrich, "enrich", false, "Look up metadata for every item before rendering")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output HTML file (default $OUTPUT_HTML or index.html)")

	return cmd
}
