package commands

import "github.com/spf13/cobra"

func newEnrichCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Looks up page count, language, grade level and reading age for every stored item.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateEnrichment(); err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			_, err = a.enrichStore(cmd.Context(), store)
			return err
		},
	}
}
