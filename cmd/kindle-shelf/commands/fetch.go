package commands

import "github.com/spf13/cobra"

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Pages through the catalog listing and stores every item in the snapshot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateCatalog(); err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			_, err = a.collect(cmd.Context(), store)
			return err
		},
	}
}
