package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dossier/pkg/secrets"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Generate an operator token and its bcrypt hash",
		Long: "Prints a fresh operator token and the hash to set as\n" +
			"DOSSIER_OPERATOR_TOKEN_HASH. The plaintext token is shown once;\n" +
			"only the hash is stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := secrets.Generate()
			if err != nil {
				return err
			}
			hash, err := secrets.Hash(token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token: %s\n", token)
			fmt.Fprintf(out, "hash:  %s\n", hash)
			return nil
		},
	}
}
