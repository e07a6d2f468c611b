package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dossier/internal/evidence/redact"
)

func newRedactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redact <payload.json>",
		Short: "Apply payload redaction to a JSON document and print the result",
		Long: "Runs the same key-based redaction used when assembling evidence\n" +
			"packs. Useful for previewing what a payload will look like in an\n" +
			"exported pack before sharing it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			var payload any
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("parse payload: %w", err)
			}

			out, err := json.MarshalIndent(redact.Payload(payload), "", "  ")
			if err != nil {
				return fmt.Errorf("encode redacted payload: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
