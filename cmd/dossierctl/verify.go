package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"dossier/internal/evidence/models"
	"dossier/internal/evidence/receipt"
	"dossier/internal/evidence/service"
	id "dossier/pkg/domain"
)

func newVerifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <pack.json>",
		Short: "Recompute and check every hash in an issued evidence pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read pack: %w", err)
			}
			var pack models.EvidencePack
			if err := json.Unmarshal(raw, &pack); err != nil {
				return fmt.Errorf("parse pack: %w", err)
			}

			result, err := service.Verify(&pack)
			if err != nil {
				return fmt.Errorf("verify pack: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pack_hash_ok: %v\n", result.PackHashOK)
			fmt.Fprintf(out, "chain_ok:     %v\n", result.ChainOK)
			if len(result.BadEntries) > 0 {
				fmt.Fprintf(out, "bad entries:  %v\n", result.BadEntries)
			}

			if cfg.RedisURL != "" {
				isLatest, err := checkReceipt(cmd.Context(), cfg, &pack)
				if err != nil {
					fmt.Fprintf(out, "receipt:      unavailable (%v)\n", err)
				} else {
					fmt.Fprintf(out, "is_latest:    %v\n", isLatest)
				}
			}

			if !result.Valid {
				return fmt.Errorf("pack failed verification")
			}
			fmt.Fprintln(out, "pack verified")
			return nil
		},
	}
}

func checkReceipt(ctx context.Context, cfg ctlConfig, pack *models.EvidencePack) (bool, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return false, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store := receipt.NewRedis(client, 24*time.Hour)
	latest, err := store.Latest(ctx, id.ListingID(pack.Subject.Listing.ID))
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, fmt.Errorf("no receipt for listing %s", pack.Subject.Listing.ID)
	}
	return latest.PackHash == pack.Integrity.PackHash, nil
}
