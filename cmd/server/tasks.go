package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/router"
	"github.com/iliyamo/venue-booking/internal/utils"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire lapsed holds once and exit (for an external scheduler)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openMySQL(cmd.Context(), cfg, false, log)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := booking.NewService(repository.NewMySQLStore(db), nil, log, nil)
			n, err := svc.ExpireStaleHolds(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d holds\n", n)
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openMySQL(cmd.Context(), cfg, false, log)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info("migrations complete", zap.Strings("applied", applied))
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(applied))
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		org     string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an owner JWT for an organization (development tooling)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = time.Duration(cfg.AccessTTLMin) * time.Minute
			}
			tok, err := utils.NewAccessToken(cfg.JWTSecret, subject, router.RoleOwner, org, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization the owner manages")
	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject (owner id)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_TTL_MIN)")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
