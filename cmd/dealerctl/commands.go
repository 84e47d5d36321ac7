package main

import (
	"fmt"
	"os"
	"time"

	"dealer-portal/internal/auth"
	"dealer-portal/internal/config"
	mmysql "dealer-portal/internal/infra/mysql"
	mredis "dealer-portal/internal/infra/redis"
	"dealer-portal/internal/logging"
	mysqlrepo "dealer-portal/internal/repository/mysql"
	"dealer-portal/internal/services"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.LogLevel, cfg.LogPretty)
	return nil
}

func (a *app) db() (*gorm.DB, error) {
	return mmysql.Open(a.cfg.MySQL)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "dealerctl",
		Short:             "Operator tasks for the dealer portal",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("CONFIG_FILE"), "env file to read before the environment")

	root.AddCommand(
		a.migrateCmd(),
		a.importCmd(),
		a.sweepCmd(),
		a.issueSessionCmd(),
		a.revokeSessionCmd(),
	)
	return root
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.db()
			if err != nil {
				return err
			}
			if err := mmysql.Migrate(db); err != nil {
				return err
			}
			a.log.Info().Msg("schema migrated")
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-products <file.csv>",
		Short: "Create or update products from a CSV price list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := a.db()
			if err != nil {
				return err
			}
			products := mysqlrepo.NewProductRepository(db)
			rdb := mredis.NewClient(a.cfg.Redis)
			defer rdb.Close()

			catalog := services.NewCatalogService(products, a.cfg.BrowsePageSize, a.log)
			catalog.SetBrowseCache(mredis.NewCache(rdb), a.cfg.BrowseCacheTTL)

			stats, err := services.NewImporter(products, catalog, a.log).Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total=%d created=%d updated=%d failed=%d\n", stats.Total, stats.Created, stats.Updated, stats.Failed)
			return nil
		},
	}
}

func (a *app) sweepCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "sweep-unpaid",
		Short: "Cancel stale unpaid orders; dealer orders are never touched",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.db()
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				olderThan = a.cfg.UnpaidOrderTimeout
			}
			orders := services.NewOrderService(mysqlrepo.NewTransactor(db), mysqlrepo.NewOrderRepository(db), mysqlrepo.NewUserRepository(db), nil, services.NewSessionLocks(), a.log)
			n, err := orders.SweepUnpaid(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled=%d\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "age after which a pending order counts as unpaid (default UNPAID_ORDER_TIMEOUT)")
	return cmd
}

func (a *app) issueSessionCmd() *cobra.Command {
	var userID uint64
	cmd := &cobra.Command{
		Use:   "issue-session",
		Short: "Issue a bearer session token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.db()
			if err != nil {
				return err
			}
			users := mysqlrepo.NewUserRepository(db)
			u, err := users.FindByID(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("user %d not found", userID)
			}
			rdb := mredis.NewClient(a.cfg.Redis)
			defer rdb.Close()

			token, err := auth.NewRedisSessions(rdb, users, a.cfg.SessionTTL).Issue(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&userID, "user-id", 0, "user to issue the session for")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func (a *app) revokeSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-session <token>",
		Short: "Revoke a bearer session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb := mredis.NewClient(a.cfg.Redis)
			defer rdb.Close()
			return auth.NewRedisSessions(rdb, nil, a.cfg.SessionTTL).Revoke(cmd.Context(), args[0])
		},
	}
}
