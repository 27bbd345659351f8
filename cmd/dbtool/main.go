package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"foodcart-service/internal/adapters/repositories"
	"foodcart-service/internal/bootstrap"
	"foodcart-service/internal/config"
	"foodcart-service/internal/platform/db"
	"foodcart-service/internal/platform/logger"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type dbFlags struct {
	driver string
	dsn    string
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	flags := &dbFlags{}
	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Operator tooling for the foodcart database and geocoding cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	driver := config.Get("DB_DRIVER", db.DriverSqlite)
	dsn := config.Get("DB_PATH", "data/app.db")
	if driver == db.DriverPostgres {
		dsn = config.Get("DATABASE_URL", "")
	}
	root.PersistentFlags().StringVar(&flags.driver, "driver", driver, "database driver (sqlite or pgx)")
	root.PersistentFlags().StringVar(&flags.dsn, "dsn", dsn, "sqlite file path or postgres URL")

	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newSeedCmd(flags))
	root.AddCommand(newGeocodeCmd(flags))
	root.AddCommand(newLocationsCmd(flags))
	return root
}

func (f *dbFlags) open() (*sql.DB, error) {
	if f.dsn == "" {
		return nil, fmt.Errorf("no data source for driver %q: set --dsn, DB_PATH or DATABASE_URL", f.driver)
	}
	return db.Open(f.driver, f.dsn)
}

func newInitCmd(flags *dbFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.open()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := repositories.InitSchema(cmd.Context(), d, flags.driver); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}

func newSeedCmd(flags *dbFlags) *cobra.Command {
	var path string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Load restaurants, products, menu items and orders from JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.open()
			if err != nil {
				return err
			}
			defer d.Close()

			ctx := cmd.Context()
			if err := repositories.InitSchema(ctx, d, flags.driver); err != nil {
				return err
			}
			if err := repositories.SeedFromJSON(ctx, d, flags.driver, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded from %s\n", path)
			return nil
		},
	}

	c.Flags().StringVar(&path, "file", config.Get("SEED_PATH", "data/seeds/catalog.json"), "seed JSON file")
	return c
}

func newGeocodeCmd(flags *dbFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve one address through the cache and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.DB.Driver = flags.driver

			log, err := logger.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			d, err := flags.open()
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Geocoder.Timeout)
			defer cancel()

			stack, err := bootstrap.NewGeocodeStack(ctx, cfg, d, log)
			if err != nil {
				return err
			}
			defer stack.Close()

			coords, ok := stack.Cache.Resolve(ctx, args[0])
			out := map[string]any{"address": args[0], "found": ok}
			if ok {
				out["lat"], out["lon"] = coords.Lat, coords.Lon
			}
			log.Debug("geocode done", zap.Bool("found", ok))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func newLocationsCmd(flags *dbFlags) *cobra.Command {
	var limit, offset int
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "locations",
		Short: "List cached geocoding records",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.open()
			if err != nil {
				return err
			}
			defer d.Close()

			store, err := bootstrap.NewLocationStore(flags.driver, d, zap.NewNop())
			if err != nil {
				return err
			}

			locs, err := store.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADDRESS\tLAT\tLON\tUPDATED\tEXPIRED")
			for _, l := range locs {
				lat, lon := "-", "-"
				if l.Coordinates != nil {
					lat = fmt.Sprintf("%.6f", l.Coordinates.Lat)
					lon = fmt.Sprintf("%.6f", l.Coordinates.Lon)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", l.Address, lat, lon, l.UpdatedAt.Format(time.RFC3339), l.Expired(now, ttl))
			}
			return w.Flush()
		},
	}

	c.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	c.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	c.Flags().DurationVar(&ttl, "ttl", 720*time.Hour, "freshness window used for the EXPIRED column")
	return c
}
