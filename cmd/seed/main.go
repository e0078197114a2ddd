package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/env"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logg.Error(ctx, "seeding failed", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}

	root := &cobra.Command{
		Use:           "seed",
		Short:         "seed loads demo goods and customers through the service APIs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.customerURL, "customer-url", env.First("http://localhost:8001/api/v1", config.EnvPrefix+"_SEED_CUSTOMER_URL", config.EnvPrefix+"_UPSTREAM_CUSTOMER_URL"), "customer service base URL")
	flags.StringVar(&opts.inventoryURL, "inventory-url", env.First("http://localhost:8002/api/v1", config.EnvPrefix+"_SEED_INVENTORY_URL", config.EnvPrefix+"_UPSTREAM_INVENTORY_URL"), "inventory service base URL")
	flags.StringVar(&opts.jwtSecret, "jwt-secret", os.Getenv(config.EnvPrefix+"_JWT_SECRET"), "secret used to mint the admin token for inventory writes")
	flags.StringVar(&opts.jwtIssuer, "jwt-issuer", os.Getenv(config.EnvPrefix+"_JWT_ISSUER"), "issuer of the minted admin token")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-request timeout")
	flags.Uint64Var(&opts.seed, "seed", uint64(time.Now().UnixNano()), "random seed for reproducible data")

	goods := &cobra.Command{
		Use:   "goods",
		Short: "Add random goods to the inventory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSeeder(cmd, opts)
			if err != nil {
				return err
			}
			return s.seedGoods(cmd.Context(), opts.goods)
		},
	}
	goods.Flags().IntVarP(&opts.goods, "count", "n", 10, "number of goods")

	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Register random customers and fund their wallets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSeeder(cmd, opts)
			if err != nil {
				return err
			}
			maxBalance, err := parseBalance(opts.maxBalance)
			if err != nil {
				return err
			}
			return s.seedCustomers(cmd.Context(), opts.customers, maxBalance)
		},
	}
	customersCmd.Flags().IntVarP(&opts.customers, "count", "n", 10, "number of customers")
	customersCmd.Flags().StringVar(&opts.maxBalance, "max-balance", "500", "upper bound of each starting wallet balance")

	all := &cobra.Command{
		Use:   "all",
		Short: "Seed goods and customers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSeeder(cmd, opts)
			if err != nil {
				return err
			}
			maxBalance, err := parseBalance(opts.maxBalance)
			if err != nil {
				return err
			}
			if err := s.seedGoods(cmd.Context(), opts.goods); err != nil {
				return err
			}
			return s.seedCustomers(cmd.Context(), opts.customers, maxBalance)
		},
	}
	all.Flags().IntVar(&opts.goods, "goods", 10, "number of goods")
	all.Flags().IntVar(&opts.customers, "customers", 10, "number of customers")
	all.Flags().StringVar(&opts.maxBalance, "max-balance", "500", "upper bound of each starting wallet balance")

	root.AddCommand(goods, customersCmd, all)
	return root
}

func buildSeeder(cmd *cobra.Command, opts options) (*seeder, error) {
	var token string
	if opts.jwtSecret != "" {
		var err error
		token, err = pkgAuth.MintAccessToken(config.JWTConfig{
			Secret:            opts.jwtSecret,
			Issuer:            opts.jwtIssuer,
			ExpirationMinutes: 15,
		}, time.Now(), pkgAuth.AccessTokenPayload{Username: "seed", Role: enums.CustomerRoleAdmin})
		if err != nil {
			return nil, fmt.Errorf("mint admin token: %w", err)
		}
	}
	return newSeeder(opts, token, cmd.OutOrStdout()), nil
}

func parseBalance(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid --max-balance %q", raw)
	}
	return d, nil
}
