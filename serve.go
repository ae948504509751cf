package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/intrafind/ihub-apps-sub004/internal/authorize"
	"github.com/intrafind/ihub-apps-sub004/internal/client"
	"github.com/intrafind/ihub-apps-sub004/internal/config"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
	"github.com/intrafind/ihub-apps-sub004/internal/server"
	"github.com/intrafind/ihub-apps-sub004/internal/sessiontoken"
	"github.com/intrafind/ihub-apps-sub004/internal/store"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the authorization endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					logrus.WithError(err).WithField("file", envFile).Debug("env file not loaded")
				}
			}
			if err := logging.LoadLevel(); err != nil {
				logrus.WithError(err).Warn("using default log level")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := store.New(ctx, &cfg.Store)
	if err != nil {
		return err
	}
	defer stores.Close()

	clients, err := newClientStore(ctx, cfg)
	if err != nil {
		return err
	}

	verifier, err := sessiontoken.NewKeySetVerifierFromFile(cfg.Session.JWKSFile,
		cfg.Session.Issuer, cfg.Session.Audience)
	if err != nil {
		return err
	}

	api := authorize.NewAPI(authorize.Deps{
		Clients:  clients,
		Codes:    stores.Codes,
		Consents: stores.Consents,
		Sessions: stores.Sessions,
		Verifier: verifier,
		OAuth:    &cfg.OAuth,
		Session:  &cfg.Session,
	})
	defer api.Wait()

	s := server.New(&cfg.Server, api, stores.Ping,
		prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"addr":        cfg.Server.Addr,
			"store":       cfg.Store.Driver,
			"clientStore": cfg.ClientStore.Driver,
		}).Info("server started")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// newClientStore returns the registry selected by clientStore.driver. With
// postgres, clients declared in the config file are upserted on startup.
func newClientStore(ctx context.Context, cfg *config.Config) (client.Store, error) {
	static := client.NewStaticStore(cfg.Clients)
	if cfg.ClientStore.Driver == config.ClientStoreDriverStatic {
		return static, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.ClientStore.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open client database: %w", err)
	}
	st := client.NewGormStore(db)
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}
	for _, c := range cfg.Clients {
		seed, err := static.GetClient(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if err := st.SaveClient(ctx, seed); err != nil {
			return nil, err
		}
	}
	return st, nil
}
