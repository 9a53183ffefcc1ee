package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/alert"
	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/config"
	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/handler"
	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/repository"
	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/usecase"
	"github.com/vasapolrittideah/linkbridge/shared/auth"
	"github.com/vasapolrittideah/linkbridge/shared/discovery"
	"github.com/vasapolrittideah/linkbridge/shared/logger"
	"github.com/vasapolrittideah/linkbridge/shared/mailer"
	"github.com/vasapolrittideah/linkbridge/shared/middleware"
	"github.com/vasapolrittideah/linkbridge/shared/provider"
	"github.com/vasapolrittideah/linkbridge/shared/telemetry"
	"github.com/vasapolrittideah/linkbridge/shared/utilities"
	"github.com/vasapolrittideah/linkbridge/shared/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logger.New("link-service", "info", false)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New("link-service", cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Fatal().Err(err).Msg("link-service stopped with error")
	}

	log.Info().Msg("link-service stopped cleanly")
}

func run(ctx context.Context, log *zerolog.Logger, cfg *config.LinkServiceConfig) error {
	shutdownTracing, err := telemetry.Setup(ctx, "link-service", cfg.TracingEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}()

	accountRepo := repository.NewAccountMongoRepository(ctx, log, client.Database(cfg.Mongo.Database))

	roleProvider, err := provider.NewDiscordRoleProvider(cfg.Discord.BotToken, cfg.Discord.GuildID, cfg.Discord.RoleID)
	if err != nil {
		return err
	}

	var alerter usecase.OperatorAlerter
	if cfg.Alert.Enabled {
		mailAlerter := alert.NewMailAlerter(log, mailer.NewMailer(log), cfg.Alert.To)
		defer mailAlerter.Close()
		alerter = mailAlerter
	}

	linkUsecase := usecase.NewTracedLinkUsecase(
		usecase.NewLinkUsecase(log, accountRepo, roleProvider, alerter, cfg.GrantTimeout),
	)
	reconcileUsecase := usecase.NewTracedReconcileUsecase(
		usecase.NewReconcileUsecase(log, accountRepo, roleProvider, alerter),
	)

	validator, err := validation.NewValidator()
	if err != nil {
		return err
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Caller.Audience, cfg.Caller.Issuer)
	authMiddleware := middleware.NewJWTMiddleware(log, jwtAuth, cfg.Caller.Secret, []string{handler.HealthPath})
	linkHandler := handler.NewLinkHTTPHandler(log, linkUsecase, reconcileUsecase, validator)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(log, authMiddleware, linkHandler, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := utilities.RegisterHealthServer(grpcServer)

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	if cfg.Consul.Enabled {
		registry, err := discovery.NewConsulRegistry(cfg.Consul.Address)
		if err != nil {
			return err
		}

		serviceID, err := registry.Register(discovery.ServiceRegistration{
			Name:    cfg.Consul.ServiceName,
			Address: cfg.Consul.ServiceAddress,
			Tags:    []string{"link", "http", "grpc"},
		})
		if err != nil {
			return err
		}
		log.Info().Str("service_id", serviceID).Msg("registered with consul")

		defer func() {
			if err := registry.Deregister(serviceID); err != nil {
				log.Error().Err(err).Str("service_id", serviceID).Msg("failed to deregister from consul")
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc health server listening")
		return grpcServer.Serve(grpcListener)
	})

	g.Go(func() error {
		utilities.WatchHealth(gctx, log, healthServer, accountRepo.Ping, cfg.HealthInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
