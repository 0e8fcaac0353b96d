package main

import (
	"chat-sync/api"
	"chat-sync/contract"
	"chat-sync/docstore"
	"chat-sync/internal"
	"chat-sync/notification"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/session"
	"chat-sync/storage"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server failure,
// so deferred cleanup always runs before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	store := docstore.NewStore(db, log)

	// 4. Push notifications
	if config.FCMServerKey == "" {
		log.Warn("FCM_SERVER_KEY is empty, push notifications will be rejected by the gateway")
	}
	gateway := notification.NewFCMGateway(config.FCMEndpoint, config.FCMServerKey, config.NotificationTimeout)
	dispatcher := notification.NewDispatcher(gateway, log, config.NotificationTimeout)
	defer dispatcher.Wait()

	// 5. Profile pictures, disabled without an object store
	var objects contract.IObjectStore
	if config.BlobStorageEnabled() {
		minio, err := storage.NewMinioStore(ctx, config.MinioEndpoint,
			config.MinioAccessKey, config.MinioSecretKey, config.MinioBucket, config.MinioUseSSL)
		if err != nil {
			return fmt.Errorf("object store failed: %w", err)
		}
		objects = minio
	} else {
		log.Info("MINIO_ENDPOINT is empty, profile pictures are disabled")
	}

	// 6. HTTP API
	router := api.NewRouter(api.Dependencies{
		Messages:        repositories.NewMessageRepository(store, log),
		Rooms:           repositories.NewRoomRepository(store, log),
		Users:           repositories.NewUserRepository(store, log),
		Notifier:        dispatcher,
		Pictures:        storage.NewProfilePictures(objects, log, config.MaxPictureBytes, config.PictureURLValidity),
		Registry:        runtime.NewRegistry(),
		Issuer:          session.NewIssuer(config.JWTSecret, config.AuthTokenDuration),
		Log:             log,
		AllowedOrigins:  config.Origins(),
		HistoryLimit:    config.HistoryLimit,
		SearchLimit:     config.SearchLimit,
		WriteTimeout:    config.WebsocketWriteTTL,
		RestartDelay:    config.RestartInterval,
		MaxRestartDelay: config.MaxRestartDelay,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// Hijacked websocket connections outlive Shutdown, they stop with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// 7. gRPC health for orchestrators
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting gRPC health server", "address", grpcAddress)
		if err := grpcServer.Serve(listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		log.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	grpcServer.GracefulStop()
	log.Info("Program stopped cleanly")

	return nil
}
