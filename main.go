package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/api"
	"github.com/beka-birhanu/vinom-snake-server/config"
	"github.com/beka-birhanu/vinom-snake-server/logger"
	"github.com/beka-birhanu/vinom-snake-server/realtime"
	"github.com/beka-birhanu/vinom-snake-server/service"
	"github.com/beka-birhanu/vinom-snake-server/service/i"
	"github.com/golang/glog"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

// Global variables for dependencies
var (
	grpcConnListener   net.Listener
	grpcServer         *grpc.Server
	streamHub          *realtime.Hub
	streamServer       *http.Server
	gameSessionManager *service.GameSessionManager
	appLogger          i.Logger
)

func mustLogger(name, color string) i.Logger {
	l, err := logger.New(name, color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", name, err)
		os.Exit(1)
	}
	return l
}

func initStreamHub() {
	streamHub = realtime.NewHub(config.Envs.StreamPublicAddr, mustLogger("STREAM-HUB", config.ColorBlue))

	mux := http.NewServeMux()
	mux.Handle("/play", streamHub)
	streamServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Envs.HostIP, config.Envs.StreamPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	appLogger.Info("Stream hub initialized")
}

func initGameSessionManager() {
	manager, err := service.NewGameSessionManager(
		&service.Config{
			Socket:          streamHub,
			GameConfig:      config.Envs.Game(),
			GameEncoder:     service.Protobuf{},
			SessionDuration: config.Envs.SessionLimit(),
			Logger:          mustLogger("GAME-MANAGER", config.ColorCyan),
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game session manager: %v", err))
		os.Exit(1)
	}

	streamHub.SetClientRequestHandler(manager.HandlePlayerRequest)
	streamHub.SetClientAuthenticator(manager)
	gameSessionManager = manager
	appLogger.Info("Game Session Manager initialized")
}

func initSessionManagerController() {
	grpcServer = grpc.NewServer()
	err := api.RegisterNewGameSessionManager(grpcServer, gameSessionManager)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating and Registering session manager controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session controller initialized")
}

// parseFlags makes glog log to stderr unless the command line says otherwise.
func parseFlags(fs *flag.FlagSet, args []string) error {
	_ = fs.Set("logtostderr", "true")
	return fs.Parse(args)
}

func main() {
	_ = parseFlags(flag.CommandLine, os.Args[1:])
	defer glog.Flush()

	appLogger = mustLogger("APP", config.ColorGreen)
	initStreamHub()
	initGameSessionManager()
	initSessionManagerController()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	addr := fmt.Sprintf("%s:%d", config.Envs.HostIP, config.Envs.GrpcPort)
	grpcConnListener, err = net.Listen("tcp", addr)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening tcp: %v", err))
		os.Exit(1)
	}

	errs := make(chan error, 2)
	go func() {
		appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", addr))
		errs <- grpcServer.Serve(grpcConnListener)
	}()
	go func() {
		appLogger.Info(fmt.Sprintf("Serving stream at: %s (public %s)", streamServer.Addr, streamHub.GetAddr()))
		if err := streamServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down")
	case err := <-errs:
		appLogger.Error(fmt.Sprintf("Serving: %v", err))
	}

	grpcServer.GracefulStop()
	gameSessionManager.StopAll()
	streamHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := streamServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warning(fmt.Sprintf("Stopping stream server: %v", err))
	}
}
