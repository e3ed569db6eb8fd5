package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdolan/connectra/internal/api"
	"github.com/pdolan/connectra/internal/config"
	"github.com/pdolan/connectra/internal/server"
	"github.com/pdolan/connectra/internal/stats"
	"github.com/pdolan/connectra/internal/store"
)

const defaultSigningKey = "Y29ubmVjdHJhX3NpZ25pbmdfa2V5X2NoYW5nZV9tZQ=="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	addr           string
	dataFile       string
	signingKey     string
	uploadDir      string
	clipDir        string
	photoDir       string
	allowedOrigins stringSliceFlag
)

func main() {
	// Optional .env file; flags still win over the environment.
	godotenv.Load()

	flag.StringVar(&addr, "addr", envOr("CONNECTRA_ADDR", "localhost:2012"), "server address")
	flag.StringVar(&dataFile, "data-file", envOr("CONNECTRA_DATA_FILE", "database/userbase.json"), "path to the JSON database file")
	flag.StringVar(&signingKey, "signing-key", envOr("CONNECTRA_SIGNING_KEY", defaultSigningKey), "base64 encoded signing key")
	flag.StringVar(&uploadDir, "upload-dir", envOr("CONNECTRA_UPLOAD_DIR", "uploads"), "directory for message attachments")
	flag.StringVar(&clipDir, "clip-dir", envOr("CONNECTRA_CLIP_DIR", "clips"), "directory for clip videos")
	flag.StringVar(&photoDir, "photo-dir", envOr("CONNECTRA_PHOTO_DIR", "photos"), "directory for avatars")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[connectra] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dataFile, signingKey, allowedOrigins, uploadDir, clipDir, photoDir)
	if err != nil {
		logger.Fatal("config:", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil {
		logger.Fatal("create database directory:", err)
	}

	fileStore, err := store.NewFileStore(cfg.DataFile)
	if err != nil {
		logger.Fatal("open store:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, fileStore, statsUpdater)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	srv := api.NewConnectraApp(mux, logger, chatServer, fileStore, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	chatServer.Shutdown()

	logger.Println("shutdown complete")
}
