package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rx3lixir/prodhack/internal/battle"
	"github.com/rx3lixir/prodhack/internal/config"
	"github.com/rx3lixir/prodhack/internal/gateway"
	"github.com/rx3lixir/prodhack/internal/httpserver"
	"github.com/rx3lixir/prodhack/internal/material"
	maindb "github.com/rx3lixir/prodhack/internal/storage/maindb"
	"github.com/rx3lixir/prodhack/internal/storage/s3"
	"github.com/rx3lixir/prodhack/internal/store"
	"github.com/rx3lixir/prodhack/pkg/jwt"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	flag.Parse()

	// Initializing and validating config
	cm, err := config.NewConfigManager(*configPath)
	if err != nil {
		fmt.Printf("Error getting config file: %v", err)
		os.Exit(1)
	}
	c := cm.GetConfig()
	if err := c.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	// Initializing logger
	log, err := logger.New(logger.Config{
		Env:       c.GeneralParams.Env,
		AddSource: false,
	})
	if err != nil {
		fmt.Printf("Failed to create logger: %v", err)
		os.Exit(1)
	}

	log.Info(
		"Config loaded successfully!",
		"env", c.GeneralParams.Env,
		"http_server_port", c.HttpServerParams.Port,
		"http_server_addresss", c.HttpServerParams.Address,
		"database", c.MainDBParams.Name,
	)

	// Global context with cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Creating database connection and init Postgres
	pool, err := maindb.CreatePostgresPool(ctx, c.MainDBParams.GetDSN())
	if err != nil {
		log.Error(
			"Failed to create postgres pool",
			"error", err,
			"db", c.MainDBParams.Name,
		)
		os.Exit(1)
	}
	defer pool.Close()

	log.Info(
		"Database connection established",
		"db", c.MainDBParams.Name,
	)

	maindbStore := maindb.NewPostgresStore(pool)

	// Object storage for uploaded study documents. Archival is
	// best-effort, so a broken MinIO setup only costs a warning.
	var archive material.Archive
	minioClient, err := s3.NewClient(
		c.S3Params.Endpoint,
		c.S3Params.AccessKeyID,
		c.S3Params.SecretAccessKey,
		c.S3Params.UseSSL,
	)
	if err != nil {
		log.Warn("Failed to create minio client, pdf archival disabled", "error", err)
	} else {
		pdfStore, err := s3.NewStore(ctx, minioClient, c.S3Params.BucketName)
		if err != nil {
			log.Warn("Failed to prepare pdf bucket, pdf archival disabled", "error", err)
		} else {
			archive = pdfStore
		}
	}

	// JWT Service intialization
	jwtService := jwt.NewService(
		c.GeneralParams.SecretKey,
		time.Minute*15,
		time.Hour*24*7,
	)

	// Battle room coordination: one registry, one event loop
	registry := battle.NewRegistry()
	gw := gateway.New(registry, log)
	go gw.Run()

	gatewayHandler := gateway.NewHandler(gw, jwtService, log)

	// Study material generation
	materialService := material.NewService(
		c.MaterialParams.APIKey,
		c.MaterialParams.APIURL,
		c.MaterialParams.Model,
		c.MaterialParams.GetTimeout(),
		log,
	)
	materialHandler := material.NewHandler(materialService, archive, log)

	storeHandler := store.NewHandler(maindbStore, maindbStore, log)

	// Creates HTTP server
	HTTPserver := httpserver.New(
		c.HttpServerParams.GetAddress(),
		httpserver.Deps{
			UserStore:       maindbStore,
			JWTService:      jwtService,
			Gateway:         gw,
			GatewayHandler:  gatewayHandler,
			MaterialHandler: materialHandler,
			StoreHandler:    storeHandler,
			AllowedOrigins:  c.HttpServerParams.AllowedOrigins,
		},
		log,
	)

	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- HTTPserver.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we recieve a signal or error
	select {
	case err := <-serverErrors:
		log.Error("Server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("Shutting down HTTP server...")
		if err := HTTPserver.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}

		log.Info("Stopping battle gateway...")
		gw.Shutdown()
	}
}
