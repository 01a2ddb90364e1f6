package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/mkdd/ircd/internal/config"
	"github.com/mkdd/ircd/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := server.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Println("Launching server...")

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %s, shutting down server. Bye!\n", sig)
		srv.Shutdown()
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil {
		log.Error(err)
	}
}
