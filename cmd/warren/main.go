package main

import (
	"flag"
	"log"
	"net/http"

	"warren/internal/auth"
	"warren/internal/config"
	"warren/internal/database"
	"warren/internal/web"
)

func main() {
	var configPath = flag.String("config", ".", "Directory containing config.yaml.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := auth.InitSessionStore(cfg.SessionKey); err != nil {
		log.Fatal(err)
	}

	db, err := database.New(cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	log.Println("database migrated")

	server := web.NewServer(db, web.ParseTemplates(), cfg.FeedLimit)

	log.Println("starting server on " + cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		log.Fatal(err)
	}
}
