package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/healthkeeper/internal/server"
	"github.com/dmitrijs2005/healthkeeper/internal/server/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := server.NewApp(cfg).Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}

}
