package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/venuebook/internal/mockapi"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := mockapi.NewApp(cfg).Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
