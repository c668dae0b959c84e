package main

import (
	"log"

	"github.com/gatherhq/gather/cmd/app"
	"github.com/gatherhq/gather/internal/adapters/config"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()

	a, err := app.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	a.Logger.Info("database migrated, core services ready")
}
