package main

import (
	"context"
	"log"

	"github.com/newhinton/keepassxc/internal/cli"
	"github.com/newhinton/keepassxc/internal/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}

}
