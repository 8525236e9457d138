package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"phone-order-api/commands"
)

func main() {
	if err := commands.NewApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("phone-orders failed")
	}
}
