// Package commands wires the binary's subcommands: the two servers, database
// chores and the dashboard commands that drive the API over HTTP.
package commands

import (
	"github.com/urfave/cli/v2"

	"phone-order-api/config"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:  "phone-orders",
		Usage: "restaurant phone-order back office",
		Before: func(c *cli.Context) error {
			if err := config.Load(); err != nil {
				return err
			}
			config.SetupLogging(config.App.LogLevel)
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			voiceCommand(),
			seedCommand(),
			createUserCommand(),
			loginCommand(),
			logoutCommand(),
			ordersCommand(),
			menuCommand(),
		},
	}
}
