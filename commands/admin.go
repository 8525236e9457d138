package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"phone-order-api/config"
	"phone-order-api/handlers"
	"phone-order-api/seed"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "load the demo menu, add-ons and customers into empty tables",
		Action: func(c *cli.Context) error {
			if err := config.InitDB(); err != nil {
				return err
			}
			res, err := seed.Run(config.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "added %d menu items, %d add-ons, %d customers\n",
				res.MenuItems, res.AddOns, res.Customers)
			return nil
		},
	}
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "create a staff account directly in the database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"NEW_USER_PASSWORD"}},
			&cli.BoolFlag{Name: "admin"},
		},
		Action: func(c *cli.Context) error {
			if len(c.String("password")) < 6 {
				return cli.Exit("password must be at least 6 characters", 1)
			}
			if err := config.InitDB(); err != nil {
				return err
			}
			user, err := handlers.CreateUser(config.DB, c.String("username"), c.String("email"), c.String("password"), c.Bool("admin"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created user %d (%s), admin=%t\n", user.ID, user.Username, user.IsAdmin)
			return nil
		},
	}
}
