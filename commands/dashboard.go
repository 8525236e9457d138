package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"phone-order-api/cart"
	"phone-order-api/client"
	"phone-order-api/config"
	"phone-order-api/models"
)

var apiURLFlag = &cli.StringFlag{Name: "api", Usage: "API base URL (default API_BASE_URL)"}

func newClient(c *cli.Context) (*client.Client, error) {
	session, err := client.NewSession(client.FileStore{Path: config.App.SessionFile})
	if err != nil {
		return nil, err
	}
	base := c.String("api")
	if base == "" {
		base = config.App.APIBaseURL
	}
	return client.New(base, session), nil
}

// authedClient refuses to run dashboard commands without a stored session.
func authedClient(c *cli.Context) (*client.Client, error) {
	cl, err := newClient(c)
	if err != nil {
		return nil, err
	}
	if !cl.Session.Authenticated() {
		return nil, cli.Exit("not logged in, run `login` first", 1)
	}
	return cl, nil
}

func wrapAPIError(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return cli.Exit("session expired, run `login` again", 1)
	}
	return err
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in and store the session",
		Flags: []cli.Flag{
			apiURLFlag,
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"PHONE_ORDERS_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			token, err := cl.Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "logged in as %s\n", token.User.Username)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored session",
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			return cl.Logout()
		},
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "view and progress orders",
		Flags: []cli.Flag{apiURLFlag},
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list orders, newest first",
				Flags: []cli.Flag{&cli.StringFlag{Name: "status"}},
				Action: func(c *cli.Context) error {
					cl, err := authedClient(c)
					if err != nil {
						return err
					}
					list, err := cl.ListOrders(c.Context, models.OrderStatus(c.String("status")))
					if err != nil {
						return wrapAPIError(err)
					}
					printOrders(c.App.Writer, list.Orders)
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "show one order",
				ArgsUsage: "ORDER_ID",
				Action: orderAction(func(c *cli.Context, cl *client.Client, id uint) (*models.Order, error) {
					return cl.GetOrder(c.Context, id)
				}),
			},
			{
				Name:  "create",
				Usage: "take a phone order",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "phone", Required: true},
					&cli.StringSliceFlag{Name: "item", Required: true, Usage: "MENU_ID:QTY[:ADDON_ID,ADDON_ID]"},
					&cli.StringFlag{Name: "payment"},
					&cli.StringFlag{Name: "notes"},
				},
				Action: createOrder,
			},
			{
				Name:      "confirm",
				Usage:     "confirm a pending order",
				ArgsUsage: "ORDER_ID",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "minutes", Usage: "preparation time (server default when omitted)"}},
				Action: orderAction(func(c *cli.Context, cl *client.Client, id uint) (*models.Order, error) {
					return cl.ConfirmOrder(c.Context, id, c.Int("minutes"))
				}),
			},
			{
				Name:      "status",
				Usage:     "move an order to another status",
				ArgsUsage: "ORDER_ID STATUS",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "note"}},
				Action: orderAction(func(c *cli.Context, cl *client.Client, id uint) (*models.Order, error) {
					status := c.Args().Get(1)
					if status == "" {
						return nil, cli.Exit("STATUS is required", 1)
					}
					return cl.UpdateOrderStatus(c.Context, id, models.UpdateOrderStatusRequest{
						Status: models.OrderStatus(status),
						Note:   c.String("note"),
					})
				}),
			},
			{
				Name:      "cancel",
				Usage:     "cancel a pending or confirmed order",
				ArgsUsage: "ORDER_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "note"}},
				Action: orderAction(func(c *cli.Context, cl *client.Client, id uint) (*models.Order, error) {
					return cl.CancelOrder(c.Context, id, c.String("note"))
				}),
			},
			{
				Name:      "set-time",
				Usage:     "change the preparation time of a confirmed order",
				ArgsUsage: "ORDER_ID MINUTES",
				Action: orderAction(func(c *cli.Context, cl *client.Client, id uint) (*models.Order, error) {
					minutes, err := strconv.Atoi(c.Args().Get(1))
					if err != nil || minutes < 1 {
						return nil, cli.Exit("MINUTES must be a positive number", 1)
					}
					return cl.SetOrderTime(c.Context, id, minutes)
				}),
			},
		},
	}
}

// orderAction parses ORDER_ID, runs fn and prints the resulting order.
func orderAction(fn func(*cli.Context, *client.Client, uint) (*models.Order, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		id, err := parseUint(c.Args().First())
		if err != nil {
			return cli.Exit("ORDER_ID must be a number", 1)
		}
		cl, err := authedClient(c)
		if err != nil {
			return err
		}
		order, err := fn(c, cl, id)
		if err != nil {
			return wrapAPIError(err)
		}
		printOrder(c.App.Writer, order)
		return nil
	}
}

func createOrder(c *cli.Context) error {
	cl, err := authedClient(c)
	if err != nil {
		return err
	}
	menu, err := cl.ListMenuItems(c.Context, client.CatalogFilter{})
	if err != nil {
		return wrapAPIError(err)
	}
	addOns, err := cl.ListAddOns(c.Context, client.CatalogFilter{})
	if err != nil {
		return wrapAPIError(err)
	}
	items := make(map[uint]models.MenuItem, len(menu))
	for _, m := range menu {
		items[m.ID] = m
	}
	extras := make(map[uint]models.AddOn, len(addOns))
	for _, a := range addOns {
		extras[a.ID] = a
	}

	draft := cart.New()
	draft.CustomerName = c.String("name")
	draft.CustomerPhone = c.String("phone")
	draft.PaymentMethod = c.String("payment")
	draft.SpecialInstructions = c.String("notes")

	for _, arg := range c.StringSlice("item") {
		itemID, qty, addOnIDs, err := parseItemArg(arg)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		item, ok := items[itemID]
		if !ok {
			return cli.Exit(fmt.Sprintf("menu item %d not found", itemID), 1)
		}
		chosen := make([]models.AddOn, 0, len(addOnIDs))
		for _, id := range addOnIDs {
			a, ok := extras[id]
			if !ok {
				return cli.Exit(fmt.Sprintf("add-on %d not found", id), 1)
			}
			chosen = append(chosen, a)
		}
		if _, err := draft.AddLine(item, qty, chosen); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	total, err := draft.Total()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintf(c.App.Writer, "order total: $%.2f\n", total)
	created, err := draft.Submit(c.Context, cl)
	if err != nil {
		if errors.Is(err, cart.ErrValidation) {
			return cli.Exit(err.Error(), 1)
		}
		return wrapAPIError(err)
	}

	order, err := cl.GetOrder(c.Context, created.ID)
	if err != nil {
		return wrapAPIError(err)
	}
	printOrder(c.App.Writer, order)
	return nil
}

// parseItemArg reads "MENU_ID:QTY[:ADDON_ID,ADDON_ID]".
func parseItemArg(arg string) (uint, int, []uint, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, nil, errors.Errorf("item %q: want MENU_ID:QTY[:ADDON_ID,...]", arg)
	}
	itemID, err := parseUint(parts[0])
	if err != nil {
		return 0, 0, nil, errors.Errorf("item %q: bad menu id", arg)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, nil, errors.Errorf("item %q: bad quantity", arg)
	}
	var addOnIDs []uint
	if len(parts) == 3 && parts[2] != "" {
		for _, raw := range strings.Split(parts[2], ",") {
			id, err := parseUint(raw)
			if err != nil {
				return 0, 0, nil, errors.Errorf("item %q: bad add-on id %q", arg, raw)
			}
			addOnIDs = append(addOnIDs, id)
		}
	}
	return itemID, qty, addOnIDs, nil
}

func menuCommand() *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "view the menu and toggle availability",
		Flags: []cli.Flag{apiURLFlag},
		Subcommands: []*cli.Command{
			{
				Name: "list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.BoolFlag{Name: "available"},
				},
				Action: func(c *cli.Context) error {
					cl, err := authedClient(c)
					if err != nil {
						return err
					}
					filter := client.CatalogFilter{Category: c.String("category"), AvailableOnly: c.Bool("available")}
					items, err := cl.ListMenuItems(c.Context, filter)
					if err != nil {
						return wrapAPIError(err)
					}
					addOns, err := cl.ListAddOns(c.Context, filter)
					if err != nil {
						return wrapAPIError(err)
					}
					printMenu(c.App.Writer, items, addOns)
					return nil
				},
			},
			{
				Name:      "toggle",
				Usage:     "flip the availability of a menu item (or an add-on with --addon)",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "addon"}},
				Action: func(c *cli.Context) error {
					id, err := parseUint(c.Args().First())
					if err != nil {
						return cli.Exit("ID must be a number", 1)
					}
					cl, err := authedClient(c)
					if err != nil {
						return err
					}
					if c.Bool("addon") {
						current, err := cl.GetAddOn(c.Context, id)
						if err != nil {
							return wrapAPIError(err)
						}
						updated, err := cl.ToggleAddOnAvailability(c.Context, id, !current.IsAvailable)
						if err != nil {
							return wrapAPIError(err)
						}
						fmt.Fprintf(c.App.Writer, "%s (%s): available=%t\n", updated.Name, updated.Category, updated.IsAvailable)
						return nil
					}
					current, err := cl.GetMenuItem(c.Context, id)
					if err != nil {
						return wrapAPIError(err)
					}
					updated, err := cl.ToggleMenuItemAvailability(c.Context, id, !current.IsAvailable)
					if err != nil {
						return wrapAPIError(err)
					}
					fmt.Fprintf(c.App.Writer, "%s: available=%t\n", updated.Name, updated.IsAvailable)
					return nil
				},
			},
		},
	}
}

func parseUint(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

func printOrders(w io.Writer, orders []models.Order) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCUSTOMER\tPHONE\tTOTAL\tETA\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t$%.2f\t%s\t%s\n",
			o.ID, o.Status, o.CustomerName, o.CustomerPhone, o.TotalAmount,
			eta(o.EstimatedPreparationTime), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func printOrder(w io.Writer, o *models.Order) {
	fmt.Fprintf(w, "Order #%d  [%s]\n", o.ID, o.Status)
	fmt.Fprintf(w, "Customer: %s (%s)\n", o.CustomerName, o.CustomerPhone)
	fmt.Fprintf(w, "Preparation: %s\n", eta(o.EstimatedPreparationTime))
	if o.PaymentMethod != "" {
		fmt.Fprintf(w, "Payment: %s\n", o.PaymentMethod)
	}
	if o.SpecialInstructions != "" {
		fmt.Fprintf(w, "Notes: %s\n", o.SpecialInstructions)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range o.Items {
		names := make([]string, len(item.AddOns))
		for i, a := range item.AddOns {
			names[i] = a.Name
		}
		extras := ""
		if len(names) > 0 {
			extras = "+ " + strings.Join(names, ", ")
		}
		fmt.Fprintf(tw, "  %dx %s\t%s\t$%.2f\n", item.Quantity, item.Name, extras, item.TotalPrice)
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: $%.2f\n", o.TotalAmount)
}

func printMenu(w io.Writer, items []models.MenuItem, addOns []models.AddOn) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCATEGORY\tNAME\tPRICE\tAVAILABLE")
	for _, m := range items {
		fmt.Fprintf(tw, "%d\titem\t%s\t%s\t$%.2f\t%t\n", m.ID, m.Category, m.Name, m.BasePrice, m.IsAvailable)
	}
	for _, a := range addOns {
		fmt.Fprintf(tw, "%d\tadd-on\t%s\t%s\t$%.2f\t%t\n", a.ID, a.Category, a.Name, a.Price, a.IsAvailable)
	}
	tw.Flush()
}

func eta(minutes *int) string {
	if minutes == nil {
		return "-"
	}
	return fmt.Sprintf("%d min", *minutes)
}
