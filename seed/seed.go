// Package seed loads the demo catalog and a few regular customers.
package seed

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"phone-order-api/models"
)

func MenuItems() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Classic Burger", Category: "burger", BasePrice: 8.99, Description: "Juicy beef patty with lettuce, tomato, and our special sauce"},
		{Name: "Cheeseburger", Category: "burger", BasePrice: 9.99, Description: "Classic burger with melted cheddar cheese"},
		{Name: "Bacon Burger", Category: "burger", BasePrice: 10.99, Description: "Classic burger with crispy bacon strips"},
		{Name: "Veggie Burger", Category: "burger", BasePrice: 9.49, Description: "Plant-based patty with fresh vegetables"},
		{Name: "Margherita Pizza", Category: "pizza", BasePrice: 12.99, Description: "Classic pizza with tomato sauce, mozzarella, and basil"},
		{Name: "Pepperoni Pizza", Category: "pizza", BasePrice: 14.99, Description: "Traditional pizza with pepperoni and cheese"},
		{Name: "Veggie Supreme", Category: "pizza", BasePrice: 13.99, Description: "Pizza loaded with fresh vegetables"},
	}
}

func AddOns() []models.AddOn {
	return []models.AddOn{
		{Name: "Extra Cheese", Category: "burger", Type: "topping", Price: 1.50},
		{Name: "Bacon", Category: "burger", Type: "topping", Price: 2.00},
		{Name: "Avocado", Category: "burger", Type: "topping", Price: 1.75},
		{Name: "Extra Cheese", Category: "pizza", Type: "topping", Price: 2.00},
		{Name: "Mushrooms", Category: "pizza", Type: "topping", Price: 1.50},
		{Name: "Olives", Category: "pizza", Type: "topping", Price: 1.50},
	}
}

func Customers() []models.Customer {
	return []models.Customer{
		{Name: "John Smith", Phone: "5551234567", Email: "john.smith@example.com", PreferredPaymentMethod: "credit card", DietaryPreferences: "no preferences", TotalOrders: 5},
		{Name: "Emily Johnson", Phone: "5559876543", Email: "emily.j@example.com", PreferredPaymentMethod: "cash", DietaryPreferences: "vegetarian", TotalOrders: 3},
		{Name: "Michael Brown", Phone: "5552223333", Email: "mbrown@example.com", PreferredPaymentMethod: "digital payment", DietaryPreferences: "gluten-free", TotalOrders: 7},
		{Name: "Sarah Williams", Phone: "5554445555", Email: "sarahw@example.com", PreferredPaymentMethod: "credit card", DietaryPreferences: "dairy-free", TotalOrders: 2},
		{Name: "David Miller", Phone: "5556667777", Email: "dmiller@example.com", PreferredPaymentMethod: "cash", DietaryPreferences: "no preferences", TotalOrders: 0},
	}
}

type Result struct {
	MenuItems int
	AddOns    int
	Customers int
}

// Run inserts each data set only when its table is empty, so it is safe to
// call on every start.
func Run(db *gorm.DB) (Result, error) {
	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		items := MenuItems()
		for i := range items {
			items[i].IsAvailable = true
		}
		n, err := insertIfEmpty(tx, &models.MenuItem{}, &items, len(items))
		if err != nil {
			return errors.Wrap(err, "seed menu items")
		}
		res.MenuItems = n

		addOns := AddOns()
		for i := range addOns {
			addOns[i].IsAvailable = true
		}
		if n, err = insertIfEmpty(tx, &models.AddOn{}, &addOns, len(addOns)); err != nil {
			return errors.Wrap(err, "seed add-ons")
		}
		res.AddOns = n

		customers := Customers()
		if n, err = insertIfEmpty(tx, &models.Customer{}, &customers, len(customers)); err != nil {
			return errors.Wrap(err, "seed customers")
		}
		res.Customers = n
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	log.WithFields(log.Fields{
		"menu_items": res.MenuItems,
		"add_ons":    res.AddOns,
		"customers":  res.Customers,
	}).Info("Seed data loaded")
	return res, nil
}

func insertIfEmpty(tx *gorm.DB, model, rows interface{}, n int) (int, error) {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	if err := tx.Create(rows).Error; err != nil {
		return 0, err
	}
	return n, nil
}
