package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-order-api/config"
	"phone-order-api/models"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := config.OpenDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	res, err := Run(db)
	require.NoError(t, err)
	assert.Equal(t, Result{MenuItems: 7, AddOns: 6, Customers: 5}, res)

	again, err := Run(db)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)

	var items []models.MenuItem
	require.NoError(t, db.Find(&items).Error)
	assert.Len(t, items, 7)
	for _, item := range items {
		assert.True(t, item.IsAvailable, item.Name)
	}

	var customer models.Customer
	require.NoError(t, db.Where("phone = ?", "5551234567").First(&customer).Error)
	assert.Equal(t, "John Smith", customer.Name)
	assert.Equal(t, 5, customer.TotalOrders)
}
