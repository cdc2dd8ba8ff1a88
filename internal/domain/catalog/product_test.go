package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrice(amount string) valueobject.Money {
	m, _ := valueobject.NewMoneyUSDFromString(amount)
	return m
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("SKU-001", "Test Product", testPrice("19.99"))
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, "SKU-001", product.SKU)
		assert.Equal(t, "Test Product", product.Name)
		assert.Equal(t, "19.99", product.Price.StringFixed(2))
		assert.Equal(t, valueobject.USD, product.Currency)
		assert.Equal(t, 0, product.StockQuantity)
		assert.Equal(t, ProductStatusDraft, product.Status)
		assert.Nil(t, product.ManufacturerID)
		assert.NotEmpty(t, product.ID)
		assert.Equal(t, 1, product.GetVersion())
	})

	t.Run("converts SKU to uppercase", func(t *testing.T) {
		product, err := NewProduct("sku-001", "Test Product", testPrice("1"))
		require.NoError(t, err)
		assert.Equal(t, "SKU-001", product.SKU)
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct("SKU-002", "Test Product", testPrice("1"))
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())

		event, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, product.ID, event.ProductID)
		assert.Equal(t, product.SKU, event.SKU)
		assert.Equal(t, product.Name, event.Name)
	})

	t.Run("fails with empty SKU", func(t *testing.T) {
		_, err := NewProduct("", "Test Product", testPrice("1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SKU cannot be empty")
	})

	t.Run("fails with invalid SKU characters", func(t *testing.T) {
		_, err := NewProduct("SKU 001!", "Test Product", testPrice("1"))
		require.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("SKU-003", "", testPrice("1"))
		require.Error(t, err)
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("SKU-004", "Test Product", testPrice("-1"))
		require.Error(t, err)
	})
}

func TestProduct_Update(t *testing.T) {
	t.Run("updates name and description", func(t *testing.T) {
		product, err := NewProduct("SKU-010", "Old Name", testPrice("1"))
		require.NoError(t, err)
		product.ClearDomainEvents()

		err = product.Update("New Name", "New description")
		require.NoError(t, err)

		assert.Equal(t, "New Name", product.Name)
		assert.Equal(t, "New description", product.Description)
		assert.Equal(t, 2, product.GetVersion())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductUpdated, events[0].EventType())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		product, _ := NewProduct("SKU-011", "Name", testPrice("1"))
		err := product.Update("", "desc")
		require.Error(t, err)
	})
}

func TestProduct_SetPrice(t *testing.T) {
	t.Run("changes price and publishes event", func(t *testing.T) {
		product, _ := NewProduct("SKU-020", "Name", testPrice("10.00"))
		product.ClearDomainEvents()

		err := product.SetPrice(testPrice("12.50"))
		require.NoError(t, err)
		assert.Equal(t, "12.50", product.Price.StringFixed(2))

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductPriceChangedEvent)
		require.True(t, ok)
		assert.Equal(t, "10.00", event.OldPrice.StringFixed(2))
		assert.Equal(t, "12.50", event.NewPrice.StringFixed(2))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		product, _ := NewProduct("SKU-021", "Name", testPrice("10.00"))
		err := product.SetPrice(testPrice("-0.01"))
		require.Error(t, err)
	})
}

func TestProduct_AdjustStock(t *testing.T) {
	t.Run("increases and decreases stock", func(t *testing.T) {
		product, _ := NewProduct("SKU-030", "Name", testPrice("1"))
		product.ClearDomainEvents()

		require.NoError(t, product.AdjustStock(10))
		assert.Equal(t, 10, product.StockQuantity)

		require.NoError(t, product.AdjustStock(-4))
		assert.Equal(t, 6, product.StockQuantity)
	})

	t.Run("stock can never go negative", func(t *testing.T) {
		product, _ := NewProduct("SKU-031", "Name", testPrice("1"))
		require.NoError(t, product.AdjustStock(3))

		err := product.AdjustStock(-4)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 3, product.StockQuantity)
	})

	t.Run("publishes stock adjusted event with delta", func(t *testing.T) {
		product, _ := NewProduct("SKU-032", "Name", testPrice("1"))
		product.ClearDomainEvents()

		require.NoError(t, product.AdjustStock(5))

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductStockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, 0, event.OldQuantity)
		assert.Equal(t, 5, event.NewQuantity)
		assert.Equal(t, 5, event.Delta)
	})
}

func TestProduct_Lifecycle(t *testing.T) {
	t.Run("publish from draft", func(t *testing.T) {
		product, _ := NewProduct("SKU-040", "Name", testPrice("1"))
		product.ClearDomainEvents()

		require.NoError(t, product.Publish())
		assert.True(t, product.IsPublished())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, ProductStatusDraft, event.OldStatus)
		assert.Equal(t, ProductStatusPublished, event.NewStatus)
	})

	t.Run("publish is not idempotent", func(t *testing.T) {
		product, _ := NewProduct("SKU-041", "Name", testPrice("1"))
		require.NoError(t, product.Publish())
		require.Error(t, product.Publish())
	})

	t.Run("archive from any non-archived state", func(t *testing.T) {
		product, _ := NewProduct("SKU-042", "Name", testPrice("1"))
		require.NoError(t, product.Archive())
		assert.True(t, product.IsArchived())
		require.Error(t, product.Archive())
	})

	t.Run("archived product cannot be republished", func(t *testing.T) {
		product, _ := NewProduct("SKU-043", "Name", testPrice("1"))
		require.NoError(t, product.Archive())
		require.Error(t, product.Publish())
	})

	t.Run("only archived products can be deleted", func(t *testing.T) {
		product, _ := NewProduct("SKU-044", "Name", testPrice("1"))
		assert.False(t, product.CanDelete())

		require.NoError(t, product.Archive())
		assert.True(t, product.CanDelete())
	})
}

func TestProduct_SetManufacturer(t *testing.T) {
	product, _ := NewProduct("SKU-050", "Name", testPrice("1"))
	product.ClearDomainEvents()

	id := uuid.New()
	product.SetManufacturer(&id)
	require.NotNil(t, product.ManufacturerID)
	assert.Equal(t, id, *product.ManufacturerID)
	assert.Len(t, product.GetDomainEvents(), 1)
}

func TestProduct_SetTags(t *testing.T) {
	product, _ := NewProduct("SKU-060", "Name", testPrice("1"))

	t.Run("accepts JSON array", func(t *testing.T) {
		require.NoError(t, product.SetTags(`["electronics","sale"]`))
		assert.Equal(t, `["electronics","sale"]`, product.Tags)
	})

	t.Run("empty resets to empty array", func(t *testing.T) {
		require.NoError(t, product.SetTags(""))
		assert.Equal(t, "[]", product.Tags)
	})

	t.Run("rejects non-array", func(t *testing.T) {
		require.Error(t, product.SetTags(`{"not":"array"}`))
	})
}

func TestProduct_StockValue(t *testing.T) {
	product, _ := NewProduct("SKU-070", "Name", testPrice("2.50"))
	require.NoError(t, product.AdjustStock(4))

	assert.True(t, product.StockValue().Equal(decimal.NewFromInt(10)))
}

func TestProduct_PriceMoney(t *testing.T) {
	product, _ := NewProduct("SKU-080", "Name", testPrice("9.99"))
	m := product.PriceMoney()
	assert.Equal(t, valueobject.USD, m.Currency())
	assert.Equal(t, "9.99", m.StringFixed(2))
}
