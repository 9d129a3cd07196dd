package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/internal/cart/domain"
	"github.com/wyfcoding/smarthome/internal/cart/infrastructure/persistence/memory"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	catalogmem "github.com/wyfcoding/smarthome/internal/catalog/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

type recordingPublisher struct {
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func newService() (*CartService, *memory.CartRepository, *recordingPublisher) {
	products := catalogmem.NewProductRepository(
		&catalog.Product{
			ID: "echo", Name: "Amazon Echo", Price: decimal.RequireFromString("99.99"), CategoryID: 1,
			Accessories: []catalog.Accessory{{ID: "acc-mount", Name: "Wall Mount", Price: decimal.RequireFromString("29.99")}},
		},
		&catalog.Product{ID: "hue", Name: "Philips Hue Bulb", Price: decimal.RequireFromString("49.99"), CategoryID: 2},
	)
	repo := memory.NewCartRepository()
	pub := &recordingPublisher{}
	return NewCartService(repo, products, pub), repo, pub
}

func addCmd(userID, productID string, qty int) AddItemCommand {
	cmd := AddItemCommand{
		UserID:     userID,
		ProductID:  productID,
		Quantity:   qty,
		Warranty:   "1 Year",
		TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("99.99")),
	}
	if productID == "echo" {
		cmd.Accessories = []domain.SelectedAccessory{{Name: "Wall Mount", Price: decimal.RequireFromString("29.99")}}
	}
	return cmd
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*AddItemCommand)
		wantErr apperror.Kind
	}{
		{"valid", func(*AddItemCommand) {}, ""},
		{"null total price", func(c *AddItemCommand) { c.TotalPrice = decimal.NullDecimal{} }, apperror.KindValidation},
		{"missing warranty", func(c *AddItemCommand) { c.Warranty = "" }, apperror.KindValidation},
		{"missing product", func(c *AddItemCommand) { c.ProductID = "" }, apperror.KindValidation},
		{"zero quantity", func(c *AddItemCommand) { c.Quantity = 0 }, apperror.KindValidation},
		{"unknown product", func(c *AddItemCommand) { c.ProductID = "nope" }, apperror.KindValidation},
		{"warranty not offered", func(c *AddItemCommand) { c.Warranty = "99 Years" }, apperror.KindValidation},
		{"accessory not offered", func(c *AddItemCommand) {
			c.Accessories = []domain.SelectedAccessory{{Name: "Flux Capacitor"}}
		}, apperror.KindValidation},
		{"accessory of another product", func(c *AddItemCommand) {
			c.ProductID = "hue"
			c.Accessories = []domain.SelectedAccessory{{ID: "acc-mount"}}
		}, apperror.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService()
			cmd := addCmd("", "echo", 1)
			tt.mutate(&cmd)

			item, err := svc.AddItem(ctx, cmd)
			if tt.wantErr != "" {
				assert.True(t, apperror.Is(err, tt.wantErr), "got %v", err)
				items, _ := repo.List(ctx, "")
				assert.Empty(t, items)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, item.ID)
		})
	}
}

func TestAddItemUsesCatalogOptions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	cmd := addCmd("u1", "echo", 1)
	cmd.Warranty = "1 year"
	cmd.Accessories = []domain.SelectedAccessory{{Name: "wall mount", Price: decimal.NewFromInt(1)}}

	item, err := svc.AddItem(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "1 Year", item.Warranty)
	require.Len(t, item.Accessories, 1)
	assert.Equal(t, "acc-mount", item.Accessories[0].ID)
	assert.Equal(t, "Wall Mount", item.Accessories[0].Name)
	assert.Equal(t, "29.99", item.Accessories[0].Price.StringFixed(2))
}

func TestAddItemSurvivesPublishFailure(t *testing.T) {
	svc, _, pub := newService()
	pub.err = errors.New("outbox down")

	_, err := svc.AddItem(context.Background(), addCmd("", "echo", 1))
	assert.NoError(t, err)
}

func TestListItemsIncludesProductNames(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	_, err := svc.AddItem(ctx, addCmd("u1", "echo", 1))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, addCmd("u2", "hue", 3))
	require.NoError(t, err)

	all, err := svc.ListItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amazon Echo", all[0].ProductName)
	assert.Equal(t, "Philips Hue Bulb", all[1].ProductName)

	mine, err := svc.ListItems(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 3, mine[0].Quantity)
}

func TestUpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newService()

	a, err := svc.AddItem(ctx, addCmd("u1", "echo", 1))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, addCmd("u1", "hue", 1))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, addCmd("u2", "hue", 1))
	require.NoError(t, err)

	t.Run("update quantity", func(t *testing.T) {
		require.NoError(t, svc.UpdateQuantity(ctx, a.ID, 5))
		got, _ := repo.GetByID(ctx, a.ID)
		assert.Equal(t, 5, got.Quantity)

		assert.True(t, apperror.Is(svc.UpdateQuantity(ctx, a.ID, 0), apperror.KindValidation))
		assert.True(t, apperror.Is(svc.UpdateQuantity(ctx, 999, 1), apperror.KindNotFound))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, svc.RemoveItem(ctx, a.ID))
		assert.True(t, apperror.Is(svc.RemoveItem(ctx, a.ID), apperror.KindNotFound))
	})

	t.Run("clear one user", func(t *testing.T) {
		require.NoError(t, svc.ClearCart(ctx, "u1"))
		items, _ := repo.List(ctx, "")
		require.Len(t, items, 1)
		assert.Equal(t, "u2", items[0].UserID)
	})

	t.Run("clear all", func(t *testing.T) {
		require.NoError(t, svc.ClearCart(ctx, ""))
		items, _ := repo.List(ctx, "")
		assert.Empty(t, items)
	})

	assert.Contains(t, pub.topics, domain.TopicCartItemRemoved)
	assert.Contains(t, pub.topics, domain.TopicCartCleared)
}

func TestParseItemID(t *testing.T) {
	id, err := ParseItemID("12")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, raw := range []string{"", "0", "-1", "abc"} {
		_, err := ParseItemID(raw)
		assert.True(t, apperror.Is(err, apperror.KindValidation), raw)
	}
}
