package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pedeai/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_PricesComeFromCatalog(t *testing.T) {
	f := newFixture(t)

	c := f.add(t, f.margherita, 1)
	c = f.add(t, f.margherita, 2)

	require.Len(t, c.Items, 1)
	assert.Equal(t, "Margherita", c.Items[0].Name)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "75.00", c.Total().StringFixed(2))
	assert.Equal(t, f.pizzeria.ID, *c.RestaurantID)
}

func TestCartService_CrossRestaurantLeavesCartAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, f.margherita, 1)

	_, err := f.cart.Add(ctx, f.userID, &AddToCartIn{ProductID: f.temaki.ID, Quantity: 1})
	assert.True(t, errors.Is(err, apperr.ErrCrossRestaurant))

	c, err := f.cart.Get(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, f.margherita.ID, c.Items[0].ProductID)
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, f.margherita, 1)
	f.add(t, f.calabresa, 1)

	c, err := f.cart.UpdateQuantity(ctx, f.userID, f.calabresa.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "155.00", c.Total().StringFixed(2))

	c, err = f.cart.UpdateQuantity(ctx, f.userID, f.margherita.ID, 0)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	c, err = f.cart.RemoveItem(ctx, f.userID, f.calabresa.ID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.RestaurantID)

	f.add(t, f.temaki, 1)
	c, err = f.cart.Clear(ctx, f.userID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartService_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.cart.Add(context.Background(), f.userID, &AddToCartIn{ProductID: 999, Quantity: 1})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCartService_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.cart.Add(ctx, f.userID, &AddToCartIn{ProductID: f.margherita.ID, Quantity: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := f.cart.Get(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 30, c.Items[0].Quantity)
}
