package repository

import (
	"context"
	"testing"

	"pedeai/entity"
	"pedeai/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepositories_Search(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	rests := NewRestaurantRepository(db)
	prods := NewProductRepository(db)

	napoli := &entity.Restaurant{Name: "Pizzaria Napoli", Category: "Pizza", Rating: 4.7}
	kento := &entity.Restaurant{Name: "Sushi Kento", Category: "Japonesa", Rating: 4.9}
	require.NoError(t, rests.Create(ctx, napoli))
	require.NoError(t, rests.Create(ctx, kento))

	for _, p := range []*entity.Product{
		{RestaurantID: napoli.ID, Name: "Margherita", Description: "tomate e manjericão", Price: decimal.RequireFromString("42.90")},
		{RestaurantID: napoli.ID, Name: "Refrigerante", Price: decimal.RequireFromString("12.00")},
		{RestaurantID: kento.ID, Name: "Temaki", Description: "salmão", Price: decimal.RequireFromString("28.50")},
	} {
		require.NoError(t, prods.Create(ctx, p))
	}

	all, err := rests.FindAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, kento.ID, all[0].ID, "best rated first")

	found, err := rests.FindAll(ctx, "PIZZA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, napoli.ID, found[0].ID)

	byRestName, err := prods.Search(ctx, "napoli", 0)
	require.NoError(t, err)
	assert.Len(t, byRestName, 2)

	byDesc, err := prods.Search(ctx, "salmão", 0)
	require.NoError(t, err)
	require.Len(t, byDesc, 1)
	require.NotNil(t, byDesc[0].Restaurant)
	assert.Equal(t, "Sushi Kento", byDesc[0].Restaurant.Name)

	scoped, err := prods.Search(ctx, "", kento.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	require.NoError(t, rests.Delete(ctx, napoli.ID))
	left, err := prods.FindByRestaurant(ctx, napoli.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
