// cart_test.go

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMergeCartItemBumpsExistingLine(t *testing.T) {
	product := primitive.NewObjectID()
	items := []CartItem{{Product: product, Quantity: 1}}

	items = mergeCartItem(items, CartItem{Product: product, Quantity: 1})

	require.Len(t, items, 1, "same product twice must stay a single line")
	assert.Equal(t, 2, items[0].Quantity)
}

func TestMergeCartItemVariantsAreSeparateLines(t *testing.T) {
	product := primitive.NewObjectID()
	items := []CartItem{{Product: product, Quantity: 1, Variant: "M"}}

	items = mergeCartItem(items, CartItem{Product: product, Quantity: 1, Variant: "L"})

	require.Len(t, items, 2)
	assert.Equal(t, "M", items[0].Variant)
	assert.Equal(t, "L", items[1].Variant)
}

func TestMergeCartItemAppendsNewProduct(t *testing.T) {
	items := []CartItem{{Product: primitive.NewObjectID(), Quantity: 1}}
	other := primitive.NewObjectID()

	items = mergeCartItem(items, CartItem{Product: other, Quantity: 3})

	require.Len(t, items, 2)
	assert.Equal(t, other, items[1].Product)
	assert.Equal(t, 3, items[1].Quantity)
}

func TestMergeCartItemEmptyCart(t *testing.T) {
	product := primitive.NewObjectID()
	items := mergeCartItem(nil, CartItem{Product: product, Quantity: 2})

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}
