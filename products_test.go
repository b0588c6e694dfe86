// products_test.go

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildProductFilterDefaultsToActiveOnly(t *testing.T) {
	filter := buildProductFilter(productListQuery{})
	assert.Equal(t, bson.M{"status": ProductActive}, filter)
}

func TestBuildProductFilterPriceRange(t *testing.T) {
	filter := buildProductFilter(productListQuery{MinPrice: 10, MaxPrice: 50})
	require.Contains(t, filter, "price")
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 50.0}, filter["price"])

	filter = buildProductFilter(productListQuery{MinPrice: 10})
	assert.Equal(t, bson.M{"$gte": 10.0}, filter["price"])

	filter = buildProductFilter(productListQuery{MaxPrice: 50})
	assert.Equal(t, bson.M{"$lte": 50.0}, filter["price"])
}

func TestBuildProductFilterSearchAndRating(t *testing.T) {
	filter := buildProductFilter(productListQuery{Search: "teak table", MinRating: 3.5})
	assert.Equal(t, bson.M{"$search": "teak table"}, filter["$text"])
	assert.Equal(t, bson.M{"$gte": 3.5}, filter["rating"])
}

func TestBuildProductFilterCategoryAndSeller(t *testing.T) {
	category := primitive.NewObjectID()
	seller := primitive.NewObjectID()

	filter := buildProductFilter(productListQuery{
		Category: category.Hex(),
		Seller:   seller.Hex(),
	})
	assert.Equal(t, category, filter["category"])
	assert.Equal(t, seller, filter["seller"])

	// Malformed ids are dropped rather than matching nothing.
	filter = buildProductFilter(productListQuery{Category: "not-an-id"})
	assert.NotContains(t, filter, "category")
}

func TestBuildProductFilterFlashSale(t *testing.T) {
	filter := buildProductFilter(productListQuery{FlashSale: true})
	assert.Equal(t, true, filter["isFlashSale"])

	bound, isM := filter["flashSaleEnd"].(bson.M)
	require.True(t, isM)
	end, isTime := bound["$gt"].(time.Time)
	require.True(t, isTime)
	assert.WithinDuration(t, time.Now(), end, time.Minute)
}

func TestProductSort(t *testing.T) {
	tests := []struct {
		key  string
		want bson.D
	}{
		{"price_asc", bson.D{{Key: "price", Value: 1}}},
		{"price_desc", bson.D{{Key: "price", Value: -1}}},
		{"rating", bson.D{{Key: "rating", Value: -1}}},
		{"popular", bson.D{{Key: "sold", Value: -1}}},
		{"newest", bson.D{{Key: "createdAt", Value: -1}}},
		{"", bson.D{{Key: "createdAt", Value: -1}}},
		{"garbage", bson.D{{Key: "createdAt", Value: -1}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, productSort(tt.key), "sort key %q", tt.key)
	}
}

func TestMergeFeaturedDeduplicates(t *testing.T) {
	shared := Product{ID: primitive.NewObjectID(), Name: "both tiers"}
	soldOnly := Product{ID: primitive.NewObjectID(), Name: "top sold"}
	ratedOnly := Product{ID: primitive.NewObjectID(), Name: "top rated"}

	merged := mergeFeatured(
		[]Product{shared, soldOnly},
		[]Product{ratedOnly, shared},
	)

	require.Len(t, merged, 3)
	// Tier order is preserved and the first sighting wins.
	assert.Equal(t, shared.ID, merged[0].ID)
	assert.Equal(t, soldOnly.ID, merged[1].ID)
	assert.Equal(t, ratedOnly.ID, merged[2].ID)
}

func TestMergeFeaturedNoDuplicateIdentities(t *testing.T) {
	tierA := make([]Product, 0, featuredTierSize)
	tierB := make([]Product, 0, featuredTierSize)
	for i := 0; i < featuredTierSize; i++ {
		p := Product{ID: primitive.NewObjectID()}
		tierA = append(tierA, p)
		// Every product qualifies under both criteria.
		tierB = append(tierB, p)
	}

	merged := mergeFeatured(tierA, tierB)
	assert.Len(t, merged, featuredTierSize)

	seen := make(map[primitive.ObjectID]bool)
	for _, p := range merged {
		assert.False(t, seen[p.ID], "duplicate product %s", p.ID.Hex())
		seen[p.ID] = true
	}
}
