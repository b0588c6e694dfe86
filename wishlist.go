// wishlist.go

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func getWishlist(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbCtx()
	defer cancel()
	var wishlist Wishlist
	err := db.Collection("wishlists").FindOne(ctx, bson.M{"user": user.ID}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		ok(c, gin.H{"products": []WishlistItem{}})
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, wishlist)
}

func addToWishlist(c *gin.Context) {
	user := currentUser(c)

	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a product"))
		return
	}
	productID, apiErr := parseObjectID(req.ProductID)
	if apiErr != nil {
		c.Error(badRequest("Invalid product"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	// No-op when the product is already saved.
	var wishlist Wishlist
	err := db.Collection("wishlists").FindOne(ctx, bson.M{"user": user.ID}).Decode(&wishlist)
	if err == nil {
		for _, item := range wishlist.Products {
			if item.Product == productID {
				ok(c, wishlist)
				return
			}
		}
	}

	err = db.Collection("wishlists").FindOneAndUpdate(ctx,
		bson.M{"user": user.ID},
		bson.M{"$push": bson.M{"products": WishlistItem{Product: productID, AddedAt: time.Now()}}},
		afterUpdate().SetUpsert(true),
	).Decode(&wishlist)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, wishlist)
}

func removeFromWishlist(c *gin.Context) {
	user := currentUser(c)
	productID, apiErr := parseObjectID(c.Param("productId"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var wishlist Wishlist
	err := db.Collection("wishlists").FindOneAndUpdate(ctx,
		bson.M{"user": user.ID},
		bson.M{"$pull": bson.M{"products": bson.M{"product": productID}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Wishlist not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, wishlist)
}
