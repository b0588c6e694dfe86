// cart.go

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func loadCart(userID primitive.ObjectID) (*Cart, error) {
	ctx, cancel := dbCtx()
	defer cancel()

	var cart Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// saveCartItems writes the new item list only if the cart has not moved since
// it was read. A version mismatch means a concurrent writer won; the caller
// gets a 409 and retries.
func saveCartItems(cart *Cart, items []CartItem) *apiError {
	ctx, cancel := dbCtx()
	defer cancel()

	res, err := db.Collection("carts").UpdateOne(ctx,
		bson.M{"user": cart.User, "version": cart.Version},
		bson.M{
			"$set": bson.M{"items": items, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return &apiError{Status: 500, Message: "Internal server error"}
	}
	if res.MatchedCount == 0 {
		return conflict("Cart was modified concurrently, please retry")
	}
	cart.Items = items
	cart.Version++
	return nil
}

// mergeCartItem folds an addition into the item list: an existing
// (product, variant) line gets its quantity bumped, anything else appends.
func mergeCartItem(items []CartItem, add CartItem) []CartItem {
	for i, item := range items {
		if item.Product == add.Product && item.Variant == add.Variant {
			items[i].Quantity += add.Quantity
			return items
		}
	}
	return append(items, add)
}

func getCart(c *gin.Context) {
	user := currentUser(c)

	cart, err := loadCart(user.ID)
	if err != nil {
		c.Error(err)
		return
	}
	if cart == nil {
		ok(c, gin.H{"items": []CartItem{}})
		return
	}
	ok(c, cart)
}

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Variant   string `json:"variant"`
}

func addToCart(c *gin.Context) {
	user := currentUser(c)

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a product and a positive quantity"))
		return
	}

	productID, apiErr := parseObjectID(req.ProductID)
	if apiErr != nil {
		c.Error(badRequest("Invalid product"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var product Product
	err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Product not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	if product.Stock < req.Quantity {
		c.Error(badRequest("Insufficient stock"))
		return
	}

	cart, err := loadCart(user.ID)
	if err != nil {
		c.Error(err)
		return
	}

	add := CartItem{Product: productID, Quantity: req.Quantity, Variant: req.Variant}

	if cart == nil {
		// Lazily created on first add.
		newCart := Cart{
			User:      user.ID,
			Items:     []CartItem{add},
			Version:   1,
			UpdatedAt: time.Now(),
		}
		res, err := db.Collection("carts").InsertOne(ctx, newCart)
		if err != nil {
			c.Error(err)
			return
		}
		newCart.ID = res.InsertedID.(primitive.ObjectID)
		ok(c, newCart)
		return
	}

	if apiErr := saveCartItems(cart, mergeCartItem(cart.Items, add)); apiErr != nil {
		c.Error(apiErr)
		return
	}
	ok(c, cart)
}

func updateCartItem(c *gin.Context) {
	user := currentUser(c)
	productID, apiErr := parseObjectID(c.Param("productId"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a quantity"))
		return
	}

	cart, err := loadCart(user.ID)
	if err != nil {
		c.Error(err)
		return
	}
	if cart == nil {
		c.Error(notFound("Cart not found"))
		return
	}

	items := make([]CartItem, 0, len(cart.Items))
	found := false
	for _, item := range cart.Items {
		if item.Product == productID {
			found = true
			if req.Quantity > 0 {
				item.Quantity = req.Quantity
				items = append(items, item)
			}
			// Quantity <= 0 removes the line.
			continue
		}
		items = append(items, item)
	}
	if !found {
		c.Error(notFound("Item not found in cart"))
		return
	}

	if apiErr := saveCartItems(cart, items); apiErr != nil {
		c.Error(apiErr)
		return
	}
	ok(c, cart)
}

func removeFromCart(c *gin.Context) {
	user := currentUser(c)
	productID, apiErr := parseObjectID(c.Param("productId"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	cart, err := loadCart(user.ID)
	if err != nil {
		c.Error(err)
		return
	}
	if cart == nil {
		c.Error(notFound("Cart not found"))
		return
	}

	items := make([]CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Product != productID {
			items = append(items, item)
		}
	}

	if apiErr := saveCartItems(cart, items); apiErr != nil {
		c.Error(apiErr)
		return
	}
	ok(c, cart)
}

func clearCart(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := dbCtx()
	defer cancel()
	_, err := db.Collection("carts").UpdateOne(ctx,
		bson.M{"user": user.ID},
		bson.M{
			"$set": bson.M{"items": []CartItem{}, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, gin.H{"items": []CartItem{}})
}
