// seller.go

package main

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func sellerProductIDs(sellerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ctx, cancel := queryCtx()
	defer cancel()

	cur, err := db.Collection("products").Find(ctx,
		bson.M{"seller": sellerID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func getSellerStats(c *gin.Context) {
	user := currentUser(c)

	productIDs, err := sellerProductIDs(user.ID)
	if err != nil {
		c.Error(err)
		return
	}

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("orders").Find(ctx, bson.M{"items.product": bson.M{"$in": productIDs}})
	if err != nil {
		c.Error(err)
		return
	}
	var orders []Order
	if err := cur.All(ctx, &orders); err != nil {
		c.Error(err)
		return
	}

	pendingOrders := 0
	totalRevenue := 0.0
	for _, order := range orders {
		if order.Status == OrderPending {
			pendingOrders++
		}
		totalRevenue += order.Total
	}

	ok(c, gin.H{
		"totalProducts": len(productIDs),
		"totalOrders":   len(orders),
		"pendingOrders": pendingOrders,
		"totalRevenue":  totalRevenue,
	})
}

func getSellerProducts(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("products").Find(ctx, bson.M{"seller": user.ID})
	if err != nil {
		c.Error(err)
		return
	}
	products := make([]Product, 0)
	if err := cur.All(ctx, &products); err != nil {
		c.Error(err)
		return
	}
	ok(c, products)
}

func getSellerOrders(c *gin.Context) {
	user := currentUser(c)

	productIDs, err := sellerProductIDs(user.ID)
	if err != nil {
		c.Error(err)
		return
	}

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("orders").Find(ctx,
		bson.M{"items.product": bson.M{"$in": productIDs}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	orders := make([]Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		c.Error(err)
		return
	}
	ok(c, orders)
}
