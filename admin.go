// admin.go

package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func getAllUsers(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("users").Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{
			"password":           0,
			"verificationToken":  0,
			"resetPasswordToken": 0,
		}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	users := make([]User, 0)
	if err := cur.All(ctx, &users); err != nil {
		c.Error(err)
		return
	}
	ok(c, users)
}

type adminUpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func adminUpdateUser(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Invalid input"))
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.Role != "" {
		if req.Role != RoleBuyer && req.Role != RoleSeller && req.Role != RoleAdmin {
			c.Error(badRequest("Invalid role"))
			return
		}
		update["role"] = req.Role
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated User
	err := db.Collection("users").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		afterUpdate(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("User not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, sanitizeUser(&updated))
}

func banUser(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := dbCtx()
	defer cancel()
	var updated User
	err := db.Collection("users").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isBanned": true, "banReason": req.Reason, "updatedAt": time.Now()}},
		afterUpdate(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("User not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, sanitizeUser(&updated))
}

func unbanUser(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated User
	err := db.Collection("users").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"isBanned": false, "updatedAt": time.Now()},
			"$unset": bson.M{"banReason": ""},
		},
		afterUpdate(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("User not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, sanitizeUser(&updated))
}

func deleteUser(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.Error(err)
		return
	}
	if res.DeletedCount == 0 {
		c.Error(notFound("User not found"))
		return
	}
	ok(c, gin.H{})
}

func adminGetAllProducts(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("products").Find(ctx, bson.M{})
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

func banProduct(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated Product
	err := db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": ProductBanned, "updatedAt": time.Now()}},
		afterUpdate(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Product not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	featuredCache.Delete("featured")

	runSideEffects([]sideEffect{{
		name: "product banned notification",
		run: func() error {
			return insertNotification(Notification{
				User:           updated.Seller,
				Type:           NotifProductBanned,
				Title:          "Product Banned",
				Message:        fmt.Sprintf("Your product %q has been banned by an administrator", updated.Name),
				RelatedProduct: &updated.ID,
			})
		},
	}})

	ok(c, updated)
}
