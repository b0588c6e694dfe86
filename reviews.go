// reviews.go

package main

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRequest struct {
	Product string  `json:"product" binding:"required"`
	Order   string  `json:"order" binding:"required"`
	Rating  float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Title   string  `json:"title" binding:"required,max=100"`
	Comment string  `json:"comment" binding:"required,max=1000"`
	Images  []Image `json:"images"`
}

func createReview(c *gin.Context) {
	user := currentUser(c)

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide product, order, a 1-5 rating, title and comment"))
		return
	}

	productID, apiErr := parseObjectID(req.Product)
	if apiErr != nil {
		c.Error(badRequest("Invalid product"))
		return
	}
	orderID, apiErr := parseObjectID(req.Order)
	if apiErr != nil {
		c.Error(badRequest("Invalid order"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	// Verified purchase when the order belongs to the reviewer and contains
	// the product.
	verified := false
	var order Order
	if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "user": user.ID}).Decode(&order); err == nil {
		for _, item := range order.Items {
			if item.Product == productID {
				verified = true
				break
			}
		}
	}

	review := Review{
		Product:          productID,
		User:             user.ID,
		Order:            orderID,
		Rating:           req.Rating,
		Title:            req.Title,
		Comment:          req.Comment,
		Images:           req.Images,
		VerifiedPurchase: verified,
		IsApproved:       true,
		CreatedAt:        time.Now(),
	}

	res, err := db.Collection("reviews").InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.Error(badRequest("You have already reviewed this product for this order"))
			return
		}
		c.Error(err)
		return
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	if err := recomputeProductRating(productID); err != nil {
		slog.Warn("could not recompute product rating", "product", productID.Hex(), "err", err)
	}

	created(c, review)
}

// recomputeProductRating refreshes the denormalized rating aggregate on the
// product from its approved reviews.
func recomputeProductRating(productID primitive.ObjectID) error {
	ctx, cancel := queryCtx()
	defer cancel()

	cur, err := db.Collection("reviews").Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"product": productID, "isApproved": true}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"rating": bson.M{"$avg": "$rating"},
			"count":  bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return err
	}

	var results []struct {
		Rating float64 `bson:"rating"`
		Count  int     `bson:"count"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return err
	}

	rating, count := 0.0, 0
	if len(results) > 0 {
		rating, count = results[0].Rating, results[0].Count
	}

	_, err = db.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"rating": rating, "numReviews": count}},
	)
	return err
}

func getProductReviews(c *gin.Context) {
	productID, apiErr := parseObjectID(c.Param("productId"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("reviews").Find(ctx,
		bson.M{"product": productID, "isApproved": true},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	reviews := make([]Review, 0)
	if err := cur.All(ctx, &reviews); err != nil {
		c.Error(err)
		return
	}

	// Attach reviewer name/avatar.
	userIDs := make([]primitive.ObjectID, 0, len(reviews))
	for _, review := range reviews {
		userIDs = append(userIDs, review.User)
	}
	if len(userIDs) > 0 {
		userCur, err := db.Collection("users").Find(ctx,
			bson.M{"_id": bson.M{"$in": userIDs}},
			options.Find().SetProjection(bson.M{"name": 1, "avatar": 1}),
		)
		if err == nil {
			var users []User
			if err := userCur.All(ctx, &users); err == nil {
				byID := make(map[primitive.ObjectID]*User, len(users))
				for i := range users {
					byID[users[i].ID] = &users[i]
				}
				for i := range reviews {
					reviews[i].UserInfo = byID[reviews[i].User]
				}
			}
		}
	}

	ok(c, reviews)
}
