// coupons.go

package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var couponDiscountTypes = map[string]bool{
	"percentage":  true,
	"fixed":       true,
	"bogo":        true,
	"buy_x_get_y": true,
}

func validateCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a coupon code"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var coupon Coupon
	err := db.Collection("coupons").FindOne(ctx, bson.M{
		"code":       normalizeCouponCode(req.Code),
		"isActive":   true,
		"expiryDate": bson.M{"$gt": time.Now()},
	}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Invalid or expired coupon"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		c.Error(badRequest("Coupon usage limit reached"))
		return
	}
	ok(c, coupon)
}

type couponRequest struct {
	Code                 string    `json:"code" binding:"required"`
	DiscountType         string    `json:"discountType" binding:"required"`
	Value                float64   `json:"value" binding:"required,gte=0"`
	MinPurchase          float64   `json:"minPurchase"`
	MaxDiscount          float64   `json:"maxDiscount"`
	ExpiryDate           time.Time `json:"expiryDate" binding:"required"`
	UsageLimit           int       `json:"usageLimit"`
	ApplicableCategories []string  `json:"applicableCategories"`
	ApplicableProducts   []string  `json:"applicableProducts"`
	BuyQuantity          int       `json:"buyQuantity"`
	GetQuantity          int       `json:"getQuantity"`
	Description          string    `json:"description"`
}

func createCoupon(c *gin.Context) {
	user := currentUser(c)

	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide code, discount type, value and expiry date"))
		return
	}
	if !couponDiscountTypes[req.DiscountType] {
		c.Error(badRequest("Invalid discount type"))
		return
	}

	now := time.Now()
	coupon := Coupon{
		Code:         normalizeCouponCode(req.Code),
		DiscountType: req.DiscountType,
		Value:        req.Value,
		MinPurchase:  req.MinPurchase,
		MaxDiscount:  req.MaxDiscount,
		ExpiryDate:   req.ExpiryDate,
		UsageLimit:   req.UsageLimit,
		BuyQuantity:  req.BuyQuantity,
		GetQuantity:  req.GetQuantity,
		IsActive:     true,
		Description:  req.Description,
		CreatedBy:    user.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, hexID := range req.ApplicableCategories {
		if id, err := primitive.ObjectIDFromHex(hexID); err == nil {
			coupon.ApplicableCategories = append(coupon.ApplicableCategories, id)
		}
	}
	for _, hexID := range req.ApplicableProducts {
		if id, err := primitive.ObjectIDFromHex(hexID); err == nil {
			coupon.ApplicableProducts = append(coupon.ApplicableProducts, id)
		}
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("coupons").InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.Error(badRequest("A coupon with that code already exists"))
			return
		}
		c.Error(err)
		return
	}
	coupon.ID = res.InsertedID.(primitive.ObjectID)
	created(c, coupon)
}

func getCoupons(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("coupons").Find(ctx, bson.M{})
	if err != nil {
		c.Error(err)
		return
	}
	coupons := make([]Coupon, 0)
	if err := cur.All(ctx, &coupons); err != nil {
		c.Error(err)
		return
	}
	ok(c, coupons)
}

func getActiveCoupons(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("coupons").Find(ctx,
		bson.M{"isActive": true, "expiryDate": bson.M{"$gt": time.Now()}},
		options.Find().SetProjection(bson.M{
			"code":         1,
			"discountType": 1,
			"value":        1,
			"minPurchase":  1,
			"maxDiscount":  1,
			"description":  1,
			"expiryDate":   1,
		}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	coupons := make([]Coupon, 0)
	if err := cur.All(ctx, &coupons); err != nil {
		c.Error(err)
		return
	}
	ok(c, coupons)
}
