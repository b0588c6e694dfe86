// returns.go

package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Return statuses
const (
	ReturnPending  = "pending"
	ReturnApproved = "approved"
	ReturnRejected = "rejected"
	ReturnRefunded = "refunded"
)

var returnReasons = map[string]bool{
	"defective":          true,
	"wrong_item":         true,
	"not_as_described":   true,
	"damaged":            true,
	"changed_mind":       true,
	"better_price_found": true,
	"quality_issues":     true,
	"other":              true,
}

type returnRequestBody struct {
	Order       string       `json:"order" binding:"required"`
	Items       []ReturnItem `json:"items"`
	Reason      string       `json:"reason" binding:"required"`
	Description string       `json:"description" binding:"required"`
	Images      []Image      `json:"images"`
}

func requestReturn(c *gin.Context) {
	user := currentUser(c)

	var req returnRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide order, reason and description"))
		return
	}
	if !returnReasons[req.Reason] {
		c.Error(badRequest("Invalid return reason"))
		return
	}

	orderID, apiErr := parseObjectID(req.Order)
	if apiErr != nil {
		c.Error(badRequest("Invalid order"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var order Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "user": user.ID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Order not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	now := time.Now()
	ret := Return{
		Order:       orderID,
		User:        user.ID,
		Items:       req.Items,
		Reason:      req.Reason,
		Description: req.Description,
		Images:      req.Images,
		Status:      ReturnPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := db.Collection("returns").InsertOne(ctx, ret)
	if err != nil {
		c.Error(err)
		return
	}
	ret.ID = res.InsertedID.(primitive.ObjectID)
	created(c, ret)
}

func getReturns(c *gin.Context) {
	user := currentUser(c)

	filter := bson.M{}
	if user.Role != RoleAdmin {
		filter["user"] = user.ID
	}

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("returns").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	returns := make([]Return, 0)
	if err := cur.All(ctx, &returns); err != nil {
		c.Error(err)
		return
	}
	ok(c, returns)
}

type updateReturnRequest struct {
	Status          string  `json:"status"`
	RefundAmount    float64 `json:"refundAmount"`
	RefundMethod    string  `json:"refundMethod"`
	AdminNotes      string  `json:"adminNotes"`
	RejectionReason string  `json:"rejectionReason"`
}

func updateReturn(c *gin.Context) {
	admin := currentUser(c)
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req updateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Invalid input"))
		return
	}

	now := time.Now()
	update := bson.M{"updatedAt": now}
	if req.Status != "" {
		switch req.Status {
		case ReturnPending, ReturnApproved, ReturnRejected, ReturnRefunded:
		default:
			c.Error(badRequest("Invalid return status"))
			return
		}
		update["status"] = req.Status
		switch req.Status {
		case ReturnApproved:
			update["approvedBy"] = admin.ID
			update["approvedAt"] = now
		case ReturnRejected:
			update["rejectionReason"] = req.RejectionReason
		case ReturnRefunded:
			update["refundedAt"] = now
		}
	}
	if req.RefundAmount > 0 {
		update["refundAmount"] = req.RefundAmount
	}
	if req.RefundMethod != "" {
		update["refundMethod"] = req.RefundMethod
	}
	if req.AdminNotes != "" {
		update["adminNotes"] = req.AdminNotes
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated Return
	err := db.Collection("returns").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		afterUpdate(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Return request not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	// Decision notifications are best-effort, like order side effects.
	switch updated.Status {
	case ReturnApproved:
		runSideEffects([]sideEffect{{
			name: "return approved notification",
			run: func() error {
				return insertNotification(Notification{
					User:         updated.User,
					Type:         NotifReturnApproved,
					Title:        "Return Approved",
					Message:      fmt.Sprintf("Your return request for order #%s has been approved", orderRef(updated.Order)),
					RelatedOrder: &updated.Order,
				})
			},
		}})
	case ReturnRejected:
		runSideEffects([]sideEffect{{
			name: "return rejected notification",
			run: func() error {
				return insertNotification(Notification{
					User:         updated.User,
					Type:         NotifReturnRejected,
					Title:        "Return Rejected",
					Message:      fmt.Sprintf("Your return request for order #%s has been rejected", orderRef(updated.Order)),
					RelatedOrder: &updated.Order,
				})
			},
		}})
	}

	ok(c, updated)
}
