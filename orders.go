// orders.go

package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// adminCommissionRate is the platform's fixed cut of an order's subtotal.
const adminCommissionRate = 0.20

func computeAdminProfit(subtotal float64) float64 {
	return subtotal * adminCommissionRate
}

// orderRef is the short id shown to users in notifications and messages.
func orderRef(id primitive.ObjectID) string {
	hex := id.Hex()
	return hex[len(hex)-8:]
}

type statusNotice struct {
	Type    string
	Message string
}

// statusNoticeFor maps an order status to the buyer-facing notification.
// Unknown statuses get no notification.
func statusNoticeFor(status string) (statusNotice, bool) {
	switch status {
	case OrderPending:
		return statusNotice{NotifOrderPlaced, "Your order is pending confirmation"}, true
	case OrderProcessing:
		return statusNotice{NotifOrderProcessing, "Your order is being processed"}, true
	case OrderShipped:
		return statusNotice{NotifOrderShipped, "Your order has been shipped and is on the way"}, true
	case OrderOutForDelivery:
		return statusNotice{NotifOrderShipped, "Your order is out for delivery and will arrive soon"}, true
	case OrderDelivered:
		return statusNotice{NotifOrderDelivered, "Your order has been delivered successfully"}, true
	case OrderCancelled:
		return statusNotice{NotifOrderCancelled, "Your order has been cancelled"}, true
	default:
		return statusNotice{}, false
	}
}

// groupItemsBySeller buckets line items by the owning seller of each item's
// product. Items whose product is not in sellerOf are skipped.
func groupItemsBySeller(items []OrderItem, sellerOf map[primitive.ObjectID]primitive.ObjectID) map[primitive.ObjectID][]OrderItem {
	groups := make(map[primitive.ObjectID][]OrderItem)
	for _, item := range items {
		seller, found := sellerOf[item.Product]
		if !found {
			slog.Warn("order item product has no resolvable seller", "product", item.Product.Hex())
			continue
		}
		groups[seller] = append(groups[seller], item)
	}
	return groups
}

func itemNames(items []OrderItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Unknown Item"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// sideEffect is one best-effort step run after the primary write. A failure
// is logged and swallowed; it never fails the request or blocks later steps.
type sideEffect struct {
	name string
	run  func() error
}

func runSideEffects(effects []sideEffect) {
	for _, effect := range effects {
		if err := effect.run(); err != nil {
			slog.Warn("order side effect failed", "effect", effect.name, "err", err)
		}
	}
}

// sellersOfProducts resolves product ids to their owning sellers.
func sellersOfProducts(ids []primitive.ObjectID) (map[primitive.ObjectID]primitive.ObjectID, error) {
	ctx, cancel := queryCtx()
	defer cancel()

	cur, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}

	sellerOf := make(map[primitive.ObjectID]primitive.ObjectID, len(products))
	for _, p := range products {
		sellerOf[p.ID] = p.Seller
	}
	return sellerOf, nil
}

type createOrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress *Address    `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	Subtotal        float64     `json:"subtotal"`
	ShippingCost    float64     `json:"shippingCost"`
	Discount        float64     `json:"discount"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	Coupon          *CouponUse  `json:"coupon"`
	Notes           string      `json:"notes"`
}

func createOrder(c *gin.Context) {
	buyer := currentUser(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Invalid input"))
		return
	}
	if len(req.Items) == 0 {
		c.Error(badRequest("Order must contain at least one item"))
		return
	}
	if req.ShippingAddress == nil {
		c.Error(badRequest("Shipping address is required"))
		return
	}
	if req.Subtotal == 0 || req.Total == 0 {
		c.Error(badRequest("Subtotal and total are required"))
		return
	}

	now := time.Now()
	order := Order{
		User:            buyer.ID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  PaymentDetails{Status: "pending"},
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		Discount:        req.Discount,
		Tax:             req.Tax,
		Total:           req.Total,
		AdminProfit:     computeAdminProfit(req.Subtotal),
		Coupon:          req.Coupon,
		Status:          OrderPending,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		c.Error(err)
		return
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	order.BuyerInfo = sanitizeUser(buyer)

	productIDs := make([]primitive.ObjectID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.Product)
	}

	effects := []sideEffect{
		{
			name: "buyer notification",
			run: func() error {
				return insertNotification(Notification{
					User:         buyer.ID,
					Type:         NotifOrderPlaced,
					Title:        "Order Placed Successfully",
					Message:      fmt.Sprintf("Your order #%s has been placed successfully. Total: $%.2f", orderRef(order.ID), order.Total),
					Link:         "/track-order/" + order.ID.Hex(),
					RelatedOrder: &order.ID,
				})
			},
		},
	}

	sellerOf, err := sellersOfProducts(productIDs)
	if err != nil {
		slog.Warn("could not resolve sellers for order items", "order", order.ID.Hex(), "err", err)
		sellerOf = map[primitive.ObjectID]primitive.ObjectID{}
	}

	for seller, items := range groupItemsBySeller(order.Items, sellerOf) {
		seller, items := seller, items
		names := itemNames(items)
		effects = append(effects,
			sideEffect{
				name: "seller notification " + seller.Hex(),
				run: func() error {
					return insertNotification(Notification{
						User:         seller,
						Type:         NotifOrderPlaced,
						Title:        "New Order Received",
						Message:      fmt.Sprintf("You have received a new order from %s. Items: %s", buyer.Name, names),
						Link:         "/seller/orders",
						RelatedOrder: &order.ID,
					})
				},
			},
			sideEffect{
				name: "seller message " + seller.Hex(),
				run: func() error {
					return insertMessage(Message{
						ConversationID:  conversationID(buyer.ID.Hex(), seller.Hex(), ""),
						Sender:          buyer.ID,
						Receiver:        seller,
						Content:         fmt.Sprintf("Hi! I just placed an order for: %s. Order ID: #%s", names, orderRef(order.ID)),
						IsSystemMessage: true,
						RelatedOrder:    &order.ID,
					})
				},
			},
		)
	}

	runSideEffects(effects)

	populateOrderItems(&order)
	created(c, order)
}

// populateOrderItems attaches the live product documents referenced by the
// order's line items to the response.
func populateOrderItems(order *Order) {
	ids := make([]primitive.ObjectID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.Product)
	}

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return
	}
	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return
	}
	order.ItemProducts = products
}

func getMyOrders(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("orders").Find(ctx,
		bson.M{"user": user.ID},
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

func getAllOrders(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("orders").Find(ctx, bson.M{},
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

// sellerOwnsOrderItem reports whether the seller owns the product behind at
// least one of the order's line items.
func sellerOwnsOrderItem(order *Order, sellerID primitive.ObjectID) bool {
	ids := make([]primitive.ObjectID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.Product)
	}
	sellerOf, err := sellersOfProducts(ids)
	if err != nil {
		return false
	}
	for _, seller := range sellerOf {
		if seller == sellerID {
			return true
		}
	}
	return false
}

func getOrder(c *gin.Context) {
	user := currentUser(c)
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var order Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Order not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	// Owned by the buyer, read-shared with admins and sellers of its items.
	if order.User != user.ID && user.Role != RoleAdmin {
		if user.Role != RoleSeller || !sellerOwnsOrderItem(&order, user.ID) {
			c.Error(forbidden("Not authorized to view this order"))
			return
		}
	}

	populateOrderItems(&order)
	ok(c, order)
}

func updateOrderStatus(c *gin.Context) {
	actor := currentUser(c)
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a status"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var order Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Order not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	if actor.Role == RoleSeller && !sellerOwnsOrderItem(&order, actor.ID) {
		c.Error(forbidden("You are not authorized to update this order"))
		return
	}

	now := time.Now()
	update := bson.M{"status": req.Status, "updatedAt": now}
	switch req.Status {
	case OrderDelivered:
		update["deliveredAt"] = now
	case OrderCancelled:
		update["cancelledAt"] = now
	}

	var updated Order
	err = db.Collection("orders").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": update,
			"$push": bson.M{"tracking.history": TrackingEvent{
				Status:    req.Status,
				Timestamp: now,
			}},
		},
		afterUpdate(),
	).Decode(&updated)
	if err != nil {
		c.Error(err)
		return
	}

	if notice, found := statusNoticeFor(req.Status); found {
		runSideEffects([]sideEffect{
			{
				name: "status notification",
				run: func() error {
					return insertNotification(Notification{
						User:         updated.User,
						Type:         notice.Type,
						Title:        "Order Status Updated",
						Message:      fmt.Sprintf("Order #%s: %s", orderRef(updated.ID), notice.Message),
						Link:         "/track-order/" + updated.ID.Hex(),
						RelatedOrder: &updated.ID,
					})
				},
			},
			{
				name: "status message",
				run: func() error {
					return insertMessage(Message{
						ConversationID:  conversationID(updated.User.Hex(), actor.ID.Hex(), ""),
						Sender:          actor.ID,
						Receiver:        updated.User,
						Content:         fmt.Sprintf("Order Update: Your order #%s status has been updated to %q. %s", orderRef(updated.ID), req.Status, notice.Message),
						IsSystemMessage: true,
						RelatedOrder:    &updated.ID,
					})
				},
			},
		})
	}

	ok(c, updated)
}
