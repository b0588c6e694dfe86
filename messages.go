// messages.go

package main

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// conversationID derives the deterministic key grouping all messages between
// two participants, optionally scoped to a product. Commutative in the two
// participant ids.
func conversationID(a, b, productID string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	id := pair[0] + "-" + pair[1]
	if productID != "" {
		id += "-" + productID
	}
	return id
}

func insertMessage(msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	ctx, cancel := dbCtx()
	defer cancel()
	_, err := db.Collection("messages").InsertOne(ctx, msg)
	return err
}

type sendMessageRequest struct {
	Receiver       string `json:"receiver" binding:"required"`
	Content        string `json:"content" binding:"required"`
	ConversationID string `json:"conversationId"`
	RelatedOrder   string `json:"relatedOrder"`
	RelatedProduct string `json:"relatedProduct"`
}

func sendMessage(c *gin.Context) {
	sender := currentUser(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a receiver and content"))
		return
	}

	receiver, apiErr := parseObjectID(req.Receiver)
	if apiErr != nil {
		c.Error(badRequest("Invalid receiver"))
		return
	}

	msg := Message{
		ConversationID: req.ConversationID,
		Sender:         sender.ID,
		Receiver:       receiver,
		Content:        req.Content,
		CreatedAt:      time.Now(),
	}
	if msg.ConversationID == "" {
		msg.ConversationID = conversationID(sender.ID.Hex(), receiver.Hex(), req.RelatedProduct)
	}
	if req.RelatedOrder != "" {
		if id, err := primitive.ObjectIDFromHex(req.RelatedOrder); err == nil {
			msg.RelatedOrder = &id
		}
	}
	if req.RelatedProduct != "" {
		if id, err := primitive.ObjectIDFromHex(req.RelatedProduct); err == nil {
			msg.RelatedProduct = &id
		}
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("messages").InsertOne(ctx, msg)
	if err != nil {
		c.Error(err)
		return
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	created(c, msg)
}

type createConversationRequest struct {
	Seller  string `json:"seller" binding:"required"`
	Product string `json:"product"`
}

// createConversation bootstraps the deterministic conversation between the
// caller and a seller, seeding it with a system message if it is new.
func createConversation(c *gin.Context) {
	user := currentUser(c)

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a seller"))
		return
	}

	seller, apiErr := parseObjectID(req.Seller)
	if apiErr != nil {
		c.Error(badRequest("Invalid seller"))
		return
	}

	convID := conversationID(user.ID.Hex(), seller.Hex(), req.Product)

	ctx, cancel := dbCtx()
	defer cancel()
	count, err := db.Collection("messages").CountDocuments(ctx, bson.M{"conversationId": convID})
	if err != nil {
		c.Error(err)
		return
	}
	if count == 0 {
		msg := Message{
			ConversationID:  convID,
			Sender:          user.ID,
			Receiver:        seller,
			Content:         "Started conversation",
			IsSystemMessage: true,
			CreatedAt:       time.Now(),
		}
		if req.Product != "" {
			if id, idErr := primitive.ObjectIDFromHex(req.Product); idErr == nil {
				msg.RelatedProduct = &id
			}
		}
		if _, err := db.Collection("messages").InsertOne(ctx, msg); err != nil {
			c.Error(err)
			return
		}
	}

	ok(c, gin.H{"id": convID, "product": req.Product, "otherUser": gin.H{"id": seller.Hex()}})
}

type conversationSummary struct {
	ID          string             `json:"id"`
	OtherUser   primitive.ObjectID `json:"otherUser"`
	LastMessage Message            `json:"lastMessage"`
	UnreadCount int                `json:"unreadCount"`
}

// getConversations lists the caller's conversations, newest first, one entry
// per conversation id. Membership is implicit in the message rows.
func getConversations(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("messages").Find(ctx,
		bson.M{"$or": []bson.M{{"sender": user.ID}, {"receiver": user.ID}}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	var messages []Message
	if err := cur.All(ctx, &messages); err != nil {
		c.Error(err)
		return
	}

	conversations := make([]conversationSummary, 0)
	seen := make(map[string]bool)
	for _, msg := range messages {
		if seen[msg.ConversationID] {
			continue
		}
		seen[msg.ConversationID] = true
		other := msg.Sender
		if other == user.ID {
			other = msg.Receiver
		}
		conversations = append(conversations, conversationSummary{
			ID:          msg.ConversationID,
			OtherUser:   other,
			LastMessage: msg,
		})
	}

	ok(c, conversations)
}

func getMessages(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("messages").Find(ctx,
		bson.M{"conversationId": c.Param("conversationId")},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		c.Error(err)
		return
	}
	messages := make([]Message, 0)
	if err := cur.All(ctx, &messages); err != nil {
		c.Error(err)
		return
	}
	ok(c, messages)
}
