// notifications.go

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func insertNotification(n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	ctx, cancel := dbCtx()
	defer cancel()
	_, err := db.Collection("notifications").InsertOne(ctx, n)
	return err
}

func getNotifications(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("notifications").Find(ctx,
		bson.M{"user": user.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(50),
	)
	if err != nil {
		c.Error(err)
		return
	}
	notifications := make([]Notification, 0)
	if err := cur.All(ctx, &notifications); err != nil {
		c.Error(err)
		return
	}
	ok(c, notifications)
}

func markNotificationRead(c *gin.Context) {
	user := currentUser(c)
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": id, "user": user.ID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		c.Error(err)
		return
	}
	if res.MatchedCount == 0 {
		c.Error(notFound("Notification not found"))
		return
	}
	ok(c, gin.H{})
}

// deleteNotification removes a notification for its recipient; admins may
// remove any.
func deleteNotification(c *gin.Context) {
	user := currentUser(c)
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	filter := bson.M{"_id": id}
	if user.Role != RoleAdmin {
		filter["user"] = user.ID
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("notifications").DeleteOne(ctx, filter)
	if err != nil {
		c.Error(err)
		return
	}
	if res.DeletedCount == 0 {
		c.Error(notFound("Notification not found"))
		return
	}
	ok(c, gin.H{})
}
