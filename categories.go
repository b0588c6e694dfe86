// categories.go

package main

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL slug from a category name: lowercase, runs of
// non-alphanumerics collapsed to a single dash.
func slugify(name string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(name), "-")
}

func getCategories(c *gin.Context) {
	ctx, cancel := queryCtx()
	defer cancel()
	cur, err := db.Collection("categories").Find(ctx, bson.M{"isActive": true})
	if err != nil {
		c.Error(err)
		return
	}
	categories := make([]Category, 0)
	if err := cur.All(ctx, &categories); err != nil {
		c.Error(err)
		return
	}
	ok(c, categories)
}

type categoryRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	Image          *Image `json:"image"`
	ParentCategory string `json:"parentCategory"`
	IsActive       *bool  `json:"isActive"`
}

func createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a category name"))
		return
	}

	now := time.Now()
	category := Category{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Slug:        slugify(req.Name),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ParentCategory != "" {
		if id, err := primitive.ObjectIDFromHex(req.ParentCategory); err == nil {
			category.ParentCategory = &id
		}
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("categories").InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.Error(badRequest("A category with that name already exists"))
			return
		}
		c.Error(err)
		return
	}
	category.ID = res.InsertedID.(primitive.ObjectID)
	created(c, category)
}

func updateCategory(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a category name"))
		return
	}

	// The slug follows the name on every rename.
	update := bson.M{
		"name":      req.Name,
		"slug":      slugify(req.Name),
		"updatedAt": time.Now(),
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Image != nil {
		update["image"] = req.Image
	}
	if req.IsActive != nil {
		update["isActive"] = *req.IsActive
	}
	if req.ParentCategory != "" {
		if parentID, err := primitive.ObjectIDFromHex(req.ParentCategory); err == nil {
			update["parentCategory"] = parentID
		}
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated Category
	err := db.Collection("categories").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		afterUpdate(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Category not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, updated)
}

// deleteCategory removes the category only. Products referencing it keep
// their dangling reference.
func deleteCategory(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.Error(err)
		return
	}
	if res.DeletedCount == 0 {
		c.Error(notFound("Category not found"))
		return
	}
	ok(c, gin.H{})
}
