// products.go

package main

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPageSize  = 20
	featuredLimit    = 20
	featuredTierSize = 15
)

type productListQuery struct {
	Search    string
	Category  string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	Seller    string
	FlashSale bool
	Sort      string
	Page      int
	Limit     int
}

func parseProductListQuery(c *gin.Context) productListQuery {
	q := productListQuery{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Seller:    c.Query("seller"),
		FlashSale: c.Query("flashSale") == "true",
		Sort:      c.Query("sort"),
		Page:      1,
		Limit:     defaultPageSize,
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		q.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		q.MaxPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("minRating"), 64); err == nil {
		q.MinRating = v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	return q
}

// buildProductFilter composes the listing filter. Listings only ever see
// active products.
func buildProductFilter(q productListQuery) bson.M {
	filter := bson.M{"status": ProductActive}

	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}
	if q.Category != "" {
		if id, err := primitive.ObjectIDFromHex(q.Category); err == nil {
			filter["category"] = id
		}
	}
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		price := bson.M{}
		if q.MinPrice > 0 {
			price["$gte"] = q.MinPrice
		}
		if q.MaxPrice > 0 {
			price["$lte"] = q.MaxPrice
		}
		filter["price"] = price
	}
	if q.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": q.MinRating}
	}
	if q.Seller != "" {
		if id, err := primitive.ObjectIDFromHex(q.Seller); err == nil {
			filter["seller"] = id
		}
	}
	if q.FlashSale {
		filter["isFlashSale"] = true
		filter["flashSaleEnd"] = bson.M{"$gt": time.Now()}
	}
	return filter
}

func productSort(key string) bson.D {
	switch key {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "rating":
		return bson.D{{Key: "rating", Value: -1}}
	case "popular":
		return bson.D{{Key: "sold", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func listProducts(c *gin.Context) {
	q := parseProductListQuery(c)
	filter := buildProductFilter(q)

	ctx, cancel := queryCtx()
	defer cancel()

	opts := options.Find().
		SetSort(productSort(q.Sort)).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cur, err := db.Collection("products").Find(ctx, filter, opts)
	if err != nil {
		c.Error(err)
		return
	}
	products := make([]Product, 0)
	if err := cur.All(ctx, &products); err != nil {
		c.Error(err)
		return
	}

	total, err := db.Collection("products").CountDocuments(ctx, filter)
	if err != nil {
		c.Error(err)
		return
	}

	pages := int(math.Ceil(float64(total) / float64(q.Limit)))
	okPaged(c, products, len(products), total, q.Page, pages)
}

// mergeFeatured unions the two ranked tiers preserving order, dropping
// duplicate product identities.
func mergeFeatured(tiers ...[]Product) []Product {
	seen := make(map[primitive.ObjectID]bool)
	merged := make([]Product, 0)
	for _, tier := range tiers {
		for _, p := range tier {
			if !seen[p.ID] {
				seen[p.ID] = true
				merged = append(merged, p)
			}
		}
	}
	return merged
}

func getFeaturedProducts(c *gin.Context) {
	var cached []Product
	if hit, _ := featuredCache.Unmarshal("featured", &cached); hit {
		c.JSON(200, Response{Success: true, Data: cached, Count: intPtr(len(cached))})
		return
	}

	ctx, cancel := queryCtx()
	defer cancel()

	active := bson.M{"status": ProductActive}

	fetch := func(filter bson.M, sort bson.D, limit int64) ([]Product, error) {
		cur, err := db.Collection("products").Find(ctx, filter,
			options.Find().SetSort(sort).SetLimit(limit))
		if err != nil {
			return nil, err
		}
		out := make([]Product, 0)
		return out, cur.All(ctx, &out)
	}

	topSold, err := fetch(active, bson.D{{Key: "sold", Value: -1}}, featuredTierSize)
	if err != nil {
		c.Error(err)
		return
	}
	topRated, err := fetch(
		bson.M{"status": ProductActive, "rating": bson.M{"$gte": 4}},
		bson.D{{Key: "rating", Value: -1}, {Key: "numReviews", Value: -1}},
		featuredTierSize,
	)
	if err != nil {
		c.Error(err)
		return
	}

	products := mergeFeatured(topSold, topRated)

	if len(products) < featuredLimit {
		existing := make([]primitive.ObjectID, 0, len(products))
		for _, p := range products {
			existing = append(existing, p.ID)
		}
		recent, err := fetch(
			bson.M{"status": ProductActive, "_id": bson.M{"$nin": existing}},
			bson.D{{Key: "createdAt", Value: -1}},
			int64(featuredLimit-len(products)),
		)
		if err != nil {
			c.Error(err)
			return
		}
		products = append(products, recent...)
	}

	if len(products) > featuredLimit {
		products = products[:featuredLimit]
	}

	featuredCache.Marshal("featured", products)
	c.JSON(200, Response{Success: true, Data: products, Count: intPtr(len(products))})
}

func intPtr(v int) *int { return &v }

func getProduct(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var product Product
	err := db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		afterUpdate(),
	).Decode(&product)
	if err == mongo.ErrNoDocuments {
		c.Error(notFound("Product not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, product)
}

type productRequest struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	Price          float64           `json:"price" binding:"required,gte=0"`
	OriginalPrice  float64           `json:"originalPrice"`
	Discount       float64           `json:"discount"`
	Commission     *float64          `json:"commission"`
	Category       string            `json:"category" binding:"required"`
	Images         []Image           `json:"images"`
	Stock          int               `json:"stock" binding:"gte=0"`
	Variants       []Variant         `json:"variants"`
	Specifications map[string]string `json:"specifications"`
	Tags           []string          `json:"tags"`
	IsFlashSale    bool              `json:"isFlashSale"`
	FlashSaleEnd   *time.Time        `json:"flashSaleEnd"`
}

func createProduct(c *gin.Context) {
	user := currentUser(c)

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide name, description, category and a non-negative price"))
		return
	}
	if req.Discount < 0 || req.Discount > 100 {
		c.Error(badRequest("Discount must be between 0 and 100"))
		return
	}

	categoryID, apiErr := parseObjectID(req.Category)
	if apiErr != nil {
		c.Error(badRequest("Invalid category"))
		return
	}

	commission := 20.0
	if req.Commission != nil {
		if *req.Commission < 0 || *req.Commission > 100 {
			c.Error(badRequest("Commission must be between 0 and 100"))
			return
		}
		commission = *req.Commission
	}

	now := time.Now()
	product := Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Discount:       req.Discount,
		Commission:     commission,
		Category:       categoryID,
		Images:         req.Images,
		Stock:          req.Stock,
		Seller:         user.ID,
		Variants:       req.Variants,
		Specifications: req.Specifications,
		Tags:           req.Tags,
		IsFlashSale:    req.IsFlashSale,
		FlashSaleEnd:   req.FlashSaleEnd,
		Status:         ProductActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("products").InsertOne(ctx, product)
	if err != nil {
		c.Error(err)
		return
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	featuredCache.Delete("featured")
	created(c, product)
}

// loadOwnedProduct fetches a product and checks the caller may mutate it.
func loadOwnedProduct(c *gin.Context, id primitive.ObjectID) (*Product, *apiError) {
	ctx, cancel := dbCtx()
	defer cancel()

	var product Product
	err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, notFound("Product not found")
	}
	if err != nil {
		return nil, &apiError{Status: 500, Message: "Internal server error"}
	}

	user := currentUser(c)
	if product.Seller != user.ID && user.Role != RoleAdmin {
		return nil, forbidden("Not authorized to modify this product")
	}
	return &product, nil
}

func updateProduct(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}
	if _, apiErr := loadOwnedProduct(c, id); apiErr != nil {
		c.Error(apiErr)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Invalid input"))
		return
	}
	if req.Discount < 0 || req.Discount > 100 {
		c.Error(badRequest("Discount must be between 0 and 100"))
		return
	}

	update := bson.M{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"discount":    req.Discount,
		"stock":       req.Stock,
		"isFlashSale": req.IsFlashSale,
		"updatedAt":   time.Now(),
	}
	if req.OriginalPrice > 0 {
		update["originalPrice"] = req.OriginalPrice
	}
	if req.Category != "" {
		if categoryID, err := primitive.ObjectIDFromHex(req.Category); err == nil {
			update["category"] = categoryID
		}
	}
	if req.Images != nil {
		update["images"] = req.Images
	}
	if req.Variants != nil {
		update["variants"] = req.Variants
	}
	if req.Specifications != nil {
		update["specifications"] = req.Specifications
	}
	if req.Tags != nil {
		update["tags"] = req.Tags
	}
	if req.FlashSaleEnd != nil {
		update["flashSaleEnd"] = req.FlashSaleEnd
	}
	if req.Commission != nil {
		update["commission"] = *req.Commission
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated Product
	err := db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		afterUpdate(),
	).Decode(&updated)
	if err != nil {
		c.Error(err)
		return
	}
	featuredCache.Delete("featured")
	ok(c, updated)
}

func deleteProduct(c *gin.Context) {
	id, apiErr := parseObjectID(c.Param("id"))
	if apiErr != nil {
		c.Error(apiErr)
		return
	}
	if _, apiErr := loadOwnedProduct(c, id); apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	if _, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		c.Error(err)
		return
	}
	featuredCache.Delete("featured")
	ok(c, gin.H{})
}

func updateProductStatus(c *gin.Context) {
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
	if req.Status != ProductActive && req.Status != ProductInactive && req.Status != ProductBanned {
		c.Error(badRequest("Invalid product status"))
		return
	}

	if _, apiErr := loadOwnedProduct(c, id); apiErr != nil {
		c.Error(apiErr)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated Product
	err := db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
		afterUpdate(),
	).Decode(&updated)
	if err != nil {
		c.Error(err)
		return
	}
	featuredCache.Delete("featured")
	ok(c, updated)
}
