// main.go

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	dbClient  *mongo.Client
	db        *mongo.Database
	jwtSecret []byte
	cfg       *Config
	mailer    Mailer
)

const (
	dbTimeout    = 5 * time.Second
	queryTimeout = 10 * time.Second
)

func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}

func main() {
	cfg = LoadConfig()
	jwtSecret = []byte(cfg.JWTSecret)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})).With("service", "bazaarly-backend")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}
	dbClient = client
	db = client.Database(cfg.MongoDB)
	slog.Info("connected to mongodb", "db", cfg.MongoDB)

	if err := ensureIndexes(); err != nil {
		slog.Error("could not ensure indexes", "err", err)
	}

	mailer = NewMailer(cfg)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(errorMiddleware)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK", "message": "Server is running"})
	})

	// Auth
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", register)
		authGroup.POST("/login", login)
		authGroup.GET("/me", AuthRequired, getMe)
		authGroup.GET("/verify-email/:token", verifyEmail)
		authGroup.POST("/forgot-password", forgotPassword)
		authGroup.PUT("/reset-password/:token", resetPassword)
		authGroup.PUT("/update-password", AuthRequired, updatePassword)
		authGroup.PUT("/update-details", AuthRequired, updateDetails)
	}

	// Products (public reads, seller/admin writes)
	products := r.Group("/api/products")
	{
		products.GET("", OptionalAuth, listProducts)
		products.GET("/featured", getFeaturedProducts)
		products.GET("/:id", OptionalAuth, getProduct)
		products.POST("", AuthRequired, RequireRoles(RoleSeller, RoleAdmin), createProduct)
		products.PUT("/:id", AuthRequired, RequireRoles(RoleSeller, RoleAdmin), updateProduct)
		products.DELETE("/:id", AuthRequired, RequireRoles(RoleSeller, RoleAdmin), deleteProduct)
		products.PUT("/:id/status", AuthRequired, RequireRoles(RoleSeller, RoleAdmin), updateProductStatus)
	}

	// Cart
	cart := r.Group("/api/cart", AuthRequired)
	{
		cart.GET("", getCart)
		cart.POST("", addToCart)
		cart.PUT("/:productId", updateCartItem)
		cart.DELETE("/:productId", removeFromCart)
		cart.DELETE("", clearCart)
	}

	// Wishlist
	wishlist := r.Group("/api/wishlist", AuthRequired)
	{
		wishlist.GET("", getWishlist)
		wishlist.POST("", addToWishlist)
		wishlist.DELETE("/:productId", removeFromWishlist)
	}

	// Orders
	orders := r.Group("/api/orders", AuthRequired)
	{
		orders.POST("", createOrder)
		orders.GET("", RequireRoles(RoleAdmin), getAllOrders)
		orders.GET("/my-orders", getMyOrders)
		orders.GET("/:id", getOrder)
		orders.PUT("/:id/status", RequireRoles(RoleSeller, RoleAdmin), updateOrderStatus)
	}

	// Coupons
	coupons := r.Group("/api/coupons", AuthRequired)
	{
		coupons.POST("/validate", validateCoupon)
		coupons.POST("", RequireRoles(RoleAdmin), createCoupon)
		coupons.GET("", RequireRoles(RoleAdmin), getCoupons)
		coupons.GET("/active", getActiveCoupons)
	}

	// Notifications
	notifications := r.Group("/api/notifications", AuthRequired)
	{
		notifications.GET("", getNotifications)
		notifications.PUT("/:id/read", markNotificationRead)
		notifications.DELETE("/:id", deleteNotification)
	}

	// Messages
	messages := r.Group("/api/messages", AuthRequired)
	{
		messages.POST("", sendMessage)
		messages.POST("/conversation", createConversation)
		messages.GET("/conversations", getConversations)
		messages.GET("/:conversationId", getMessages)
	}

	// Returns
	returns := r.Group("/api/returns", AuthRequired)
	{
		returns.POST("", requestReturn)
		returns.GET("", getReturns)
		returns.PUT("/:id", RequireRoles(RoleAdmin), updateReturn)
	}

	// Categories
	categories := r.Group("/api/categories")
	{
		categories.GET("", getCategories)
		categories.POST("", AuthRequired, RequireRoles(RoleAdmin), createCategory)
		categories.PUT("/:id", AuthRequired, RequireRoles(RoleAdmin), updateCategory)
		categories.DELETE("/:id", AuthRequired, RequireRoles(RoleAdmin), deleteCategory)
	}

	// Reviews
	reviews := r.Group("/api/reviews")
	{
		reviews.POST("", AuthRequired, createReview)
		reviews.GET("/product/:productId", getProductReviews)
	}

	// Admin
	admin := r.Group("/api/admin", AuthRequired, RequireRoles(RoleAdmin))
	{
		admin.GET("/users", getAllUsers)
		admin.PUT("/users/:id", adminUpdateUser)
		admin.PUT("/users/:id/ban", banUser)
		admin.PUT("/users/:id/unban", unbanUser)
		admin.DELETE("/users/:id", deleteUser)
		admin.GET("/products", adminGetAllProducts)
		admin.PUT("/products/:id/ban", banProduct)
	}

	// Seller dashboard
	seller := r.Group("/api/seller", AuthRequired, RequireRoles(RoleSeller, RoleAdmin))
	{
		seller.GET("/stats", getSellerStats)
		seller.GET("/products", getSellerProducts)
		seller.GET("/orders", getSellerOrders)
	}

	go func() {
		if err := r.Run(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()
	slog.Info("server running", "port", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer disconnectCancel()
	if err := dbClient.Disconnect(disconnectCtx); err != nil {
		slog.Error("mongo disconnect failed", "err", err)
	}
}
