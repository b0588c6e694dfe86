// models.go

package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Order statuses
const (
	OrderPending        = "pending"
	OrderProcessing     = "processing"
	OrderShipped        = "shipped"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
)

// Product statuses
const (
	ProductActive   = "active"
	ProductInactive = "inactive"
	ProductBanned   = "banned"
)

// Notification types
const (
	NotifOrderPlaced     = "order_placed"
	NotifOrderProcessing = "order_processing"
	NotifOrderShipped    = "order_shipped"
	NotifOrderDelivered  = "order_delivered"
	NotifOrderCancelled  = "order_cancelled"
	NotifMessageReceived = "message_received"
	NotifProductBanned   = "product_banned"
	NotifReturnApproved  = "return_approved"
	NotifReturnRejected  = "return_rejected"
	NotifPromotion       = "promotion"
)

type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

type Address struct {
	FullName     string `bson:"fullName" json:"fullName"`
	Phone        string `bson:"phone" json:"phone"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	ZipCode      string `bson:"zipCode" json:"zipCode"`
	Country      string `bson:"country" json:"country"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password  string             `bson:"password" json:"password,omitempty"`
	Role      string             `bson:"role" json:"role"`
	Avatar    *Image             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Addresses []Address          `bson:"addresses,omitempty" json:"addresses,omitempty"`

	IsBanned  bool   `bson:"isBanned" json:"isBanned"`
	BanReason string `bson:"banReason,omitempty" json:"banReason,omitempty"`

	IsEmailVerified        bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	VerificationToken      string     `bson:"verificationToken,omitempty" json:"-"`
	ResetPasswordToken     string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpiresAt *time.Time `bson:"resetPasswordExpiresAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Variant struct {
	Name    string   `bson:"name" json:"name"`
	Options []string `bson:"options,omitempty" json:"options,omitempty"`
	SKU     string   `bson:"sku,omitempty" json:"sku,omitempty"`
	Price   float64  `bson:"price,omitempty" json:"price,omitempty"`
	Stock   int      `bson:"stock,omitempty" json:"stock,omitempty"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	OriginalPrice  float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Discount       float64            `bson:"discount" json:"discount"`
	Commission     float64            `bson:"commission" json:"commission"`
	Category       primitive.ObjectID `bson:"category" json:"category"`
	Images         []Image            `bson:"images,omitempty" json:"images,omitempty"`
	Stock          int                `bson:"stock" json:"stock"`
	Seller         primitive.ObjectID `bson:"seller" json:"seller"`
	Variants       []Variant          `bson:"variants,omitempty" json:"variants,omitempty"`
	Rating         float64            `bson:"rating" json:"rating"`
	NumReviews     int                `bson:"numReviews" json:"numReviews"`
	Specifications map[string]string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	IsFeatured     bool               `bson:"isFeatured" json:"isFeatured"`
	IsFlashSale    bool               `bson:"isFlashSale" json:"isFlashSale"`
	FlashSaleEnd   *time.Time         `bson:"flashSaleEnd,omitempty" json:"flashSaleEnd,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Views          int                `bson:"views" json:"views"`
	Sold           int                `bson:"sold" json:"sold"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Variant  string             `bson:"variant,omitempty" json:"variant,omitempty"`
}

// Cart carries a version counter so concurrent mutations are detected by a
// conditional update instead of last-write-wins.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	Version   int64              `bson:"version" json:"version"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type WishlistItem struct {
	Product primitive.ObjectID `bson:"product" json:"product"`
	AddedAt time.Time          `bson:"addedAt" json:"addedAt"`
}

type Wishlist struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User     primitive.ObjectID `bson:"user" json:"user"`
	Products []WishlistItem     `bson:"products" json:"products"`
}

// OrderItem is a snapshot of the product at purchase time. Price changes
// after checkout do not alter historical orders.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Name     string             `bson:"name" json:"name"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Variant  string             `bson:"variant,omitempty" json:"variant,omitempty"`
}

type PaymentDetails struct {
	TransactionID string     `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaidAt        *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	Status        string     `bson:"status" json:"status"`
}

type TrackingEvent struct {
	Status      string    `bson:"status" json:"status"`
	Location    string    `bson:"location,omitempty" json:"location,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
}

type Tracking struct {
	Carrier           string          `bson:"carrier,omitempty" json:"carrier,omitempty"`
	TrackingNumber    string          `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time      `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	History           []TrackingEvent `bson:"history,omitempty" json:"history,omitempty"`
}

type CouponUse struct {
	Code           string  `bson:"code,omitempty" json:"code,omitempty"`
	DiscountAmount float64 `bson:"discountAmount,omitempty" json:"discountAmount,omitempty"`
}

type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User               primitive.ObjectID `bson:"user" json:"user"`
	Items              []OrderItem        `bson:"items" json:"items"`
	ShippingAddress    *Address           `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod      string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentDetails     PaymentDetails     `bson:"paymentDetails" json:"paymentDetails"`
	Subtotal           float64            `bson:"subtotal" json:"subtotal"`
	ShippingCost       float64            `bson:"shippingCost" json:"shippingCost"`
	Discount           float64            `bson:"discount" json:"discount"`
	Tax                float64            `bson:"tax" json:"tax"`
	Total              float64            `bson:"total" json:"total"`
	AdminProfit        float64            `bson:"adminProfit" json:"adminProfit"`
	Coupon             *CouponUse         `bson:"coupon,omitempty" json:"coupon,omitempty"`
	Status             string             `bson:"status" json:"status"`
	Tracking           Tracking           `bson:"tracking" json:"tracking"`
	DeliveredAt        *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Populated for responses, never persisted.
	BuyerInfo    *User     `bson:"-" json:"buyerInfo,omitempty"`
	ItemProducts []Product `bson:"-" json:"itemProducts,omitempty"`
}

type Notification struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User           primitive.ObjectID  `bson:"user" json:"user"`
	Type           string              `bson:"type" json:"type"`
	Title          string              `bson:"title" json:"title"`
	Message        string              `bson:"message" json:"message"`
	Link           string              `bson:"link,omitempty" json:"link,omitempty"`
	IsRead         bool                `bson:"isRead" json:"isRead"`
	RelatedOrder   *primitive.ObjectID `bson:"relatedOrder,omitempty" json:"relatedOrder,omitempty"`
	RelatedProduct *primitive.ObjectID `bson:"relatedProduct,omitempty" json:"relatedProduct,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}

type Attachment struct {
	Filename string `bson:"filename" json:"filename"`
	URL      string `bson:"url" json:"url"`
}

type Message struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ConversationID  string              `bson:"conversationId" json:"conversationId"`
	Sender          primitive.ObjectID  `bson:"sender" json:"sender"`
	Receiver        primitive.ObjectID  `bson:"receiver" json:"receiver"`
	Content         string              `bson:"content" json:"content"`
	IsRead          bool                `bson:"isRead" json:"isRead"`
	IsSystemMessage bool                `bson:"isSystemMessage" json:"isSystemMessage"`
	RelatedOrder    *primitive.ObjectID `bson:"relatedOrder,omitempty" json:"relatedOrder,omitempty"`
	RelatedProduct  *primitive.ObjectID `bson:"relatedProduct,omitempty" json:"relatedProduct,omitempty"`
	Attachments     []Attachment        `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}

type Coupon struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Code                 string               `bson:"code" json:"code"`
	DiscountType         string               `bson:"discountType" json:"discountType"`
	Value                float64              `bson:"value" json:"value"`
	MinPurchase          float64              `bson:"minPurchase" json:"minPurchase"`
	MaxDiscount          float64              `bson:"maxDiscount,omitempty" json:"maxDiscount,omitempty"`
	ExpiryDate           time.Time            `bson:"expiryDate" json:"expiryDate"`
	UsageLimit           int                  `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"`
	UsedCount            int                  `bson:"usedCount" json:"usedCount"`
	ApplicableCategories []primitive.ObjectID `bson:"applicableCategories,omitempty" json:"applicableCategories,omitempty"`
	ApplicableProducts   []primitive.ObjectID `bson:"applicableProducts,omitempty" json:"applicableProducts,omitempty"`
	BuyQuantity          int                  `bson:"buyQuantity,omitempty" json:"buyQuantity,omitempty"`
	GetQuantity          int                  `bson:"getQuantity,omitempty" json:"getQuantity,omitempty"`
	IsActive             bool                 `bson:"isActive" json:"isActive"`
	Description          string               `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy            primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Review struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Product          primitive.ObjectID `bson:"product" json:"product"`
	User             primitive.ObjectID `bson:"user" json:"user"`
	Order            primitive.ObjectID `bson:"order" json:"order"`
	Rating           float64            `bson:"rating" json:"rating"`
	Title            string             `bson:"title" json:"title"`
	Comment          string             `bson:"comment" json:"comment"`
	Images           []Image            `bson:"images,omitempty" json:"images,omitempty"`
	HelpfulCount     int                `bson:"helpfulCount" json:"helpfulCount"`
	VerifiedPurchase bool               `bson:"verifiedPurchase" json:"verifiedPurchase"`
	IsApproved       bool               `bson:"isApproved" json:"isApproved"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`

	// Populated for responses.
	UserInfo *User `bson:"-" json:"userInfo,omitempty"`
}

type ReturnItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Reason   string             `bson:"reason,omitempty" json:"reason,omitempty"`
}

type Return struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Order           primitive.ObjectID  `bson:"order" json:"order"`
	User            primitive.ObjectID  `bson:"user" json:"user"`
	Items           []ReturnItem        `bson:"items,omitempty" json:"items,omitempty"`
	Reason          string              `bson:"reason" json:"reason"`
	Description     string              `bson:"description" json:"description"`
	Images          []Image             `bson:"images,omitempty" json:"images,omitempty"`
	Status          string              `bson:"status" json:"status"`
	RefundAmount    float64             `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
	RefundMethod    string              `bson:"refundMethod,omitempty" json:"refundMethod,omitempty"`
	AdminNotes      string              `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	ApprovedBy      *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectionReason string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	RefundedAt      *time.Time          `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type Category struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Description    string              `bson:"description,omitempty" json:"description,omitempty"`
	Image          *Image              `bson:"image,omitempty" json:"image,omitempty"`
	ParentCategory *primitive.ObjectID `bson:"parentCategory,omitempty" json:"parentCategory,omitempty"`
	Slug           string              `bson:"slug" json:"slug"`
	IsActive       bool                `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}
