// auth.go

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func issueToken(user *User) (string, error) {
	claims := JWTClaims{
		UserID: user.ID.Hex(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(cfg.JWTTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func randomToken() string {
	buf := make([]byte, 20)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func sanitizeUser(user *User) *User {
	out := *user
	out.Password = ""
	out.VerificationToken = ""
	out.ResetPasswordToken = ""
	return &out
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide name, email and a password of at least 6 characters"))
		return
	}

	role := req.Role
	if role != RoleSeller {
		role = RoleBuyer
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Error(err)
		return
	}

	now := time.Now()
	user := User{
		Name:              req.Name,
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:             req.Phone,
		Password:          string(hashed),
		Role:              role,
		VerificationToken: randomToken(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.Error(badRequest("An account with that email already exists"))
			return
		}
		c.Error(err)
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	sendMailAsync(user.Email, "Verify your email",
		fmt.Sprintf("Welcome to Bazaarly! Verify your email: %s/verify-email/%s", cfg.FrontendURL, user.VerificationToken))

	token, err := issueToken(&user)
	if err != nil {
		c.Error(err)
		return
	}
	created(c, gin.H{"user": sanitizeUser(&user), "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide email and password"))
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var user User
	err := db.Collection("users").FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))}).Decode(&user)
	if err != nil {
		c.Error(unauthorized("Invalid credentials"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.Error(unauthorized("Invalid credentials"))
		return
	}

	token, err := issueToken(&user)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, gin.H{"user": sanitizeUser(&user), "token": token})
}

func getMe(c *gin.Context) {
	ok(c, sanitizeUser(currentUser(c)))
}

type updateDetailsRequest struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Avatar    *Image    `json:"avatar"`
	Addresses []Address `json:"addresses"`
}

func updateDetails(c *gin.Context) {
	user := currentUser(c)

	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Invalid input"))
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.Avatar != nil {
		update["avatar"] = req.Avatar
	}
	if req.Addresses != nil {
		update["addresses"] = req.Addresses
	}

	ctx, cancel := dbCtx()
	defer cancel()
	var updated User
	err := db.Collection("users").FindOneAndUpdate(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": update},
		afterUpdate(),
	).Decode(&updated)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, sanitizeUser(&updated))
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func updatePassword(c *gin.Context) {
	user := currentUser(c)

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide current and new password"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		c.Error(unauthorized("Current password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.Error(err)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	_, err = db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"password": string(hashed), "updatedAt": time.Now()}},
	)
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, gin.H{"message": "Password updated"})
}

func verifyEmail(c *gin.Context) {
	token := c.Param("token")

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"verificationToken": token},
		bson.M{
			"$set":   bson.M{"isEmailVerified": true, "updatedAt": time.Now()},
			"$unset": bson.M{"verificationToken": ""},
		},
	)
	if err != nil {
		c.Error(err)
		return
	}
	if res.MatchedCount == 0 {
		c.Error(badRequest("Invalid verification token"))
		return
	}
	ok(c, gin.H{"message": "Email verified"})
}

func forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide an email"))
		return
	}

	token := randomToken()
	expires := time.Now().Add(time.Hour)

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))},
		bson.M{"$set": bson.M{"resetPasswordToken": token, "resetPasswordExpiresAt": expires}},
	)
	if err != nil {
		c.Error(err)
		return
	}
	if res.MatchedCount > 0 {
		sendMailAsync(req.Email, "Password reset",
			fmt.Sprintf("Reset your password: %s/reset-password/%s (valid for 1 hour)", cfg.FrontendURL, token))
	}

	// Same response whether the account exists or not.
	ok(c, gin.H{"message": "If that account exists, a reset email has been sent"})
}

func resetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badRequest("Please provide a password of at least 6 characters"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Error(err)
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	res, err := db.Collection("users").UpdateOne(ctx,
		bson.M{
			"resetPasswordToken":     c.Param("token"),
			"resetPasswordExpiresAt": bson.M{"$gt": time.Now()},
		},
		bson.M{
			"$set":   bson.M{"password": string(hashed), "updatedAt": time.Now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpiresAt": ""},
		},
	)
	if err != nil {
		c.Error(err)
		return
	}
	if res.MatchedCount == 0 {
		c.Error(badRequest("Invalid or expired reset token"))
		return
	}
	ok(c, gin.H{"message": "Password has been reset"})
}
