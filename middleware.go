// middleware.go

package main

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ctxUserKey = "currentUser"

type JWTClaims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func resolveUser(tokenStr string) (*User, *apiError) {
	token, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, unauthorized("Not authorized to access this route")
	}
	claims, okClaims := token.Claims.(*JWTClaims)
	if !okClaims {
		return nil, unauthorized("Not authorized to access this route")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, unauthorized("Not authorized to access this route")
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, unauthorized("User not found")
	}
	return &user, nil
}

// AuthRequired resolves the bearer token to a user, rejects banned accounts
// and attaches the user to the request context.
func AuthRequired(c *gin.Context) {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		abortWith(c, unauthorized("Not authorized to access this route"))
		return
	}

	user, authErr := resolveUser(tokenStr)
	if authErr != nil {
		abortWith(c, authErr)
		return
	}

	if user.IsBanned {
		reason := user.BanReason
		if reason == "" {
			reason = "Your account has been banned"
		}
		abortWith(c, forbidden(reason))
		return
	}

	c.Set(ctxUserKey, user)
	c.Next()
}

// RequireRoles gates a route to the given roles. Must run after AuthRequired.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			abortWith(c, unauthorized("Not authorized to access this route"))
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		abortWith(c, forbidden("User role '"+user.Role+"' is not authorized to access this route"))
	}
}

// OptionalAuth attaches the user when a valid token is present and silently
// continues otherwise.
func OptionalAuth(c *gin.Context) {
	if tokenStr := bearerToken(c); tokenStr != "" {
		if user, authErr := resolveUser(tokenStr); authErr == nil && !user.IsBanned {
			c.Set(ctxUserKey, user)
		}
	}
	c.Next()
}

func currentUser(c *gin.Context) *User {
	v, exists := c.Get(ctxUserKey)
	if !exists {
		return nil
	}
	user, okUser := v.(*User)
	if !okUser {
		return nil
	}
	return user
}
