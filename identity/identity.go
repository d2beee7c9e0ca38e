package identity

import (
	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a principal's role within the portal
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleFaculty RoleType = "faculty"
	RoleStaff   RoleType = "staff"
	RoleAdmin   RoleType = "admin"
)

// Identity represents a registered principal. The embedded Session holds the
// single active credential set for the identity; a new login replaces it
// rather than adding to it.
type Identity struct {
	ID           string   `json:"id,omitempty" bson:"_id,omitempty"`     // Unique identifier
	Username     string   `json:"username,omitempty" bson:"username"`    // Unique username used to log in
	Name         string   `json:"name,omitempty" bson:"name"`            // Display name
	Role         RoleType `json:"role,omitempty" bson:"role"`            // Portal role
	PasswordHash string   `json:"-" bson:"password_hash"`                // Hashed password - never serialize
	Session      Session  `json:"-" bson:"session"`                      // Active session credentials
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
