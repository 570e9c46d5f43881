// user.go - Defines the User model for the database

package models // Declares the package name

import "time"

const (
	RoleUser  = "user"  // Default role for registered customers
	RoleAdmin = "admin" // Grants access to the admin panel
)

type User struct { // User struct represents a user in the database
	ID        uint      `gorm:"primaryKey" json:"id"`                        // Unique user ID (primary key)
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`  // User's email (must be unique, cannot be null)
	Password  string    `gorm:"not null" json:"-"`                           // Hashed password, never serialized
	Name      string    `gorm:"size:100;not null" json:"name"`               // Display name
	LastName  string    `gorm:"size:100" json:"lastName"`                    // Optional last name
	Phone     string    `gorm:"size:30" json:"phone,omitempty"`              // Optional profile field
	Address   string    `gorm:"size:255" json:"address,omitempty"`           // Optional profile field
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"` // User role (user/admin)
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user may use the admin panel.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
