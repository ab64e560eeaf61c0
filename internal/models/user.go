package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system. ADMIN may take
// any approval action, STAFF may partially approve or reject, USER owns and
// submits item requests.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
	RoleUser  UserRole = "USER"
)

// JWTClaims represents the JWT payload for access tokens issued by the
// external identity service.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
