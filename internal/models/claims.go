package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	PermissionLoanApply     = "loan:apply"
	PermissionLoanRead      = "loan:read"
	PermissionLoanReview    = "loan:review"
	PermissionPaymentWrite  = "payment:write"
	PermissionCatalogWrite  = "catalog:write"
	PermissionBroadcast     = "notification:broadcast"
	PermissionDocumentCheck = "document:verify"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
	TokenType    string   `json:"token_type"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionLoanRead,
			PermissionLoanReview,
			PermissionCatalogWrite,
			PermissionBroadcast,
			PermissionDocumentCheck,
		}
	case RoleUser:
		return []string{
			PermissionLoanApply,
			PermissionLoanRead,
			PermissionPaymentWrite,
		}
	default:
		return []string{}
	}
}
