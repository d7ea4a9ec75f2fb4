package db

import "github.com/featuredesk/backend/internal/models"

// DefaultUsers is the fixed directory the login mock runs against.
func DefaultUsers() []models.User {
	return []models.User{
		{ID: "u1", Name: "Jordan Hayes", Email: "jordan.hayes@featuredesk.io", Role: models.RoleSales, TeamID: "t-sales"},
		{ID: "u2", Name: "Priya Nair", Email: "priya.nair@featuredesk.io", Role: models.RoleSales, TeamID: "t-sales"},
		{ID: "u3", Name: "Sam Kowalski", Email: "sam.kowalski@featuredesk.io", Role: models.RoleProduct, TeamID: "t-product"},
		{ID: "u4", Name: "Dana Whitfield", Email: "dana.whitfield@featuredesk.io", Role: models.RoleAdmin, TeamID: "t-platform"},
	}
}
