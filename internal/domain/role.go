package domain

import "time"

const (
	RoleUser    = "User"
	RoleAdmin   = "Admin"
	RoleTrainer = "Trainer"
)

// Fixed role identifiers, stable across deployments.
const (
	RoleUserID    = "f4a4ce79-c6b3-4e12-9c98-ff07b5030752"
	RoleAdminID   = "6abe6f33-ae4b-4430-8f14-493dc9a5a9d1"
	RoleTrainerID = "4f4d7080-beee-4a97-be65-2ffccde5eb72"
)

type Role struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	NormalizedName string    `gorm:"size:64;not null" json:"-"`
	CreatedAt      time.Time `json:"-"`
}

type UserRole struct {
	UserCredentialID string `gorm:"primaryKey;size:36"`
	RoleID           string `gorm:"primaryKey;size:36"`
}

func (UserRole) TableName() string { return "user_roles" }

// DefaultRoles is the seeded role set.
func DefaultRoles() []Role {
	return []Role{
		{ID: RoleUserID, Name: RoleUser, NormalizedName: "USER"},
		{ID: RoleAdminID, Name: RoleAdmin, NormalizedName: "ADMIN"},
		{ID: RoleTrainerID, Name: RoleTrainer, NormalizedName: "TRAINER"},
	}
}
