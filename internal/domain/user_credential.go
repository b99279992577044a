package domain

import (
	"strings"
	"time"
)

type UserCredential struct {
	ID                      string       `gorm:"primaryKey;size:36" json:"id"`
	UserName                string       `gorm:"size:256;not null" json:"userName"`
	NormalizedUserName      string       `gorm:"uniqueIndex;size:256;not null" json:"-"`
	Email                   string       `gorm:"size:256" json:"email"`
	PhoneNumber             string       `gorm:"size:64" json:"phoneNumber"`
	PasswordHash            string       `gorm:"size:64;not null" json:"-"`
	PasswordSalt            string       `gorm:"size:16;not null" json:"-"`
	Deleted                 *time.Time   `json:"deleted,omitempty"`
	RefreshToken            *string      `gorm:"size:128" json:"-"`
	RefreshTokenExpiredDate time.Time    `json:"refreshTokenExpiredDate"`
	CreatedAt               time.Time    `json:"-"`
	UpdatedAt               time.Time    `json:"-"`
	Roles                   []Role       `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"-"`
	Account                 *UserAccount `gorm:"foreignKey:UserCredentialsID;constraint:OnDelete:CASCADE" json:"-"`
}

// NormalizeUserName returns the lookup key for a username.
func NormalizeUserName(userName string) string {
	return strings.ToUpper(strings.TrimSpace(userName))
}

func (c *UserCredential) IsDeleted() bool {
	return c.Deleted != nil
}

// RoleNames returns the names of the preloaded roles.
func (c *UserCredential) RoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (c *UserCredential) MarkDeleted(at time.Time) {
	c.Deleted = &at
}
