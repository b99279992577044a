package repository

//go:generate mockgen -destination=gomock/mocks.go -package=gomock . AccountRepository,CredentialRepository,RoleRepository,TxRunner

import (
	"context"

	"gorm.io/gorm"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
)

type CredentialRepository interface {
	Creator[domain.UserCredential]
	Reader[domain.UserCredential]
	Updater[domain.UserCredential]
	Deleter[domain.UserCredential]
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.UserCredential], error)
	FindByUserName(ctx context.Context, userName string) (*domain.UserCredential, error)
	FindAccount(ctx context.Context, credentialID string) (*domain.UserAccount, error)
	ListRoleNames(ctx context.Context, credentialID string) ([]string, error)
	AddRole(ctx context.Context, credentialID, roleName string) error
}

type GormCredentialRepository struct {
	gormStore[domain.UserCredential]
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &GormCredentialRepository{gormStore[domain.UserCredential]{db: db, entity: "user_credential", preloads: []string{"Roles"}}}
}

// FindByUserName looks up by the normalized username, so the match is case-insensitive.
func (r *GormCredentialRepository) FindByUserName(ctx context.Context, userName string) (*domain.UserCredential, error) {
	return r.first(ctx, "normalized_user_name = ?", domain.NormalizeUserName(userName))
}

func (r *GormCredentialRepository) FindAccount(ctx context.Context, credentialID string) (*domain.UserAccount, error) {
	var a domain.UserAccount
	err := r.db.WithContext(ctx).Where("user_credentials_id = ?", credentialID).First(&a).Error
	if err != nil {
		return nil, translateError(err, "user_account", "find")
	}
	return &a, nil
}

func (r *GormCredentialRepository) ListRoleNames(ctx context.Context, credentialID string) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_credential_id = ?", credentialID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, translateError(err, "role", "list")
	}
	return names, nil
}

// AddRole links the named role. Linking a role twice is a no-op.
func (r *GormCredentialRepository) AddRole(ctx context.Context, credentialID, roleName string) error {
	var role domain.Role
	if err := r.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error; err != nil {
		return translateError(err, "role", "find")
	}
	link := domain.UserRole{UserCredentialID: credentialID, RoleID: role.ID}
	err := r.db.WithContext(ctx).Where(link).FirstOrCreate(&link).Error
	return translateError(err, "user_role", "create")
}
