package service

import (
	"context"
	"strings"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
)

type CredentialService struct {
	credentials repository.CredentialRepository
	roleCache   RoleCacheStore
}

// NewCredentialService builds the service. roleCache may be nil when roles are not cached.
func NewCredentialService(credentials repository.CredentialRepository, roleCache RoleCacheStore) *CredentialService {
	return &CredentialService{credentials: credentials, roleCache: roleCache}
}

func (s *CredentialService) List(ctx context.Context) ([]domain.UserCredential, error) {
	return s.credentials.List(ctx, repository.ListOptions{ReadOnly: true})
}

func (s *CredentialService) ListPaged(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.UserCredential], error) {
	return s.credentials.ListPaged(ctx, req)
}

func (s *CredentialService) Get(ctx context.Context, id string) (*domain.UserCredential, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidArgument("credential id is empty")
	}
	return s.credentials.FindByID(ctx, id)
}

func (s *CredentialService) Roles(ctx context.Context, id string) ([]string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.credentials.ListRoleNames(ctx, id)
}

// RoleNamesForUser resolves the roles of the credential owning userName.
func (s *CredentialService) RoleNamesForUser(ctx context.Context, userName string) ([]string, error) {
	if strings.TrimSpace(userName) == "" {
		return nil, invalidArgument("user name is empty")
	}
	cred, err := s.credentials.FindByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	return s.credentials.ListRoleNames(ctx, cred.ID)
}

func (s *CredentialService) Account(ctx context.Context, id string) (*domain.UserAccount, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.credentials.FindAccount(ctx, id)
}

// Delete removes the credential (and, when hard, its account and role links)
// or stamps it as deleted.
func (s *CredentialService) Delete(ctx context.Context, id string, mode domain.DeleteType) error {
	cred, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.credentials.Delete(ctx, cred, mode); err != nil {
		return err
	}
	evictRoles(ctx, s.roleCache, cred.UserName)
	return nil
}
