package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
)

type Creator[T any] interface {
	Create(ctx context.Context, v *T) error
}

type Reader[T any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, opts ListOptions) ([]T, error)
}

type Updater[T any] interface {
	Update(ctx context.Context, v *T) error
}

type Deleter[T any] interface {
	Delete(ctx context.Context, v *T, mode domain.DeleteType) error
}

// ListOptions controls bulk reads. ReadOnly skips association preloading and
// model hooks, for callers that only render the rows.
type ListOptions struct {
	ReadOnly bool
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request to page >= 1 and 1..MaxPageSize rows.
func (p PageRequest) Normalize() PageRequest {
	out := PageRequest{Page: max(p.Page, 1), PageSize: p.PageSize}
	if out.PageSize < 1 {
		out.PageSize = DefaultPageSize
	}
	out.PageSize = min(out.PageSize, MaxPageSize)
	return out
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

type softDeletable interface {
	MarkDeleted(at time.Time)
}

// gormStore carries the create/read/update/delete plumbing shared by the
// concrete repositories.
type gormStore[T any] struct {
	db       *gorm.DB
	entity   string
	preloads []string
}

func (s *gormStore[T]) Create(ctx context.Context, v *T) error {
	return translateError(s.db.WithContext(ctx).Create(v).Error, s.entity, "create")
}

func (s *gormStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *gormStore[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	q := s.db.WithContext(ctx)
	if opts.ReadOnly {
		q = q.Session(&gorm.Session{SkipHooks: true})
	} else {
		q = s.withPreloads(q)
	}
	var out []T
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, translateError(err, s.entity, "list")
	}
	return out, nil
}

func (s *gormStore[T]) ListPaged(ctx context.Context, req PageRequest) (PageResult[T], error) {
	req = req.Normalize()
	var total int64
	var items []T
	if err := s.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return PageResult[T]{}, translateError(err, s.entity, "count")
	}
	err := s.withPreloads(s.db.WithContext(ctx)).
		Order("id").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&items).Error
	if err != nil {
		return PageResult[T]{}, translateError(err, s.entity, "list")
	}
	return PageResult[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: int((total + int64(req.PageSize) - 1) / int64(req.PageSize)),
	}, nil
}

func (s *gormStore[T]) Update(ctx context.Context, v *T) error {
	res := s.db.WithContext(ctx).Model(v).Select("*").Omit(clause.Associations).Updates(v)
	if res.Error != nil {
		return translateError(res.Error, s.entity, "update")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, s.entity, "update")
	}
	return nil
}

// Delete removes the row and its owned associations, or stamps the deletion
// time when mode is DeleteSoft and the entity supports it.
func (s *gormStore[T]) Delete(ctx context.Context, v *T, mode domain.DeleteType) error {
	if mode == domain.DeleteSoft {
		sd, ok := any(v).(softDeletable)
		if !ok {
			return oops.Code(apperr.CodeInvalidArgument).With("entity", s.entity).Wrap(fmt.Errorf("%w: soft delete not supported", apperr.ErrInvalidArgument))
		}
		sd.MarkDeleted(time.Now().UTC())
		return s.Update(ctx, v)
	}
	res := s.db.WithContext(ctx).Select(clause.Associations).Delete(v)
	if res.Error != nil {
		return translateError(res.Error, s.entity, "delete")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, s.entity, "delete")
	}
	return nil
}

func (s *gormStore[T]) first(ctx context.Context, query string, args ...any) (*T, error) {
	var v T
	if err := s.withPreloads(s.db.WithContext(ctx)).Where(query, args...).First(&v).Error; err != nil {
		return nil, translateError(err, s.entity, "find")
	}
	return &v, nil
}

func (s *gormStore[T]) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	return q
}

// translateError folds driver errors into the apperr kinds. Absence becomes
// ErrNotFound and unique violations become ErrConflict.
func translateError(err error, entity, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return oops.Code(apperr.CodeNotFound).With("entity", entity).With("op", op).Wrap(apperr.ErrNotFound)
	case isUniqueViolation(err):
		return oops.Code(apperr.CodeConflict).With("entity", entity).With("op", op).Wrap(fmt.Errorf("%w: %w", apperr.ErrConflict, err))
	default:
		return oops.Code(apperr.CodeStoreFailure).With("entity", entity).With("op", op).Wrap(fmt.Errorf("%w: %w", apperr.ErrStoreFailure, err))
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
