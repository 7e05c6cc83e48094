package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainResource "tour-booking/internal/domain/resource"
	"tour-booking/internal/logger"
	"tour-booking/internal/query"
	appErrors "tour-booking/pkg/errors"
	"tour-booking/pkg/utils"
)

// Draft is a request body that builds a new entity.
type Draft[T any] interface {
	Build() (*T, error)
}

// Patch is a request body applied onto a stored entity. Fields absent from
// the body are left untouched.
type Patch[T any] interface {
	Apply(entity *T) error
}

// Hooks layer entity specific behaviour around the generic operations.
// After* hooks run in the write's transaction; an error rolls the write back.
// Created runs once the new entity is committed.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, entity *T) error
	AfterCreate  func(ctx context.Context, entity *T) error
	AfterUpdate  func(ctx context.Context, entity *T) error
	AfterDelete  func(ctx context.Context, entity *T) error
	Created      func(ctx context.Context, entity *T)
}

type Option[T any] func(*Service[T])

func WithHooks[T any](hooks Hooks[T]) Option[T] {
	return func(s *Service[T]) { s.hooks = hooks }
}

// WithTransactor overrides the transaction runner. Stores that implement
// domainResource.Transactor are used by default.
func WithTransactor[T any](tx domainResource.Transactor) Option[T] {
	return func(s *Service[T]) { s.tx = tx }
}

// WithMaxLimit caps the page size of List. Non-positive values keep the default.
func WithMaxLimit[T any](limit int) Option[T] {
	return func(s *Service[T]) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// Service implements list/get/create/update/delete for any stored entity.
type Service[T any] struct {
	name     string
	store    domainResource.Store[T]
	hooks    Hooks[T]
	maxLimit int
	idOf     func(*T) uuid.UUID
	tx       domainResource.Transactor
}

// NewService builds the service for one resource. idOf reads the key of a
// freshly inserted entity.
func NewService[T any](name string, store domainResource.Store[T], idOf func(*T) uuid.UUID, opts ...Option[T]) *Service[T] {
	s := &Service[T]{
		name:     name,
		store:    store,
		maxLimit: query.DefaultMaxLimit,
		idOf:     idOf,
	}
	if tx, ok := store.(domainResource.Transactor); ok {
		s.tx = tx
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// atomically runs fn in a transaction when the store supports one.
func (s *Service[T]) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.Transaction(ctx, fn)
}

func (s *Service[T]) Name() string {
	return s.name
}

// List runs the request query string against the store. The returned
// descriptor carries the field projection for rendering.
func (s *Service[T]) List(ctx context.Context, params url.Values, scope domainResource.Scope) ([]*T, *query.Descriptor, error) {
	d, err := query.Parse(params, query.WithMaxLimit(s.maxLimit))
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.Find(ctx, scope, d)
	if err != nil {
		return nil, nil, err
	}

	return items, d, nil
}

func (s *Service[T]) Get(ctx context.Context, id uuid.UUID, populate ...string) (*T, error) {
	return s.store.FindByID(ctx, id, populate...)
}

func (s *Service[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if s.hooks.BeforeCreate != nil {
		if err := s.hooks.BeforeCreate(ctx, entity); err != nil {
			return nil, err
		}
	}

	if err := validate(entity); err != nil {
		return nil, err
	}

	err := s.atomically(ctx, func(ctx context.Context) error {
		if err := s.store.Insert(ctx, entity); err != nil {
			return err
		}
		if s.hooks.AfterCreate != nil {
			return s.hooks.AfterCreate(ctx, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hooks.Created != nil {
		s.hooks.Created(ctx, entity)
	}

	logger.Info("Resource created",
		zap.String("resource", s.name),
		zap.String("id", s.idOf(entity).String()),
		zap.String("event", s.name+"_created"),
	)

	return s.reload(ctx, entity)
}

func (s *Service[T]) Update(ctx context.Context, id uuid.UUID, patch Patch[T]) (*T, error) {
	entity, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Apply(entity); err != nil {
		return nil, err
	}

	if err := validate(entity); err != nil {
		return nil, err
	}

	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.store.UpdateByID(ctx, id, entity); err != nil {
			return err
		}
		if s.hooks.AfterUpdate != nil {
			return s.hooks.AfterUpdate(ctx, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, entity)
}

func (s *Service[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var entity *T
	if s.hooks.AfterDelete != nil {
		found, err := s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		entity = found
	}

	err := s.atomically(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteByID(ctx, id); err != nil {
			return err
		}
		if s.hooks.AfterDelete != nil {
			return s.hooks.AfterDelete(ctx, entity)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Resource deleted",
		zap.String("resource", s.name),
		zap.String("id", id.String()),
		zap.String("event", s.name+"_deleted"),
	)

	return nil
}

// reload re-reads a written entity so derived fields and relations are
// current. Rows the store scopes out of reads, such as secret tours, are
// returned as written.
func (s *Service[T]) reload(ctx context.Context, entity *T) (*T, error) {
	fresh, err := s.store.FindByID(ctx, s.idOf(entity))
	if errors.Is(err, appErrors.ErrNotFound) {
		return entity, nil
	}
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

func validate(entity interface{}) error {
	if err := utils.ValidateStruct(entity); err != nil {
		return appErrors.Validation(fmt.Sprintf("invalid input data. %s", err), err)
	}
	return nil
}
