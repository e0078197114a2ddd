package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service exposes catalog management and the stock decrement contract.
type Service interface {
	Create(ctx context.Context, input CreateGoodInput) (*GoodDTO, error)
	Get(ctx context.Context, id int64) (*GoodDTO, error)
	List(ctx context.Context, category *enums.GoodCategory) ([]GoodDTO, error)
	Update(ctx context.Context, id int64, input UpdateGoodInput) (*GoodDTO, error)
	Restock(ctx context.Context, id int64, qty int) (*GoodDTO, error)
	Decrement(ctx context.Context, id int64) (*GoodDTO, error)
}

type service struct {
	repo Repository
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateGoodInput) (*GoodDTO, error) {
	good := &models.Good{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Price:       input.Price,
		Description: strings.TrimSpace(input.Description),
		Count:       input.Count,
	}
	if err := validateGood(good); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, good); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create good")
	}
	return FromModel(good), nil
}

func (s *service) Get(ctx context.Context, id int64) (*GoodDTO, error) {
	good, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load good")
	}
	return FromModel(good), nil
}

func (s *service) List(ctx context.Context, category *enums.GoodCategory) ([]GoodDTO, error) {
	if category != nil && !category.IsValid() {
		return nil, invalidCategory(*category)
	}
	goods, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list goods")
	}
	return FromModels(goods), nil
}

// Update merges the provided fields over the stored good.
func (s *service) Update(ctx context.Context, id int64, input UpdateGoodInput) (*GoodDTO, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load good")
	}

	fields := map[string]any{}
	if input.Name != nil {
		current.Name = strings.TrimSpace(*input.Name)
		fields["name"] = current.Name
	}
	if input.Category != nil {
		current.Category = *input.Category
		fields["category"] = current.Category
	}
	if input.Price != nil {
		current.Price = *input.Price
		fields["price"] = current.Price
	}
	if input.Description != nil {
		current.Description = strings.TrimSpace(*input.Description)
		fields["description"] = current.Description
	}
	if input.Count != nil {
		current.Count = *input.Count
		fields["count"] = current.Count
	}
	if err := validateGood(current); err != nil {
		return nil, err
	}

	found, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update good")
	}
	if !found {
		return nil, notFound(id)
	}
	return s.Get(ctx, id)
}

func (s *service) Restock(ctx context.Context, id int64, qty int) (*GoodDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than 0").
			WithDetails(map[string]any{"quantity": qty})
	}
	good, applied, err := s.repo.Restock(ctx, id, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock good")
	}
	if !applied {
		return nil, notFound(id)
	}
	return FromModel(good), nil
}

// Decrement removes one unit of stock. It is the only path the purchase flow
// uses to mutate inventory.
func (s *service) Decrement(ctx context.Context, id int64) (*GoodDTO, error) {
	good, applied, err := s.repo.Decrement(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
	}
	if applied {
		return FromModel(good), nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "probe good")
	}
	if !exists {
		return nil, notFound(id)
	}
	return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "stock already zero").
		WithDetails(map[string]any{"good_id": id})
}

func validateGood(g *models.Good) error {
	details := map[string]string{}
	if g.Name == "" {
		details["name"] = "is required"
	} else if len(g.Name) > maxNameLength {
		details["name"] = fmt.Sprintf("must be at most %d", maxNameLength)
	}
	if !g.Category.IsValid() {
		details["category"] = "is invalid"
	}
	if !g.Price.GreaterThan(decimal.Zero) {
		details["price"] = "must be greater than 0"
	}
	if len(g.Description) > maxDescriptionLength {
		details["description"] = fmt.Sprintf("must be at most %d", maxDescriptionLength)
	}
	if g.Count < 0 {
		details["count"] = "must be at least 0"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func invalidCategory(c enums.GoodCategory) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid category").
		WithDetails(map[string]any{"category": c.String()})
}

func notFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("good with id '%d' not found", id))
}
