package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-service/internal/models"
	"shop-service/internal/repository"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateInput turns validator failures into ErrInvalidInput naming the fields.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(validationErr))
	for _, fe := range validationErr {
		fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", repository.ErrInvalidInput, strings.Join(fields, "; "))
}

// ProductCacheInvalidator drops cached product data after stock changed outside
// the product repository.
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, shopID string, productIDs ...string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, string, ...string) {}

type membership struct {
	shops repository.ShopRepository
}

// forRead hides shops the user is not linked to behind ErrNotFound.
func (m membership) forRead(ctx context.Context, shopID, userID string) (*models.ShopUser, error) {
	return m.shops.GetMembership(ctx, shopID, userID)
}

// forWrite rejects users without a link to the shop.
func (m membership) forWrite(ctx context.Context, shopID, userID string) (*models.ShopUser, error) {
	link, err := m.shops.GetMembership(ctx, shopID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user is not linked to shop", repository.ErrUnauthorized)
		}
		return nil, err
	}
	return link, nil
}

func (m membership) owner(ctx context.Context, shopID, userID string) error {
	link, err := m.forWrite(ctx, shopID, userID)
	if err != nil {
		return err
	}
	if link.Role != models.ShopRoleOwner {
		return fmt.Errorf("%w: only the shop owner may do this", repository.ErrUnauthorized)
	}
	return nil
}
