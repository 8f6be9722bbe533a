package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/repository"
)

// ShoppingListReport is a rendered shopping list ready for download.
type ShoppingListReport struct {
	Filename string
	Content  string
}

// ShoppingListService aggregates the ingredients of every recipe in a
// user's cart into a flat text report.
type ShoppingListService interface {
	BuildReport(ctx context.Context, userID uint) (*ShoppingListReport, error)
}

type shoppingListService struct {
	userRepo     repository.UserRepository
	relationRepo repository.RelationRepository
}

// NewShoppingListService creates a new shopping list service.
func NewShoppingListService(userRepo repository.UserRepository, relationRepo repository.RelationRepository) ShoppingListService {
	return &shoppingListService{userRepo: userRepo, relationRepo: relationRepo}
}

// BuildReport sums amounts per (ingredient name, unit) across the user's
// cart recipes, one line per group, sorted by name. An empty cart yields an
// empty report, not an error.
func (s *shoppingListService) BuildReport(ctx context.Context, userID uint) (*ShoppingListReport, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	rows, err := s.relationRepo.AggregateShoppingList(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s (%s) — %d", row.Name, row.MeasurementUnit, row.TotalAmount))
	}

	return &ShoppingListReport{
		Filename: fmt.Sprintf("shopping_list_%s.txt", user.Username),
		Content:  strings.Join(lines, "\n"),
	}, nil
}
