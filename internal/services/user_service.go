package services

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService is the narrow user directory the settlement core consumes:
// identity lookup, role checks, referrer resolution. Account management is
// out of scope.
type UserService interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByAffCode(ctx context.Context, affCode string) (*models.User, error)
	GetReferrer(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	GetReferrals(ctx context.Context, referrerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error)
}

type userService struct {
	userRepo interfaces.UserRepository
}

func NewUserService(userRepo interfaces.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) GetUserByAffCode(ctx context.Context, affCode string) (*models.User, error) {
	return s.userRepo.GetByAffCode(ctx, affCode)
}

func (s *userService) GetReferrer(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ReferrerID == nil {
		return nil, utils.NotFoundError("user has no referrer")
	}

	return s.userRepo.GetByID(ctx, *user.ReferrerID)
}

func (s *userService) GetReferrals(ctx context.Context, referrerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return s.userRepo.GetReferrals(ctx, referrerID, params)
}

func (s *userService) ListByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return s.userRepo.GetByRole(ctx, role, params)
}
