package service

import (
	"context"

	"droseonline/internal/dto"
	"droseonline/internal/model"
	"droseonline/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	List(ctx context.Context, role string, includeInactive bool) ([]dto.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo     repository.UserRepository
	counters repository.CounterRepository
	db       func() *gorm.DB
}

// NewUserService takes the group repository's DB handle for code-assignment
// transactions; users have no repository-level DB() of their own.
func NewUserService(repo repository.UserRepository, counters repository.CounterRepository, db func() *gorm.DB) UserService {
	return &userService{repo: repo, counters: counters, db: db}
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if req.Role == model.RoleStudent {
		if req.CurrentGrade == nil || !model.ValidGrade(*req.CurrentGrade) {
			return nil, ErrInvalidGrade
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if req.Role == model.RoleStudent {
		user.CurrentGrade = req.CurrentGrade
	}

	txErr := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		code, err := s.counters.NextCode(ctx, tx, model.RolePrefix(req.Role))
		if err != nil {
			return err
		}
		user.Code = code
		return s.repo.Create(ctx, tx, user)
	})
	if txErr != nil {
		return nil, txErr
	}
	return toUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, role string, includeInactive bool) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, role, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toUserResponse(&users[i]))
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.CurrentGrade != nil {
		if user.Role != model.RoleStudent {
			return nil, ErrInvalidGrade
		}
		if !model.ValidGrade(*req.CurrentGrade) {
			return nil, ErrInvalidGrade
		}
		user.CurrentGrade = req.CurrentGrade
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrUserNotFound
	}
	return s.repo.SetActive(ctx, id, false)
}
