package services

import (
	"context"
	"errors"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/auth"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// CreateUser creates a user from an admin request, hashing the password.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("name, username, and password are required")
	}
	if req.Role != "admin" && req.Role != "operator" {
		return nil, errors.New("role must be 'admin' or 'operator'")
	}
	if req.Station != "" && !models.ValidStation(req.Station) {
		return nil, errors.New("unknown station")
	}

	existing, _ := s.Repo.GetByUsername(ctx, req.Username)
	if existing != nil && existing.ID != 0 {
		return nil, errors.New("user with this username already exists")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
		Station:      req.Station,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}

// UpdateUser updates an existing user
func (s *UserService) UpdateUser(ctx context.Context, user *models.User) error {
	// If password is provided, hash it
	if user.PasswordHash != "" {
		hashed, err := auth.HashPassword(user.PasswordHash)
		if err != nil {
			return err
		}
		user.PasswordHash = hashed
	}
	return s.Repo.Update(ctx, user)
}

// ToggleActiveStatus enables or disables a user account
func (s *UserService) ToggleActiveStatus(ctx context.Context, userID int, isActive bool) error {
	return s.Repo.ToggleActiveStatus(ctx, userID, isActive)
}

// DeleteUser deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}

// Login verifies credentials and issues a JWT.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	user, err := s.Repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if !user.IsActive {
		return nil, errors.New("account is disabled")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errors.New("invalid credentials")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Setup creates the first admin account. Only available while the users
// table is empty.
func (s *UserService) Setup(ctx context.Context, req *models.CreateUserRequest) (*models.AuthResponse, error) {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("setup already completed")
	}

	req.Role = "admin"
	user, err := s.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
