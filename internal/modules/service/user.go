package service

import (
	"context"
	"errors"
	"time"

	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/modules/repo"
	"github.com/custodian-app/upkeep/internal/pkg/token"
	"github.com/custodian-app/upkeep/internal/pkg/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// AuthResult carries the signed access token plus the opaque refresh token
// the handler sets as an httpOnly cookie.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Signin(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Signout(ctx context.Context, userID uuid.UUID) error
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type userService struct {
	r   repo.UserRepo
	cfg *config.Config
}

func NewUserService(r repo.UserRepo, cfg *config.Config) UserService {
	return &userService{r: r, cfg: cfg}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if _, err := s.r.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *userService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates the stored refresh token on every use, so a stolen cookie
// is only good once.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.r.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *userService) Signout(ctx context.Context, userID uuid.UUID) error {
	return s.r.SetRefreshToken(ctx, userID, "")
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.r.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) issue(ctx context.Context, u *model.User) (*AuthResult, error) {
	access, err := token.Issue(s.cfg.Auth.JWTSecret, u.ID,
		time.Duration(s.cfg.Auth.AccessTTLMin)*time.Minute)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateKey("rt-", s.cfg.Auth.RefreshTokenLen)
	if err != nil {
		return nil, err
	}
	if err := s.r.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return nil, err
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
