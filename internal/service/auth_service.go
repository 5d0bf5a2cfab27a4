package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

type SignupInput struct {
	Name     string `json:"name" binding:"required,max=80"`
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult 注册/登录返回的用户与令牌
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService 注册、登录与令牌校验
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// Authenticate 解析令牌并加载用户，用户已不存在时返回 Unauthorized
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	cost   int
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens, cost: bcrypt.DefaultCost, now: time.Now}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil && existing.Username == in.Username:
		return nil, apperr.Conflict("username already taken")
	case err == nil:
		return nil, apperr.Conflict("email already registered")
	case !isNotFound(err):
		return nil, apperr.Server("signup failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Server("signup failed", err)
	}
	now := s.now().UTC()
	u := &model.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		Name:      in.Name,
		Role:      model.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("username or email already registered")
		}
		return nil, apperr.Server("signup failed", err)
	}
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.InvalidInput("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.InvalidInput("invalid credentials")
		}
		return nil, apperr.Server("login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, apperr.InvalidInput("invalid credentials")
	}
	return s.issue(u)
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, apperr.Server("issue token failed", err)
	}
	return &AuthResult{User: u, Token: tok}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	uid, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperr.Unauthorized("token expired")
		}
		return nil, apperr.Unauthorized("invalid token")
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, apperr.Server("authentication failed", err)
	}
	return u, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, apperr.Server("load user failed", err)
	}
	return u, nil
}
