package service

import (
	"context"
	"errors"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Sessions SessionStore
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

// Register creates the account and signs the user in. Role is fixed at
// creation: "professor" maps to PROFESSOR, anything else to STUDENT.
func (s *AuthService) Register(ctx context.Context, email, password, name, lastname, role string) (*model.User, string, error) {
	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, "", util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	userRole := model.Student
	if role == "professor" {
		userRole = model.Professor
	}

	user := &model.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     name,
		Lastname: lastname,
		Role:     userRole,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return s.issueToken(ctx, user)
}

// issueToken signs a fresh JWT and records it as the user's only valid
// session, superseding any previous token.
func (s *AuthService) issueToken(ctx context.Context, user *model.User) (string, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Put(ctx, user.Email, token); err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks signature, expiry and that the token is still the one on
// record for its subject.
func (s *AuthService) Validate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, util.ErrUnauthorized
	}

	ok, err := s.Sessions.Match(ctx, claims.Email, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrUnauthorized
	}
	return claims, nil
}

// Logout revokes the subject's session. The token must decode; revoking a
// session that is already gone is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return util.ErrUnauthorized
	}
	return s.Sessions.Remove(ctx, claims.Email)
}
