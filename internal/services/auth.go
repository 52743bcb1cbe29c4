package services

import (
	"errors"
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/internal/utils"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type SignupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	Tokens utils.TokenPair `json:"tokens"`
	User   models.User     `json:"user"`
}

func (s *AuthService) Signup(req SignupRequest) (*AuthResponse, error) {
	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, errors.New("password must be at least 8 characters")
	}

	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if !utils.IsValidRole(req.Role) {
		return nil, errors.New("invalid role")
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user already exists")
	}

	user := models.User{
		Email:     utils.SanitizeString(req.Email),
		Password:  req.Password,
		FirstName: utils.SanitizeString(req.FirstName),
		LastName:  utils.SanitizeString(req.LastName),
		Role:      req.Role,
		IsActive:  true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, errors.New("failed to create user")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		return nil, errors.New("invalid credentials")
	}
	if !user.CheckPassword(req.Password) {
		return nil, errors.New("invalid credentials")
	}
	return s.issueTokens(&user)
}

func (s *AuthService) Refresh(req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil || claims.Type != string(utils.RefreshToken) {
		return nil, errors.New("invalid refresh token")
	}

	var stored models.RefreshToken
	err = s.db.Where("token = ? AND is_revoked = ?", req.RefreshToken, false).First(&stored).Error
	if err != nil || stored.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired or revoked")
	}

	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	stored.IsRevoked = true
	if err := s.db.Save(&stored).Error; err != nil {
		return nil, errors.New("failed to rotate refresh token")
	}
	return s.issueTokens(&user)
}

func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	pair, err := utils.GenerateTokenPair(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, errors.New("failed to generate tokens")
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: time.Unix(pair.RefreshTokenExpiresAt, 0),
	}
	if err := s.db.Create(&stored).Error; err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &AuthResponse{Tokens: *pair, User: *user}, nil
}
