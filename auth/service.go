// service.go - Registration, login, password reset and profile management

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cafesantander/apperr"
	"cafesantander/mailer"
	"cafesantander/models"

	"gorm.io/gorm"
)

// RegisterInput is the payload of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	LastName string `json:"lastName"`
	Email    string `json:"email" binding:"required,storemail"`
	Password string `json:"password" binding:"required"`
}

// LoginInput is the payload of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,storemail"`
	Password string `json:"password" binding:"required"`
}

// ProfileInput is the payload of PUT /auth/me. Empty fields keep their value.
type ProfileInput struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Session is returned by a successful login.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Service implements the account flows on top of the users table.
type Service struct {
	db     *gorm.DB
	tokens *Tokens
	mail   mailer.Sender
}

func NewService(db *gorm.DB, tokens *Tokens, mail mailer.Sender) *Service {
	if mail == nil {
		mail = mailer.LogSender{}
	}
	return &Service{db: db, tokens: tokens, mail: mail}
}

// Register creates a customer account. Duplicate emails are a Conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return models.User{}, apperr.Validation("name, email and password are required")
	}
	if !ValidEmail(email) {
		return models.User{}, apperr.Validation("invalid email format")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return models.User{}, apperr.Unexpected("failed to register user", err)
	}
	if existing > 0 {
		return models.User{}, apperr.Conflict("email already registered")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	lastName := strings.TrimSpace(in.LastName)
	if lastName == "" {
		lastName = strings.TrimSpace(in.Name)
	}
	user := models.User{
		Email:    email,
		Password: hash,
		Name:     strings.TrimSpace(in.Name),
		LastName: lastName,
		Role:     models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) { // Lost a race with a concurrent registration
			return models.User{}, apperr.Conflict("email already registered")
		}
		return models.User{}, apperr.Unexpected("failed to register user", err)
	}
	return user, nil
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, apperr.Validation("email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return Session{}, apperr.Unexpected("failed to log in", err)
	}
	if !CheckPassword(user.Password, in.Password) {
		return Session{}, apperr.Unauthenticated("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// ForgotPassword replaces the password of email with a temporary one and mails it.
// Mail delivery happens in the background and cannot fail the update.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("email is not registered")
	}
	if err != nil {
		return apperr.Unexpected("failed to reset password", err)
	}

	temp, err := TemporaryPassword()
	if err != nil {
		return err
	}
	hash, err := HashPassword(temp)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
		return apperr.Unexpected("failed to reset password", err)
	}

	mailer.Dispatch(s.mail, resetMessage(user.Email, temp))
	return nil
}

// Profile returns the stored user record.
func (s *Service) Profile(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, apperr.Unexpected("failed to load profile", err)
	}
	return user, nil
}

// UpdateProfile edits the caller's own profile fields and optionally the password.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(in.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		updates["last_name"] = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		updates["phone"] = v
	}
	if v := strings.TrimSpace(in.Address); v != "" {
		updates["address"] = v
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return models.User{}, err
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return models.User{}, apperr.Unexpected("failed to update profile", err)
	}
	return s.Profile(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func resetMessage(to, password string) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "Password recovery - CafeSantander",
		HTML: fmt.Sprintf(`<h2>Password recovery</h2>
<p>We generated a temporary password for your account:</p>
<p><strong>%s</strong></p>
<p>Log in with it and change it from your profile.</p>
<p>If you did not ask for this, ignore this email.</p>`, password),
	}
}
