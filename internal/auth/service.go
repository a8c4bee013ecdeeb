package auth

import (
	"encoding/json"
	"errors"

	"lifelink-backend/internal/models"
	"lifelink-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput for account creation.
type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UserFinder abstracts user lookup by email+password (for production GORM or
// test doubles).
type UserFinder interface {
	FindByEmailAndPassword(email, password string) (*models.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(email, password string) (*models.User, error) {
	return LoginUser(g.DB, LoginInput{Email: email, Password: password})
}

// RegisterUser validates input and creates a user with a bcrypt hash.
func RegisterUser(db *gorm.DB, input RegisterInput) (*models.User, error) {
	if !validation.IsValidFullname(input.Fullname) {
		return nil, ErrInvalidFullname
	}
	if !validation.IsValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Fullname:     input.Fullname,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterPushToken attaches a device push token to the user. Tokens live in
// the push_tokens JSON array the notification transport reads; registering
// the same token twice is a no-op.
func RegisterPushToken(db *gorm.DB, userID uuid.UUID, token string) error {
	if token == "" {
		return ErrPushTokenRequired
	}
	var user models.User
	if err := db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return err
	}
	var tokens []string
	if len(user.PushTokens) > 0 {
		if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
			tokens = nil
		}
	}
	for _, t := range tokens {
		if t == token {
			return nil
		}
	}
	tokens = append(tokens, token)
	raw, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return db.Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("push_tokens", datatypes.JSON(raw)).Error
}

// LoginUser finds user by email and verifies password.
func LoginUser(db *gorm.DB, input LoginInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u models.User
	if err := db.Where("email = ?", input.Email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}
