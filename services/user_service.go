package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/yeremiapane/catering-app/models"
	"github.com/yeremiapane/catering-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid username or password")

type RegisterInput struct {
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Username  string `json:"username" binding:"required,max=150"`
	Birthday  string `json:"birthday" binding:"required"`
	Password  string `json:"password" binding:"required,max=128"`
	Language  string `json:"language"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserService struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	now    func() time.Time
}

func NewUserService(db *gorm.DB, tokens *utils.TokenManager, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{db: db, tokens: tokens, now: now}
}

func validatePassword(password, username string) error {
	if len(password) < MinPasswordLength {
		return newValidation("password", "must contain at least %d characters", MinPasswordLength)
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return newValidation("password", "must not be entirely numeric")
	}
	if strings.EqualFold(password, username) {
		return newValidation("password", "is too similar to the username")
	}
	return nil
}

// Register creates the user and the profile in one transaction.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	birthday, err := time.Parse("2006-01-02", in.Birthday)
	if err != nil {
		return nil, newValidation("birthday", "expected YYYY-MM-DD")
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if birthday.After(today) {
		return nil, newValidation("birthday", "the specified date of birth is in the future")
	}
	if err := validatePassword(in.Password, in.Username); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashed),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Message: "the user with such username already exists"}
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		profile := models.UserProfile{
			UserID:   user.ID,
			Birthday: datatypes.Date(birthday),
			Language: in.Language,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("User %s registered", user.Username)
	return &user, nil
}

// Login checks the credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", in.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, &user, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user", userID)
	}
	return &user, nil
}

// Language returns the preferred language of the user, empty when none is set.
func (s *UserService) Language(ctx context.Context, userID uint) string {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Select("language").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return ""
	}
	return profile.Language
}
