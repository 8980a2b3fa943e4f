package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pastelog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// UserService 负责账号注册、登录校验与会话解析。
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register 创建一个 bcrypt 哈希密码的用户。
func (s *UserService) Register(name, email, password string) (*db.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashed),
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

// Authenticate 校验邮箱与密码。两类失败返回同一个错误，不泄露账号是否存在。
func (s *UserService) Authenticate(email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// CreateSession 为用户新建一条会话记录，ID 即写入 auth_id Cookie 的值。
func (s *UserService) CreateSession(userID uint) (*db.Session, error) {
	session := db.Session{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession 删除指定会话，ID 不存在时静默成功。
func (s *UserService) DeleteSession(id string) error {
	return s.db.Delete(&db.Session{}, "id = ?", id).Error
}

// UserFromSession 按会话 ID 解析出登录用户。
func (s *UserService) UserFromSession(id string) (*db.User, error) {
	var session db.Session
	if err := s.db.Preload("User").Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session.User, nil
}
