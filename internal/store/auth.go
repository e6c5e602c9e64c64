package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Spok95/school-board-bot/internal/ctxutil"
	"github.com/Spok95/school-board-bot/internal/db"
	"github.com/Spok95/school-board-bot/internal/metrics"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/Spok95/school-board-bot/internal/session"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 6

var validate = validator.New()

type SignupInput struct {
	Email    string      `validate:"required,email"`
	Password string      `validate:"required,min=6"`
	Name     string      `validate:"required"`
	Role     models.Role `validate:"required,oneof=teacher student"`
}

// AuthStore держит сессию одного чата (LoggedOut ⇄ LoggedIn).
type AuthStore struct {
	users    UserRepo
	sessions session.Store
	chatID   int64

	mu   sync.RWMutex
	user *models.User
}

func NewAuthStore(users UserRepo, sessions session.Store, chatID int64) *AuthStore {
	return &AuthStore{users: users, sessions: sessions, chatID: chatID}
}

func (s *AuthStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User: копия текущего пользователя или nil.
func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthStore) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = db.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	u, err := s.users.UserByEmail(dbCtx, email)
	if errors.Is(err, db.ErrNotFound) {
		metrics.AuthAttempts.WithLabelValues("login", "denied").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttempts.WithLabelValues("login", "denied").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := s.sessions.Save(dbCtx, s.chatID, u.ID); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	return s.User(), nil
}

// Signup создаёт пользователя, но не логинит: после регистрации снова экран входа.
func (s *AuthStore) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = db.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidateSignup(in); err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		return nil, err
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := s.users.UserByEmail(dbCtx, in.Email); err == nil {
		metrics.AuthAttempts.WithLabelValues("signup", "denied").Inc()
		return nil, ErrEmailTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		metrics.AuthAttempts.WithLabelValues("signup", "error").Inc()
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	id, err := s.users.CreateUser(dbCtx, u)
	if err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			metrics.AuthAttempts.WithLabelValues("signup", "denied").Inc()
		} else {
			metrics.AuthAttempts.WithLabelValues("signup", "error").Inc()
		}
		return nil, err
	}
	u.ID = id
	metrics.AuthAttempts.WithLabelValues("signup", "ok").Inc()
	return &u, nil
}

// GetCurrentUser поднимает сохранённую сессию чата. Нет сессии: состояние не меняется.
func (s *AuthStore) GetCurrentUser(ctx context.Context) (*models.User, error) {
	if u := s.User(); u != nil {
		return u, nil
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	userID, ok, err := s.sessions.Load(dbCtx, s.chatID)
	if err != nil || !ok {
		return nil, err
	}
	u, err := s.users.UserByID(dbCtx, userID)
	if errors.Is(err, db.ErrNotFound) {
		// пользователя удалили: сессия больше не нужна
		_ = s.sessions.Delete(dbCtx, s.chatID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return s.User(), nil
}

// Logout всегда разлогинивает в памяти; ошибка: только про удаление сохранённой сессии.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return s.sessions.Delete(dbCtx, s.chatID)
}

// ValidateSignup проверяет поля регистрации, ошибка оборачивает ErrValidation.
func ValidateSignup(in SignupInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "email is invalid"
	case "min":
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLen)
	case "oneof":
		return "role must be teacher or student"
	default:
		return field + " is invalid"
	}
}
