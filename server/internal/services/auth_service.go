package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/LucasBurriel/arrivederci-menu/models"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/repository"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	// EnsureUser создает пользователя, если его еще нет.
	EnsureUser(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	// Authenticate принимает cookie сессию или bearer токен. Любого из двух достаточно.
	Authenticate(ctx context.Context, sessionID, bearer string) (int64, bool)
}

// LoginResult - то, что получает клиент после входа.
type LoginResult struct {
	Token            string
	SessionID        string
	SessionExpiresAt time.Time
}

// Константы для JWT и cookie сессии.
const (
	tokenTTL    = time.Hour * 24 // Время жизни токена - 24 часа
	SessionTTL  = time.Hour      // Время жизни cookie сессии
	tokenIssuer = "arrivederci-server"
)

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	secret      []byte
	now         func() time.Time
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		secret:      []byte(jwtSecret),
		now:         time.Now,
	}
}

func (s *authService) EnsureUser(ctx context.Context, username, password string) error {
	if _, err := s.userRepo.GetUserByUsername(ctx, username); err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", username, err)
		return errors.New("внутренняя ошибка сервера при хешировании пароля")
	}
	_, err = s.userRepo.CreateUser(ctx, &models.User{Username: username, PasswordHash: string(hashedPassword)})
	if errors.Is(err, repository.ErrUsernameTaken) {
		return ErrUsernameTaken
	}
	return err
}

// Login проверяет пароль, открывает cookie сессию и выпускает JWT.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Попытка входа несуществующего пользователя: %s", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токена: %w", err)
	}

	session := repository.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(SessionTTL),
	}
	if err = s.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("ошибка сохранения сессии: %w", err)
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", username)
	return &LoginResult{Token: token, SessionID: session.ID, SessionExpiresAt: session.ExpiresAt}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *authService) Authenticate(ctx context.Context, sessionID, bearer string) (int64, bool) {
	if sessionID != "" {
		if session, err := s.sessionRepo.Get(ctx, sessionID); err == nil {
			return session.UserID, true
		}
	}
	if bearer != "" {
		if userID, err := s.parseJWT(bearer); err == nil {
			return userID, true
		}
	}
	return 0, false
}

// generateJWT создает и подписывает JWT токен для пользователя.
func (s *authService) generateJWT(userID int64) (string, error) {
	now := s.now()
	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signedToken, nil
}

// parseJWT проверяет подпись, метод и срок действия токена.
func (s *authService) parseJWT(tokenString string) (int64, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
