package userapp

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"yatube/internal/config"
	userEntity "yatube/internal/core/user"
	userPort "yatube/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer = "yatube"
	tokenTTL    = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidUsername    = errors.New("username may contain only letters, numbers and @/./+/-/_")
)

// usernames are used as URL path segments
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]{1,150}$`)

// Claims is the JWT payload identifying a signed-in user.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// UserService manages accounts and their login tokens
type UserService struct {
	UserRepository userPort.UserRepository
	jwtKey         []byte
	now            func() time.Time
}

func NewUserService(repo userPort.UserRepository, jwtKey []byte) *UserService {
	return &UserService{
		UserRepository: repo,
		jwtKey:         jwtKey,
		now:            time.Now,
	}
}

// LoginUser checks the password and issues a JWT
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error) {
	user, err := s.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, userPort.ErrNotFound) {
			config.Logger.Error("Error finding user", zap.String("username", username), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		config.Logger.Info("Invalid password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(tokenTTL)
	token, err := s.generateJWT(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	return &userPort.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

func (s *UserService) generateJWT(user *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Username: user.Username,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  s.now().Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// ParseToken validates a token issued by LoginUser and returns its claims.
func (s *UserService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identify resolves a login token to the user it was issued for. Tokens of
// deleted accounts are rejected with ErrInvalidToken.
func (s *UserService) Identify(ctx context.Context, tokenString string) (*userPort.Identity, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	u, err := s.UserRepository.FindByID(ctx, claims.Subject)
	if errors.Is(err, userPort.ErrNotFound) {
		config.Logger.Info("Token for missing user", zap.String("userID", claims.Subject))
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &userPort.Identity{UserID: u.ID.String(), Username: u.Username}, nil
}

// RegisterUser creates an account with a bcrypt-hashed password
func (s *UserService) RegisterUser(ctx context.Context, name, family, username, email, password string) (*userPort.UserDTO, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	existingUser, err := s.UserRepository.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existingUser != nil {
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, userPort.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &userEntity.User{
		Name:     name,
		Family:   family,
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	u, err := s.UserRepository.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	config.Logger.Info("User registered", zap.String("username", u.Username))
	return userPort.ToUserDTO(u), nil
}
