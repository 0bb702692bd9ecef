package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/registry"
	"github.com/evroutex/fleet-dispatch/internal/store"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Service handles authentication and session lifecycle for both roles.
//
// Admin login requires an exact username/password match against a stored
// admin record. Driver login requires only possession of a registered
// vehicle number; that is a deliberately weak credential and callers must
// not assume confidentiality beyond "knows the vehicle id".
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	store     store.Store
	registry  *registry.Registry
	sessions  *SessionTable
}

// NewService creates a new authentication service.
func NewService(secret string, tokenExp time.Duration, st store.Store, reg *registry.Registry, sessions *SessionTable) *Service {
	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  tokenExp,
		store:     st,
		registry:  reg,
		sessions:  sessions,
	}
}

// Sessions exposes the live session table.
func (s *Service) Sessions() *SessionTable {
	return s.sessions
}

// AdminLogin authenticates an admin. Credentials are compared exactly
// (no normalization, unlike driver lookups). No session is created on
// failure.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, admin := range doc.Admins {
		if admin.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return s.openSession(admin.Username, models.RoleAdmin)
	}
	return nil, ErrInvalidCredentials
}

// DriverLogin authenticates a driver by vehicle number.
func (s *Service) DriverLogin(ctx context.Context, vehicleNo string) (*models.LoginResponse, error) {
	driver, err := s.registry.Find(ctx, vehicleNo)
	if err != nil {
		if errors.Is(err, registry.ErrDriverNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.openSession(driver.VehicleNo, models.RoleDriver)
}

// Register creates a driver record and immediately authenticates it;
// there is no separate login step after registration.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	driver, err := s.registry.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.openSession(driver.VehicleNo, models.RoleDriver)
}

// Logout destroys the session, discarding all its fields.
func (s *Service) Logout(sessionID string) {
	s.sessions.Destroy(sessionID)
}

func (s *Service) openSession(identity string, role models.Role) (*models.LoginResponse, error) {
	session := s.sessions.Create(identity, role)
	token, err := s.signToken(session)
	if err != nil {
		s.sessions.Destroy(session.ID)
		return nil, err
	}
	log.WithFields(log.Fields{"identity": identity, "role": role}).Info("Session opened")
	return &models.LoginResponse{Token: token, Identity: identity, Role: role}, nil
}

func (s *Service) signToken(session *Session) (string, error) {
	claims := jwt.MapClaims{
		"session_id": session.ID,
		"identity":   session.Identity,
		"role":       string(session.Role),
		"exp":        time.Now().Add(s.tokenExp).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Authenticate validates a bearer token and resolves it to a live
// session. A token whose session was destroyed by logout is rejected.
func (s *Service) Authenticate(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sessionID, ok := mapClaims["session_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	identity, ok := mapClaims["identity"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	roleStr, ok := mapClaims["role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	if _, live := s.sessions.Get(sessionID); !live {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		SessionID: sessionID,
		Identity:  identity,
		Role:      models.Role(roleStr),
		Exp:       int64(exp),
	}, nil
}

// AuthorizeAdmin refuses the operation unless the claims belong to an
// authenticated admin.
func AuthorizeAdmin(claims *models.Claims) error {
	if claims == nil || claims.Role != models.RoleAdmin {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeDriver refuses the operation unless the claims belong to the
// driver bound to vehicleNo.
func AuthorizeDriver(claims *models.Claims, vehicleNo string) error {
	if claims == nil || claims.Role != models.RoleDriver {
		return ErrUnauthorized
	}
	if registry.Normalize(claims.Identity) != registry.Normalize(vehicleNo) {
		return ErrUnauthorized
	}
	return nil
}
