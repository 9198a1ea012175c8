package usecase

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

// AuthService is a stub identity provider: it hands out canned role-tagged
// profiles and signs short session tokens for them. A real deployment would
// swap the profile lookup for identity-provider federation and keep the
// token layer.
type AuthService struct {
	JWTSecret string
	Logger    *slog.Logger
}

func (s *AuthService) Login(role domain.UserRole) (string, *domain.User, error) {
	var u *domain.User
	switch role {
	case domain.RoleAdmin:
		u = &domain.User{
			ID:      "admin_1",
			Name:    "Super Admin",
			Email:   "admin@laundrymate.id",
			Role:    domain.RoleAdmin,
			Status:  domain.UserActive,
			Address: "Kantor Pusat LaundryMate",
			Phone:   "0811111111",
			Avatar:  "https://i.pravatar.cc/150?u=admin",
		}
	case domain.RoleCustomer:
		u = &domain.User{
			ID:     "cust_" + randomID()[:5],
			Name:   "Customer Demo",
			Email:  "customer@demo.com",
			Role:   domain.RoleCustomer,
			Status: domain.UserActive,
			Avatar: "https://i.pravatar.cc/150?u=cust",
		}
	default:
		return "", nil, errors.New("unknown role")
	}

	claims := jwt.MapClaims{
		"user_id": u.ID,
		"name":    u.Name,
		"role":    string(u.Role),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

// Verify parses a session token and reconstructs the identity carried in it.
func (s *AuthService) Verify(token string) (domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	})
	if err != nil {
		return domain.User{}, err
	}
	if !parsed.Valid {
		return domain.User{}, errors.New("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.User{}, errors.New("invalid claims")
	}
	id, _ := m["user_id"].(string)
	name, _ := m["name"].(string)
	role, _ := m["role"].(string)
	return domain.User{ID: id, Name: name, Role: domain.UserRole(role), Status: domain.UserActive}, nil
}

// SaveProfile is a stub: profile persistence is outside this core.
func (s *AuthService) SaveProfile(u domain.User) error {
	s.Logger.Info("profile saved", "user", u.ID, "name", u.Name)
	return nil
}
