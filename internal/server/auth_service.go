package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/config"
	"github.com/careerdesk/careerdesk-api/internal/db"
	"github.com/careerdesk/careerdesk-api/internal/types"
)

// CounselorSource resolves counselor credentials by email.
type CounselorSource interface {
	GetCounselorByEmail(ctx context.Context, email string) (*db.Counselor, error)
}

// AuthService resolves login credentials against the two credential sources:
// the configured administrator and the counselor collection. It owns no
// global state; construct one per server and inject it.
type AuthService struct {
	counselors CounselorSource
	passwords  *config.PasswordConfig

	adminPrincipal    types.Principal
	adminEmail        string
	adminPasswordHash string
}

// NewAuthService creates an AuthService. The admin principal's ID is derived
// deterministically from the admin email so sessions survive restarts.
func NewAuthService(cfg *config.Config, passwords *config.PasswordConfig, counselors CounselorSource) *AuthService {
	return &AuthService{
		counselors: counselors,
		passwords:  passwords,
		adminPrincipal: types.Principal{
			ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("careerdesk:admin:"+strings.ToLower(cfg.AdminEmail))),
			Name:  cfg.AdminName,
			Email: cfg.AdminEmail,
			Role:  types.RoleAdmin,
		},
		adminEmail:        cfg.AdminEmail,
		adminPasswordHash: cfg.AdminPasswordHash,
	}
}

// Login resolves credentials to a principal. The admin source is always
// checked before the counselor collection; a role hint restricts the check
// to one source. Every failure path returns the same undifferentiated
// invalid-credentials error so the response never discloses whether the
// email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.Principal, error) {
	hint := req.Role

	if hint == "" || hint == string(types.RoleAdmin) {
		if strings.EqualFold(req.Email, s.adminEmail) &&
			s.passwords.VerifyPassword(req.Password, s.adminPasswordHash) {
			principal := s.adminPrincipal
			return &principal, nil
		}
	}

	if hint == "" || hint == string(types.RoleCounselor) {
		counselor, err := s.counselors.GetCounselorByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to get counselor by email: %w", err)
		}
		if counselor != nil && s.passwords.VerifyPassword(req.Password, counselor.PasswordHash) {
			return CounselorPrincipal(counselor), nil
		}
	}

	return nil, &ErrInvalidCredentials{}
}

// CounselorPrincipal converts a counselor record into a session principal,
// stripping the password hash.
func CounselorPrincipal(c *db.Counselor) *types.Principal {
	if c == nil {
		return nil
	}
	return &types.Principal{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Role:      types.RoleCounselor,
		AvatarURL: c.PhotoURL,
	}
}
