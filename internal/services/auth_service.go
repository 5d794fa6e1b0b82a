package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/utils"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// SessionUser is the part of an Authorizer user the cube store records as author.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Author returns the identity written on revisions.
func (u *SessionUser) Author() string {
	if u == nil {
		return ""
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client once per process. The redirect URL
// is taken from the first request.
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	var initErr error

	authOnce.Do(func() {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		slog.Info("initializing authorizer", "url", cfg.AuthzURL, "clientID", cfg.AuthzClientID, "redirectURL", redirectURL)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
		}
	})

	return initErr
}

// ValidateSession validates a session cookie for any of the given roles and returns the
// session's user.
func ValidateSession(cookie string, roles []string) (*SessionUser, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	return sessionUser(res.User)
}

// sessionUser reads the user through its JSON form so only the fields used here are
// bound to the SDK's type.
func sessionUser(user any) (*SessionUser, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("read session user: %w", err)
	}
	var u SessionUser
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("read session user: %w", err)
	}
	return &u, nil
}
