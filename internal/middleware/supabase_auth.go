package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key holding the authenticated user's id.
const UserIDKey = "userID"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// SupabaseVerifier validates tokens against the Supabase auth endpoint. The
// token is externally issued; this server only checks it and passes it
// through, it never refreshes or re-authenticates.
type SupabaseVerifier struct {
	BaseURL string
	AnonKey string
	Client  *http.Client
}

func NewSupabaseVerifier(baseURL, anonKey string) *SupabaseVerifier {
	return &SupabaseVerifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *SupabaseVerifier) Verify(token string) (string, error) {
	if v.BaseURL == "" || v.AnonKey == "" {
		return "", fmt.Errorf("auth: missing Supabase configuration: SUPABASE_URL and SUPABASE_ANON_KEY required")
	}
	req, err := http.NewRequest(http.MethodGet, v.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", v.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: verify request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth: token rejected with status %d", resp.StatusCode)
	}
	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("auth: malformed user response: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("auth: user response missing id")
	}
	return user.ID, nil
}

// BearerAuth extracts the Authorization bearer token, verifies it, and
// stores the user id on the request context. Requests without a valid
// token are rejected with 401; there is no retry or refresh.
func BearerAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				c.Echo().Logger.Warnf("auth failed: %v", err)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	ah := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return strings.TrimSpace(ah[len("Bearer "):])
	}
	return ""
}
