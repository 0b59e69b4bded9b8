// Package meet mints access tokens for the managed video-calling service
// backing the Meet screen. The call experience itself is fully delegated to
// the provider's browser SDK; this server only vends short-lived room
// tokens to authenticated users.
package meet

import (
	"fmt"
	"time"

	"github.com/twilio/twilio-go/client/jwt"
)

// TokenService issues Twilio Video access tokens.
type TokenService struct {
	AccountSID string
	APIKey     string
	APISecret  string
	TTL        time.Duration
}

func NewTokenService(accountSID, apiKey, apiSecret string) *TokenService {
	return &TokenService{
		AccountSID: accountSID,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		TTL:        time.Hour,
	}
}

// AccessToken returns a signed room-scoped JWT for identity.
func (t *TokenService) AccessToken(identity, room string) (string, error) {
	if t.AccountSID == "" || t.APIKey == "" || t.APISecret == "" {
		return "", fmt.Errorf("meet: missing Twilio credentials: TWILIO_ACCOUNT_SID, TWILIO_API_KEY and TWILIO_API_SECRET required")
	}
	if identity == "" || room == "" {
		return "", fmt.Errorf("meet: identity and room required")
	}

	token := jwt.CreateAccessToken(jwt.AccessTokenParams{
		AccountSid:    t.AccountSID,
		SigningKeySid: t.APIKey,
		Secret:        t.APISecret,
		Identity:      identity,
		Ttl:           t.TTL.Seconds(),
	})
	token.AddGrant(&jwt.VideoGrant{Room: room})
	signed, err := token.ToJwt()
	if err != nil {
		return "", fmt.Errorf("meet: sign token: %w", err)
	}
	return signed, nil
}
