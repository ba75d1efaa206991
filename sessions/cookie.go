package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the browser cookie carrying the signed session ID.
const CookieName = "dashboard_session"

// CookieCodec signs session IDs into cookie values and verifies them on the
// way back in. The session ID itself is opaque; signing only prevents a
// browser from forging or swapping IDs.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

// Issue produces a signed cookie value for sessionID.
func (c *CookieCodec) Issue(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns the session ID it carries.
func (c *CookieCodec) Decode(value string) (string, error) {
	token, err := jwt.Parse(value, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse session cookie: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected session cookie claims")
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("session cookie missing session id")
	}
	return sessionID, nil
}
