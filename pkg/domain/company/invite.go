package company

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/url"
)

// inviteCodeSpan covers the 6-digit range 100000-999999.
var inviteCodeSpan = big.NewInt(900000)

// GenerateInviteCode generates a uniform random 6-digit numeric join code.
// Globally unique by DB constraint; collisions are retried by the caller.
func GenerateInviteCode() (string, error) {
	n, err := rand.Int(rand.Reader, inviteCodeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateInviteToken generates a secure random opaque token (256 bits).
func GenerateInviteToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// BuildInviteLink builds the shareable join URL for an invite token.
func BuildInviteLink(baseURL, token string) string {
	return fmt.Sprintf("%s/join-company?token=%s", baseURL, url.QueryEscape(token))
}
