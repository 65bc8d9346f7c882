package upbit

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// QueryHashAlg is the algorithm identifier embedded next to query_hash.
const QueryHashAlg = "SHA512"

// QueryHash is the hex SHA-512 of the canonical encoding of params.
func QueryHash(params Params) string {
	sum := sha512.Sum512([]byte(params.Encode()))
	return hex.EncodeToString(sum[:])
}

// Claims builds the token payload for one request. The nonce must be unique
// per request; params may be nil.
func Claims(creds Credentials, nonce string, params Params) jwt.MapClaims {
	claims := jwt.MapClaims{
		"access_key": creds.AccessKey,
		"nonce":      nonce,
	}
	if !params.Empty() {
		claims["query_hash"] = QueryHash(params)
		claims["query_hash_alg"] = QueryHashAlg
	}
	return claims
}

// Sign returns a fresh HS256 bearer token for a request carrying params.
// A token is bound to exactly one parameter set and must not be reused.
func Sign(creds Credentials, params Params) (string, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims(creds, nonce.String(), params))
	signed, err := token.SignedString([]byte(creds.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BearerHeader formats a signed token as an Authorization header value.
func BearerHeader(token string) string {
	return "Bearer " + token
}
