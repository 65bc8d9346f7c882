package upbit

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{AccessKey: "test-access", SecretKey: "test-secret"}

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		return []byte(testCreds.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}

func TestSign_WithoutParams(t *testing.T) {
	token, err := Sign(testCreds, nil)
	require.NoError(t, err)

	claims := parseToken(t, token)

	assert.Equal(t, "test-access", claims["access_key"])
	assert.NotEmpty(t, claims["nonce"])
	assert.NotContains(t, claims, "query_hash")
	assert.NotContains(t, claims, "query_hash_alg")
}

func TestSign_WithParams(t *testing.T) {
	params := Params{"market": "KRW-BTC", "state": "wait", "page": 1}

	token, err := Sign(testCreds, params)
	require.NoError(t, err)

	claims := parseToken(t, token)
	sum := sha512.Sum512([]byte("market=KRW-BTC&page=1&state=wait"))

	assert.Equal(t, hex.EncodeToString(sum[:]), claims["query_hash"])
	assert.Equal(t, "SHA512", claims["query_hash_alg"])
}

func TestSign_AbsentParamsOnlyIsUnhashed(t *testing.T) {
	token, err := Sign(testCreds, Params{"state": nil})
	require.NoError(t, err)

	assert.NotContains(t, parseToken(t, token), "query_hash")
}

func TestSign_UniqueNonce(t *testing.T) {
	seen := map[any]bool{}
	for i := 0; i < 20; i++ {
		token, err := Sign(testCreds, Params{"market": "KRW-BTC"})
		require.NoError(t, err)
		nonce := parseToken(t, token)["nonce"]
		assert.False(t, seen[nonce], "nonce reused")
		seen[nonce] = true
	}
}

func TestSign_WrongSecretFails(t *testing.T) {
	token, err := Sign(Credentials{AccessKey: "a", SecretKey: "other"}, nil)
	require.NoError(t, err)

	_, err = jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(testCreds.SecretKey), nil
	})
	assert.Error(t, err)
}

func TestQueryHash_OrderIndependent(t *testing.T) {
	a := QueryHash(Params{"b": "2", "a": "1"})
	b := QueryHash(Params{"a": "1", "b": "2"})

	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
}

func TestBearerHeader(t *testing.T) {
	assert.True(t, strings.HasPrefix(BearerHeader("abc"), "Bearer "))
	assert.Equal(t, "Bearer abc", BearerHeader("abc"))
}
