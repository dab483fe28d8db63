package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, cfg Config) *Service[*Claims] {
	t.Helper()
	svc, err := NewService(&cfg, NewClaims)
	require.NoError(t, err)
	return svc
}

func TestService_GenerateParse(t *testing.T) {
	svc := newService(t, Config{Secret: "s3cret", Issuer: "asr-clients", Audience: "asr-server"})

	token, err := svc.Generate(&Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "client-1"}})
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.Subject)
	assert.Equal(t, "asr-clients", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestService_WrongSecret(t *testing.T) {
	issuer := newService(t, Config{Secret: "one"})
	verifier := newService(t, Config{Secret: "two"})

	token, err := issuer.Generate(NewClaims())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestService_Expired(t *testing.T) {
	svc := newService(t, Config{Secret: "s3cret"})
	past := time.Now().Add(-time.Hour)
	token, err := svc.Generate(&Claims{RegisteredClaims: gojwt.RegisteredClaims{
		IssuedAt:  gojwt.NewNumericDate(past.Add(-time.Hour)),
		ExpiresAt: gojwt.NewNumericDate(past),
	}})
	require.NoError(t, err)

	_, err = svc.Parse(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestService_IssuerMismatch(t *testing.T) {
	a := newService(t, Config{Secret: "s", Issuer: "a"})
	b := newService(t, Config{Secret: "s", Issuer: "b"})

	token, err := a.Generate(NewClaims())
	require.NoError(t, err)
	_, err = b.Parse(token)
	assert.Error(t, err)
}

func TestService_RejectsOtherAlgorithm(t *testing.T) {
	svc := newService(t, Config{Secret: "s"})
	other := newService(t, Config{Secret: "s", Method: HS512})

	token, err := other.Generate(NewClaims())
	require.NoError(t, err)
	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Error(t, cfg.Validate(), "missing secret")

	cfg = Config{Secret: "x", Method: "RS256"}
	assert.Error(t, cfg.Validate())

	cfg = Config{Secret: "x"}
	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, HS256, cfg.Method)
}
