package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	token, err := SignJWT("stu-1", "secret", time.Hour)
	require.NoError(t, err)

	sid, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", sid)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := SignJWT("stu-1", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := SignJWT("stu-1", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := ParseJWT("not.a.token", "secret")
	assert.Error(t, err)
}
