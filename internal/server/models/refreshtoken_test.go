package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenValid(t *testing.T) {
	exp := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	tok := &RefreshToken{Expires: exp}

	assert.True(t, tok.Valid(exp.Add(-time.Second)))
	assert.False(t, tok.Valid(exp))
	assert.False(t, tok.Valid(exp.Add(time.Hour)))
}
