package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDSN(t *testing.T) {
	assert.Equal(t, "postgresql://u:p@h:5432/db", normalizeDSN(" postgresql+asyncpg://u:p@h:5432/db "))
	assert.Equal(t, "postgres://u:p@h/db", normalizeDSN("postgres+asyncpg://u:p@h/db"))
	assert.Equal(t, "postgres://u:p@h/db", normalizeDSN("postgres://u:p@h/db"))
}
