package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expressivart/internal/domain/entity"
)

func TestAuthStateSnapshots(t *testing.T) {
	s := NewAuthState(nil)
	_, ok := s.Current()
	assert.False(t, ok)

	p := &entity.Principal{UserID: "u1"}
	s.Set(p)
	p.UserID = "mutated"

	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
}

func TestAuthStateListeners(t *testing.T) {
	s := NewAuthState(&entity.Principal{UserID: "u1"})

	var seen []string
	unsubscribe := s.OnChange(func(p *entity.Principal) {
		if p == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, p.UserID)
	})

	s.Set(&entity.Principal{UserID: "u2"})
	s.Clear()
	unsubscribe()
	unsubscribe()
	s.Set(&entity.Principal{UserID: "u3"})

	assert.Equal(t, []string{"u2", ""}, seen)
}
