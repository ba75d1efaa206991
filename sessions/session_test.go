package sessions_test

import (
	"testing"

	"github.com/ridegauge/traffic-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

func TestSessionState_TokenStore(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		s := sessions.NewState()
		s.PutToken("123", sessions.TokenRecord{AccessToken: "tok-123"})

		record, ok := s.Token("123")
		require.True(t, ok)
		require.Equal(t, "tok-123", record.AccessToken)
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := sessions.NewState()
		s.PutToken("123", sessions.TokenRecord{AccessToken: "old"})
		s.PutToken("123", sessions.TokenRecord{AccessToken: "new"})

		record, _ := s.Token("123")
		require.Equal(t, "new", record.AccessToken)
		require.Len(t, s.Tokens, 1)
	})

	t.Run("delete absent is a no-op", func(t *testing.T) {
		s := sessions.NewState()
		s.PutToken("123", sessions.TokenRecord{AccessToken: "tok"})
		s.DeleteToken("456")
		require.Len(t, s.Tokens, 1)
	})

	t.Run("delete current user clears current id", func(t *testing.T) {
		s := sessions.NewState()
		s.PutToken("123", sessions.TokenRecord{AccessToken: "tok"})
		s.CurrentUserID = "123"

		s.DeleteToken("123")
		require.Empty(t, s.CurrentUserID)
		require.Empty(t, s.Tokens)
	})

	t.Run("delete other user keeps current id", func(t *testing.T) {
		s := sessions.NewState()
		s.PutToken("123", sessions.TokenRecord{AccessToken: "a"})
		s.PutToken("456", sessions.TokenRecord{AccessToken: "b"})
		s.CurrentUserID = "123"

		s.DeleteToken("456")
		require.Equal(t, "123", s.CurrentUserID)
		require.Len(t, s.Tokens, 1)
	})
}

func TestSessionState_CurrentToken(t *testing.T) {
	s := sessions.NewState()
	_, ok := s.CurrentToken()
	require.False(t, ok)
	require.False(t, s.Authenticated())

	s.PutToken("123", sessions.TokenRecord{AccessToken: "tok"})
	s.CurrentUserID = "123"

	record, ok := s.CurrentToken()
	require.True(t, ok)
	require.Equal(t, "tok", record.AccessToken)
	require.True(t, s.Authenticated())
}

func TestSessionState_Flashes(t *testing.T) {
	s := sessions.NewState()
	s.AddFlash("success", "Welcome, Alice!")
	s.AddFlash("error", "Something failed.")

	flashes := s.ConsumeFlashes()
	require.Len(t, flashes, 2)
	require.Equal(t, sessions.Flash{Message: "Welcome, Alice!", Category: "success"}, flashes[0])
	require.Empty(t, s.ConsumeFlashes())
}

func TestSessionState_Clone(t *testing.T) {
	s := sessions.NewState()
	s.PutToken("123", sessions.TokenRecord{
		AccessToken: "tok",
		Athlete:     map[string]any{"id": float64(123), "firstname": "Alice"},
	})
	s.CurrentUserID = "123"

	clone := s.Clone()
	clone.PutToken("456", sessions.TokenRecord{AccessToken: "other"})
	record, _ := clone.Token("123")
	record.Athlete["firstname"] = "Mallory"

	require.Len(t, s.Tokens, 1)
	original, _ := s.Token("123")
	require.Equal(t, "Alice", original.Athlete["firstname"])
}
