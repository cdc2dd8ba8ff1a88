package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates pending user with valid inputs", func(t *testing.T) {
		user, err := NewUser("alice", "password1", RoleEditor)
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, RoleEditor, user.Role)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "password1", user.PasswordHash)
		require.NotNil(t, user.PasswordChangedAt)
		assert.Equal(t, 1, user.GetVersion())

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserCreated, events[0].EventType())
	})

	t.Run("lowercases and trims username", func(t *testing.T) {
		user, err := NewUser("  Alice.Smith  ", "password1", RoleViewer)
		require.NoError(t, err)
		assert.Equal(t, "alice.smith", user.Username)
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser("ab", "password1", RoleViewer)
		require.Error(t, err)
	})

	t.Run("rejects username with invalid characters", func(t *testing.T) {
		_, err := NewUser("alice smith", "password1", RoleViewer)
		require.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("alice", "pass1", RoleViewer)
		require.Error(t, err)
	})

	t.Run("rejects password without digits", func(t *testing.T) {
		_, err := NewUser("alice", "passwords", RoleViewer)
		require.Error(t, err)
	})

	t.Run("rejects password without letters", func(t *testing.T) {
		_, err := NewUser("alice", "12345678", RoleViewer)
		require.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("alice", "password1", UserRole("superuser"))
		require.Error(t, err)
	})
}

func TestNewActiveUser(t *testing.T) {
	user, err := NewActiveUser("bob", "password1", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.True(t, user.IsActive())
}

func TestUser_VerifyPassword(t *testing.T) {
	user, err := NewUser("alice", "password1", RoleViewer)
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("password1"))
	assert.False(t, user.VerifyPassword("wrong-password"))
}

func TestUser_ChangePassword(t *testing.T) {
	t.Run("changes with correct old password", func(t *testing.T) {
		user, _ := NewUser("alice", "password1", RoleViewer)
		user.ClearDomainEvents()

		err := user.ChangePassword("password1", "newpassword2")
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("newpassword2"))
		assert.False(t, user.VerifyPassword("password1"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserPasswordChanged, events[0].EventType())
	})

	t.Run("rejects wrong old password", func(t *testing.T) {
		user, _ := NewUser("alice", "password1", RoleViewer)
		err := user.ChangePassword("wrong", "newpassword2")
		require.Error(t, err)
		assert.True(t, user.VerifyPassword("password1"))
	})

	t.Run("rejects weak new password", func(t *testing.T) {
		user, _ := NewUser("alice", "password1", RoleViewer)
		err := user.ChangePassword("password1", "short")
		require.Error(t, err)
	})
}

func TestUser_SetEmail(t *testing.T) {
	user, _ := NewUser("alice", "password1", RoleViewer)

	t.Run("accepts and lowercases valid email", func(t *testing.T) {
		require.NoError(t, user.SetEmail("Alice@Example.com"))
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("accepts empty email", func(t *testing.T) {
		require.NoError(t, user.SetEmail(""))
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		require.Error(t, user.SetEmail("not-an-email"))
	})
}

func TestUser_SetDisplayName(t *testing.T) {
	user, _ := NewUser("alice", "password1", RoleViewer)

	require.NoError(t, user.SetDisplayName("Alice Smith"))
	assert.Equal(t, "Alice Smith", user.DisplayName)
	assert.Equal(t, "Alice Smith", user.GetDisplayNameOrUsername())

	require.Error(t, user.SetDisplayName(strings.Repeat("x", 201)))
}

func TestUser_SetRole(t *testing.T) {
	user, _ := NewUser("alice", "password1", RoleViewer)

	require.NoError(t, user.SetRole(RoleAdmin))
	assert.True(t, user.IsAdmin())
	assert.True(t, user.CanWriteCatalog())

	require.NoError(t, user.SetRole(RoleViewer))
	assert.False(t, user.CanWriteCatalog())

	require.Error(t, user.SetRole(UserRole("bogus")))
}

func TestUser_StatusTransitions(t *testing.T) {
	t.Run("activate pending user", func(t *testing.T) {
		user, _ := NewUser("alice", "password1", RoleViewer)
		user.ClearDomainEvents()

		require.NoError(t, user.Activate())
		assert.True(t, user.IsActive())
		require.Error(t, user.Activate())
	})

	t.Run("deactivate blocks login", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)
		require.NoError(t, user.Deactivate())
		assert.True(t, user.IsDeactivated())
		assert.False(t, user.CanLogin())
		require.Error(t, user.Deactivate())
	})

	t.Run("pending user cannot login", func(t *testing.T) {
		user, _ := NewUser("alice", "password1", RoleViewer)
		assert.True(t, user.IsPending())
		assert.False(t, user.CanLogin())
	})

	t.Run("cannot lock deactivated user", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)
		require.NoError(t, user.Deactivate())
		require.Error(t, user.Lock(time.Hour))
	})

	t.Run("unlock restores active status", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)
		require.NoError(t, user.Lock(time.Hour))
		assert.True(t, user.IsLocked())

		require.NoError(t, user.Unlock())
		assert.True(t, user.IsActive())
		assert.Equal(t, 0, user.FailedAttempts)
	})

	t.Run("unlock requires locked state", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)
		require.Error(t, user.Unlock())
	})

	t.Run("expired lock no longer blocks login", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)
		require.NoError(t, user.Lock(-time.Minute))
		assert.False(t, user.IsLocked())
		assert.True(t, user.CanLogin())
	})
}

func TestUser_LoginTracking(t *testing.T) {
	t.Run("success resets failed attempts", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)
		user.RecordLoginFailure(5, time.Hour)
		assert.Equal(t, 1, user.FailedAttempts)

		user.RecordLoginSuccess("192.0.2.1")
		assert.Equal(t, 0, user.FailedAttempts)
		assert.Equal(t, "192.0.2.1", user.LastLoginIP)
		require.NotNil(t, user.LastLoginAt)
	})

	t.Run("lockout after max failures", func(t *testing.T) {
		user, _ := NewActiveUser("alice", "password1", RoleViewer)

		locked := false
		for i := 0; i < 5; i++ {
			locked = user.RecordLoginFailure(5, time.Hour)
		}

		assert.True(t, locked)
		assert.True(t, user.IsLocked())
		assert.False(t, user.CanLogin())
	})
}
