package flows

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/veloraweb/authcore/token"
)

func refreshDeps(exp time.Time, now time.Time, issueErr error) RefreshDeps {
	return RefreshDeps{
		ParseToken: func(string) (*token.Claims, error) {
			c := &token.Claims{}
			c.Subject = "a@b"
			c.ExpiresAt = jwt.NewNumericDate(exp)
			return c, nil
		},
		IssueToken: func(subject string) (string, time.Time, error) {
			if issueErr != nil {
				return "", time.Time{}, issueErr
			}
			return "new-token", now.Add(6 * time.Hour), nil
		},
		Now:              func() time.Time { return now },
		RefreshThreshold: 2 * time.Hour,
	}
}

func TestRunRefresh(t *testing.T) {
	now := time.Date(2025, 3, 1, 22, 30, 0, 0, time.UTC)

	t.Run("empty token", func(t *testing.T) {
		outcome := RunRefresh("", refreshDeps(now.Add(time.Hour), now, nil))
		assert.Equal(t, RefreshOutcome{}, outcome)
	})

	t.Run("undecodable token", func(t *testing.T) {
		deps := refreshDeps(now, now, nil)
		deps.ParseToken = func(string) (*token.Claims, error) {
			return nil, token.ErrMalformed
		}
		outcome := RunRefresh("tok", deps)
		assert.Equal(t, RefreshOutcome{}, outcome)
	})

	t.Run("far from expiry", func(t *testing.T) {
		exp := now.Add(10 * time.Hour)
		outcome := RunRefresh("tok", refreshDeps(exp, now, nil))
		assert.False(t, outcome.Refreshed)
		assert.True(t, outcome.ExpiresAt.Equal(exp))
	})

	t.Run("within window", func(t *testing.T) {
		outcome := RunRefresh("tok", refreshDeps(now.Add(time.Hour), now, nil))
		assert.True(t, outcome.Refreshed)
		assert.Equal(t, "new-token", outcome.NewToken)
		assert.True(t, outcome.ExpiresAt.Equal(now.Add(6*time.Hour)))
	})

	t.Run("mint failure keeps current token", func(t *testing.T) {
		exp := now.Add(time.Hour)
		outcome := RunRefresh("tok", refreshDeps(exp, now, errors.New("signing broken")))
		assert.False(t, outcome.Refreshed)
		assert.Empty(t, outcome.NewToken)
		assert.True(t, outcome.ExpiresAt.Equal(exp))
		assert.Error(t, outcome.Err)
	})
}
