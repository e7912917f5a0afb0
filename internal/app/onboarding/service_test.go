package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountPort struct {
	updateErr error
	calls     []profileCall
}

type profileCall struct {
	userID, username, displayName string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.calls = append(f.calls, profileCall{userID, username, displayName})
	return f.updateErr
}

func TestOnboardNewUser_SetsFriendlyName(t *testing.T) {
	accounts := &fakeAccountPort{}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	name, err := service.OnboardNewUser(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, accounts.calls, 1)
	assert.Equal(t, profileCall{"user-1", name, name}, accounts.calls[0])
	assert.Regexp(t, regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`), name)
}

func TestOnboardNewUser_SameSeedSameName(t *testing.T) {
	a, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	b, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	assert.Equal(t, a, b)
}

func TestOnboardNewUser_ProfileFailure(t *testing.T) {
	boom := errors.New("boom")
	service := NewService(&fakeAccountPort{updateErr: boom}, nil)

	_, err := service.OnboardNewUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, boom)
}

func TestOnboardNewUser_NotConfigured(t *testing.T) {
	_, err := NewService(nil, nil).OnboardNewUser(context.Background(), "user-1")
	assert.Error(t, err)

	_, err = NewService(&fakeAccountPort{}, nil).OnboardNewUser(context.Background(), "")
	assert.Error(t, err)
}
