package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/venuebook/internal/client/client"
	"github.com/dmitrijs2005/venuebook/internal/client/models"
	"github.com/dmitrijs2005/venuebook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginReturns(resp *models.AuthResponse, err error) func(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	return func(context.Context, models.LoginRequest) (*models.AuthResponse, error) { return resp, err }
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.com \n"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

// Login with "A@B.com" succeeds and leaves "tok1" persisted.
func TestLogin_Success(t *testing.T) {
	fc := &fakeClient{
		loginFn:   loginReturns(&models.AuthResponse{Success: true, Token: "tok1"}, nil),
		profileFn: profileOK(&models.Profile{ID: "7", Email: "a@b.com"}),
	}
	s, store := newTestSession(t, fc, testSettings())

	res := s.Login(context.Background(), "A@B.com", "secret123")

	require.True(t, res.Success)
	assert.Equal(t, "tok1", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, models.ProfileID("7"), res.User.ID)

	require.Len(t, fc.loginReqs, 1)
	assert.Equal(t, "a@b.com", fc.loginReqs[0].Email)
	assert.Equal(t, "secret123", fc.loginReqs[0].Password)
	assert.NotEmpty(t, fc.loginReqs[0].Fingerprint)

	assert.Equal(t, []byte("tok1"), storedToken(t, store))
	snap := s.State()
	requireConsistent(t, snap)
	assert.True(t, snap.Authenticated)
	assert.True(t, s.revalidator.Running())
}

func TestLogin_DoesNotTouchLoading(t *testing.T) {
	fc := &fakeClient{
		loginFn:   loginReturns(&models.AuthResponse{Success: true, Token: "tok1"}, nil),
		profileFn: profileOK(&models.Profile{ID: "7"}),
	}
	s, _ := newTestSession(t, fc, testSettings())

	require.True(t, s.State().Loading)
	require.True(t, s.Login(context.Background(), "a@b.com", "pw").Success)
	assert.True(t, s.State().Loading, "only bootstrap clears loading")
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *models.AuthResponse
		err     error
		wantMsg string
	}{
		{
			name:    "bad credentials",
			err:     &client.StatusError{Code: 401, Message: "Invalid credentials"},
			wantMsg: "Invalid credentials",
		},
		{
			name:    "status without message",
			err:     &client.StatusError{Code: 422},
			wantMsg: MsgLoginFailed,
		},
		{
			name:    "unreachable",
			err:     client.ErrNetwork,
			wantMsg: MsgConnectionError,
		},
		{
			name:    "timeout",
			err:     client.ErrTimeout,
			wantMsg: MsgConnectionError,
		},
		{
			name:    "garbage body",
			err:     client.ErrMalformedResponse,
			wantMsg: MsgUnexpectedResponse,
		},
		{
			name:    "success false",
			resp:    &models.AuthResponse{Success: false, Message: "Account locked"},
			wantMsg: "Account locked",
		},
		{
			name: "success false with field errors",
			resp: &models.AuthResponse{Errors: map[string][]string{
				"password": {"too short"},
			}},
			wantMsg: "too short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{loginFn: loginReturns(tt.resp, tt.err)}
			s, store := newTestSession(t, fc, testSettings())

			res := s.Login(context.Background(), "a@b.com", "bad")

			assert.False(t, res.Success)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Empty(t, res.Token)
			assert.Nil(t, storedToken(t, store))
			assert.False(t, s.State().Authenticated)
			assert.Zero(t, fc.profileCalls())
		})
	}
}

func TestLogin_TokenRejectedByProfile(t *testing.T) {
	fc := &fakeClient{
		loginFn:   loginReturns(&models.AuthResponse{Success: true, Token: "tok1"}, nil),
		profileFn: profileErr(errServer),
	}
	s, store := newTestSession(t, fc, testSettings())

	res := s.Login(context.Background(), "a@b.com", "pw")

	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidToken, res.Message)
	assert.Nil(t, storedToken(t, store))
	snap := s.State()
	assert.Empty(t, snap.Token)
	assert.False(t, snap.Authenticated)
	assert.Equal(t, []string{"tok1"}, fc.logouts())
}

func TestLogin_EmptyTokenIsInvalid(t *testing.T) {
	fc := &fakeClient{loginFn: loginReturns(&models.AuthResponse{Success: true}, nil)}
	s, store := newTestSession(t, fc, testSettings())

	res := s.Login(context.Background(), "a@b.com", "pw")

	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidToken, res.Message)
	assert.Nil(t, storedToken(t, store))
	assert.Zero(t, fc.profileCalls())
}

func TestAdoptToken(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, _ := newTestSession(t, &fakeClient{}, testSettings())
		require.ErrorIs(t, s.AdoptToken(context.Background(), ""), ErrEmptyToken)
	})

	t.Run("network failure is not tolerated", func(t *testing.T) {
		fc := &fakeClient{profileFn: profileErr(errOffline)}
		s, store := newTestSession(t, fc, testSettings())

		err := s.AdoptToken(context.Background(), "tok1")
		require.ErrorIs(t, err, client.ErrNetwork)
		assert.Nil(t, storedToken(t, store))
		assert.Empty(t, s.State().Token)
	})

	t.Run("expired", func(t *testing.T) {
		fc := &fakeClient{profileFn: profileErr(errExpired)}
		s, _ := newTestSession(t, fc, testSettings())

		err := s.AdoptToken(context.Background(), "tok1")
		require.ErrorIs(t, err, client.ErrExpired)
		assert.False(t, s.State().Authenticated)
	})

	t.Run("store unavailable", func(t *testing.T) {
		fc := &fakeClient{profileFn: profileOK(&models.Profile{ID: "1"})}
		s := NewSession(fc, failingStore{metadata.NewMemoryRepository()}, nil, testSettings())
		t.Cleanup(s.Close)

		err := s.AdoptToken(context.Background(), "tok1")
		require.Error(t, err)
		assert.Empty(t, s.State().Token)
		assert.Zero(t, fc.profileCalls())
	})
}

func TestRegister(t *testing.T) {
	form := models.RegisterForm{
		FirstName:            "Ann",
		LastName:             "Lee",
		Email:                "  ann@b.com ",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}

	t.Run("success does not sign in", func(t *testing.T) {
		fc := &fakeClient{registerFn: func(_ context.Context, _ models.RegisterForm, avatar *models.Avatar) (*models.AuthResponse, error) {
			require.NotNil(t, avatar)
			return &models.AuthResponse{Success: true, Message: "Registered"}, nil
		}}
		s, store := newTestSession(t, fc, testSettings())

		res := s.Register(context.Background(), form, &models.Avatar{Filename: "me.png", Data: []byte{1}})

		require.True(t, res.Success)
		assert.Equal(t, "Registered", res.Message)
		require.Len(t, fc.registerForms, 1)
		assert.Equal(t, "ann@b.com", fc.registerForms[0].Email)
		assert.NotEmpty(t, fc.registerForms[0].Fingerprint)
		assert.Nil(t, storedToken(t, store))
		assert.False(t, s.State().Authenticated)
	})

	t.Run("validation errors", func(t *testing.T) {
		fc := &fakeClient{registerFn: func(context.Context, models.RegisterForm, *models.Avatar) (*models.AuthResponse, error) {
			return nil, &client.StatusError{Code: 422, Message: "The email has already been taken."}
		}}
		s, _ := newTestSession(t, fc, testSettings())

		res := s.Register(context.Background(), form, nil)
		assert.False(t, res.Success)
		assert.Equal(t, "The email has already been taken.", res.Message)
	})

	t.Run("unreachable", func(t *testing.T) {
		fc := &fakeClient{registerFn: func(context.Context, models.RegisterForm, *models.Avatar) (*models.AuthResponse, error) {
			return nil, client.ErrNetwork
		}}
		s, _ := newTestSession(t, fc, testSettings())

		res := s.Register(context.Background(), form, nil)
		assert.Equal(t, models.Failure(MsgConnectionError), res)
	})

	t.Run("keeps caller fingerprint", func(t *testing.T) {
		fc := &fakeClient{}
		s, _ := newTestSession(t, fc, testSettings())

		f := form
		f.Fingerprint = "device-1"
		s.Register(context.Background(), f, nil)
		assert.Equal(t, "device-1", fc.registerForms[0].Fingerprint)
	})
}

func signedIn(t *testing.T, fc *fakeClient) (*Session, *metadata.MemoryRepository) {
	t.Helper()
	fc.loginFn = loginReturns(&models.AuthResponse{Success: true, Token: "tok1"}, nil)
	if fc.profileFn == nil {
		fc.profileFn = profileOK(&models.Profile{ID: "1"})
	}
	s, store := newTestSession(t, fc, testSettings())
	require.True(t, s.Login(context.Background(), "a@b.com", "pw").Success)
	return s, store
}

func TestLogout(t *testing.T) {
	fc := &fakeClient{}
	s, store := signedIn(t, fc)

	require.NoError(t, s.Logout(context.Background()))

	assert.Nil(t, storedToken(t, store))
	snap := s.State()
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Authenticated)
	assert.Equal(t, []string{"tok1"}, fc.logouts())
	assert.False(t, s.revalidator.Running())
}

// The local session ends even when the server cannot be told.
func TestLogout_ServerUnreachable(t *testing.T) {
	fc := &fakeClient{logoutFn: func(context.Context, string) error { return client.ErrNetwork }}
	s, store := signedIn(t, fc)

	require.NoError(t, s.Logout(context.Background()))

	assert.Nil(t, storedToken(t, store))
	assert.False(t, s.State().Authenticated)
	assert.Empty(t, s.State().Token)
}

func TestLogout_WithoutSession(t *testing.T) {
	fc := &fakeClient{}
	s, _ := newTestSession(t, fc, testSettings())

	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, fc.logouts())
}

func TestLogout_StoreFailureStillClearsMemory(t *testing.T) {
	fc := &fakeClient{profileFn: profileOK(&models.Profile{ID: "1"})}
	fs := failingStore{metadata.NewMemoryRepository()}
	s := NewSession(fc, fs, nil, testSettings())
	t.Cleanup(s.Close)
	s.mu.Lock()
	s.token, s.user = "tok1", &models.Profile{ID: "1"}
	s.mu.Unlock()

	err := s.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, s.State().Authenticated)
	assert.Empty(t, s.State().Token)
	assert.Equal(t, []string{"tok1"}, fc.logouts())
}

func TestRefresh(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		s, _ := newTestSession(t, &fakeClient{}, testSettings())
		require.ErrorIs(t, s.Refresh(context.Background()), ErrNoSession)
	})

	t.Run("replaces profile", func(t *testing.T) {
		fc := &fakeClient{}
		s, _ := signedIn(t, fc)
		fc.setProfile(profileOK(&models.Profile{ID: "1", FirstName: "Renamed"}))

		require.NoError(t, s.Refresh(context.Background()))
		assert.Equal(t, "Renamed", s.State().User.FirstName)
	})

	t.Run("expired ends session", func(t *testing.T) {
		fc := &fakeClient{}
		s, store := signedIn(t, fc)
		fc.setProfile(profileErr(errExpired))

		err := s.Refresh(context.Background())
		require.ErrorIs(t, err, client.ErrExpired)
		assert.False(t, s.State().Authenticated)
		assert.Nil(t, storedToken(t, store))
	})

	t.Run("network keeps session", func(t *testing.T) {
		fc := &fakeClient{}
		s, store := signedIn(t, fc)
		fc.setProfile(profileErr(errOffline))

		err := s.Refresh(context.Background())
		assert.Equal(t, client.KindNetwork, client.Kind(err))
		assert.True(t, s.State().Authenticated)
		assert.Equal(t, []byte("tok1"), storedToken(t, store))
	})
}

func TestFingerprint_Stable(t *testing.T) {
	fc := &fakeClient{}
	s, store := newTestSession(t, fc, testSettings())

	first := s.Fingerprint(context.Background())
	require.NotEmpty(t, first)
	assert.Equal(t, first, s.Fingerprint(context.Background()))

	persisted, err := store.Get(context.Background(), common.FingerprintKey)
	require.NoError(t, err)
	assert.Equal(t, first, string(persisted))

	// a second session on the same store reuses it
	other := NewSession(fc, store, nil, testSettings())
	t.Cleanup(other.Close)
	assert.Equal(t, first, other.Fingerprint(context.Background()))
}

func TestFingerprint_StoreDown(t *testing.T) {
	s := NewSession(&fakeClient{}, failingStore{metadata.NewMemoryRepository()}, nil, testSettings())
	t.Cleanup(s.Close)
	assert.Empty(t, s.Fingerprint(context.Background()))
}

var errStoreDown = errors.New("store down")

// failingStore fails every write.
type failingStore struct {
	*metadata.MemoryRepository
}

func (failingStore) Set(context.Context, string, []byte) error { return errStoreDown }
func (failingStore) Delete(context.Context, string) error      { return errStoreDown }
func (failingStore) SetIfAbsent(context.Context, string, []byte) ([]byte, error) {
	return nil, errStoreDown
}
func (failingStore) CompareAndDelete(context.Context, string, []byte) (bool, error) {
	return false, errStoreDown
}
