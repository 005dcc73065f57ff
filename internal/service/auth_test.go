package service

import (
	"testing"

	"storyframe-ai/internal/dto"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()

	user, err := svc.Register(dto.RegisterReq{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "passw0rd",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.Id)

	res, err := svc.Login(dto.LoginReq{Username: "alice", Password: "passw0rd"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(24*3600), res.ExpiresIn)
	assert.Equal(t, user.Id, res.User.Id)

	// 邮箱也可作为登录名
	res, err = svc.Login(dto.LoginReq{Username: "alice@example.com", Password: "passw0rd"})
	require.NoError(t, err)
	assert.Equal(t, user.Id, res.User.Id)
}

func TestRegisterDuplicate(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()

	_, err := svc.Register(dto.RegisterReq{Username: "alice", Email: "alice@example.com", Password: "passw0rd"})
	require.NoError(t, err)

	_, err = svc.Register(dto.RegisterReq{Username: "alice", Email: "other@example.com", Password: "passw0rd"})
	assert.True(t, apperrors.Is(err, apperrors.CodeUserExists))

	_, err = svc.Register(dto.RegisterReq{Username: "alice2", Email: "alice@example.com", Password: "passw0rd"})
	assert.True(t, apperrors.Is(err, apperrors.CodeUserExists))
}

func TestRegisterValidation(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()

	_, err := svc.Register(dto.RegisterReq{Username: "ab", Email: "a@b.com", Password: "passw0rd"})
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidUsername))

	_, err = svc.Register(dto.RegisterReq{Username: "alice", Email: "a@b.com", Password: "short"})
	assert.True(t, apperrors.Is(err, apperrors.CodeWeakPassword))

	_, err = svc.Register(dto.RegisterReq{Username: "alice", Email: "a@b.com", Password: "onlyletters"})
	assert.True(t, apperrors.Is(err, apperrors.CodeWeakPassword))
}

func TestLoginBadCredentials(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()

	_, err := svc.Register(dto.RegisterReq{Username: "alice", Email: "alice@example.com", Password: "passw0rd"})
	require.NoError(t, err)

	_, err = svc.Login(dto.LoginReq{Username: "alice", Password: "wrong-pass1"})
	assert.True(t, apperrors.Is(err, apperrors.CodeBadCredentials))

	_, err = svc.Login(dto.LoginReq{Username: "nobody", Password: "passw0rd"})
	assert.True(t, apperrors.Is(err, apperrors.CodeBadCredentials))
}

func TestRefreshAndCurrentUser(t *testing.T) {
	setupTestDB(t)
	svc, _, _, _, _ := newTestService()

	user, err := svc.Register(dto.RegisterReq{Username: "alice", Email: "alice@example.com", Password: "passw0rd"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(user.Id)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)

	info, err := svc.CurrentUser(user.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)

	_, err = svc.CurrentUser(99999)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}
