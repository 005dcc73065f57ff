package service

import (
	"storyframe-ai/internal/auth"
	"storyframe-ai/internal/dto"
	"storyframe-ai/internal/storage"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"
	apperrors "storyframe-ai/pkg/errors"

	"go.uber.org/zap"
)

// Register 用户注册
func (s *Service) Register(req dto.RegisterReq) (*dto.UserInfo, error) {
	if err := auth.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	if _, err := storage.GetUserByUsername(req.Username); err == nil {
		return nil, apperrors.ErrUserExists
	}
	if _, err := storage.GetUserByEmail(req.Email); err == nil {
		return nil, apperrors.ErrUserExists
	}

	user := &types.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: auth.HashPassword(req.Password),
		IsActive:       true,
	}
	if err := storage.CreateUser(user); err != nil {
		log.GetLogger().Error("创建用户失败", zap.String("username", req.Username), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "注册失败 Registration failed", err)
	}

	log.GetLogger().Info("用户注册成功", zap.Int64("user_id", user.Id), zap.String("username", user.Username))
	return &dto.UserInfo{Id: user.Id, Username: user.Username, Email: user.Email}, nil
}

// Login 登录，username 同时接受用户名或邮箱
func (s *Service) Login(req dto.LoginReq) (*dto.LoginResData, error) {
	user, err := storage.GetUserByLogin(req.Username)
	if err != nil {
		return nil, apperrors.ErrBadCredentials
	}
	if !user.IsActive || !auth.VerifyPassword(req.Password, user.HashedPassword) {
		return nil, apperrors.ErrBadCredentials
	}

	token, expiresIn, err := auth.GenerateToken(user.Id, user.Username)
	if err != nil {
		log.GetLogger().Error("生成token失败", zap.Int64("user_id", user.Id), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "登录失败 Login failed", err)
	}

	return &dto.LoginResData{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      dto.UserInfo{Id: user.Id, Username: user.Username, Email: user.Email},
	}, nil
}

// RefreshToken 用当前有效token换取新token
func (s *Service) RefreshToken(userId int64) (*dto.RefreshResData, error) {
	user, err := storage.GetUserById(userId)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	token, expiresIn, err := auth.GenerateToken(user.Id, user.Username)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "刷新失败 Refresh failed", err)
	}
	return &dto.RefreshResData{Token: token, ExpiresIn: expiresIn}, nil
}

// CurrentUser 当前登录用户信息
func (s *Service) CurrentUser(userId int64) (*dto.UserInfo, error) {
	user, err := storage.GetUserById(userId)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Wrap(apperrors.CodeDBError, "查询用户失败 Query user failed", err)
	}
	return &dto.UserInfo{Id: user.Id, Username: user.Username, Email: user.Email}, nil
}
