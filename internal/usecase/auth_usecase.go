package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"catalog/internal/domain/model"
	"catalog/internal/logger"
	repo "catalog/internal/repository"
	"catalog/internal/validator"
)

type UserDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsStaff      bool   `json:"is_staff"`
	TokenVersion int    `json:"token_version"`
	IsActive     bool   `json:"is_active"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPairOutput struct {
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
	User    UserDTO `json:"user"`
}

type AccessTokenOutput struct {
	Access    string `json:"access"`
	ExpiresIn int    `json:"expires_in"`
}

type RevokeOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AuthUsecase struct {
	users  repo.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	hooks  *Hooks
	log    *logger.Logger
	clock  Clock
}

func NewAuthUsecase(users repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, hooks *Hooks, log *logger.Logger) *AuthUsecase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		hooks:  hooks,
		log:    log,
		clock:  realClock{},
	}
}

var errBadCredentials = NewHTTPError(http.StatusUnauthorized, "No active account found with the given credentials")

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	user, err := u.createUser(ctx, in, model.RoleUser)
	if err != nil {
		return UserDTO{}, err
	}

	u.hooks.userCreated(ctx, u.log, user)
	return toUserDTO(&user), nil
}

// CLIから管理者を作る。ウェルカムメールは送らない
func (u *AuthUsecase) CreateSuperuser(ctx context.Context, in RegisterInput) (UserDTO, error) {
	user, err := u.createUser(ctx, in, model.RoleAdmin)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(&user), nil
}

func (u *AuthUsecase) createUser(ctx context.Context, in RegisterInput, role model.Role) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validator.ValidateRegister(email, in.Password); err != nil {
		return model.User{}, err
	}

	//パスワードは必ずハッシュ化して保存
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, classify("hash password", err)
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConstraint) {
			return model.User{}, &validator.ValidationError{Field: "email", Reason: "user with this email already exists"}
		}
		return model.User{}, classify("create user", err)
	}
	return *user, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (TokenPairOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validator.ValidateLogin(email, in.Password); err != nil {
		return TokenPairOutput{}, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return TokenPairOutput{}, errBadCredentials
	}
	if err != nil {
		return TokenPairOutput{}, classify("find user", err)
	}
	if !user.IsActive || !u.hasher.Verify(user.PasswordHash, in.Password) {
		return TokenPairOutput{}, errBadCredentials
	}

	now := u.clock.Now()
	access, _, err := u.tokens.Issue(*user, TokenKindAccess, now)
	if err != nil {
		return TokenPairOutput{}, classify("issue access token", err)
	}
	refresh, _, err := u.tokens.Issue(*user, TokenKindRefresh, now)
	if err != nil {
		return TokenPairOutput{}, classify("issue refresh token", err)
	}

	//last_loginの更新失敗はログインを止めない
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.Warn("update last_login failed", "user_id", user.ID, "error", err)
	}

	return TokenPairOutput{Access: access, Refresh: refresh, User: toUserDTO(user)}, nil
}

// refreshトークンから新しいaccessトークンを出す。
// token_versionが進んでいれば失効扱い
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (AccessTokenOutput, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AccessTokenOutput{}, &validator.ValidationError{Field: "refresh", Reason: "This field is required"}
	}

	claims, err := u.tokens.Parse(refreshToken)
	if err != nil || claims.Kind != TokenKindRefresh {
		return AccessTokenOutput{}, NewHTTPError(http.StatusUnauthorized, "Token is invalid or expired")
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return AccessTokenOutput{}, NewHTTPError(http.StatusUnauthorized, "Token is invalid or expired")
	}
	if err != nil {
		return AccessTokenOutput{}, classify("find user", err)
	}
	if !user.IsActive || user.TokenVersion != claims.TokenVersion {
		return AccessTokenOutput{}, NewHTTPError(http.StatusUnauthorized, "Token is invalid or expired")
	}

	now := u.clock.Now()
	access, exp, err := u.tokens.Issue(*user, TokenKindAccess, now)
	if err != nil {
		return AccessTokenOutput{}, classify("issue access token", err)
	}
	return AccessTokenOutput{Access: access, ExpiresIn: int(exp.Sub(now).Seconds())}, nil
}

// 自分の発行済みトークンを全部無効にする
func (u *AuthUsecase) RevokeAll(ctx context.Context, userID int64) (RevokeOutput, error) {
	if userID <= 0 {
		return RevokeOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.bumpTokenVersion(ctx, userID)
}

// スタッフが他ユーザーを強制ログアウトさせる
func (u *AuthUsecase) ForceLogout(ctx context.Context, caller Caller, targetUserID int64) (RevokeOutput, error) {
	if !caller.IsStaff {
		return RevokeOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if targetUserID <= 0 {
		return RevokeOutput{}, &validator.ValidationError{Field: "id", Reason: "Invalid id"}
	}
	return u.bumpTokenVersion(ctx, targetUserID)
}

func (u *AuthUsecase) bumpTokenVersion(ctx context.Context, userID int64) (RevokeOutput, error) {
	tv, err := u.users.IncrementTokenVersion(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return RevokeOutput{}, newNotFound("user", userID)
	}
	if err != nil {
		return RevokeOutput{}, classify("revoke tokens", err)
	}

	u.log.Info("tokens revoked", "user_id", userID, "token_version", tv)
	return RevokeOutput{UserID: userID, NewTokenVersion: tv}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, classify("find user", err)
	}
	if !user.IsActive {
		return UserDTO{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return toUserDTO(user), nil
}

// model.UserをAPI返却用DTOに変換
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		IsStaff:      u.IsStaff(),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
	}
}
