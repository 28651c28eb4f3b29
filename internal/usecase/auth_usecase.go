package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"woodify/internal/config"
	"woodify/internal/domain/model"
	"woodify/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type SessionDTO struct {
	User      UserDTO   `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	sessions  repository.SessionRepository
	validator AuthValidator
	log       *zap.Logger
	now       func() time.Time
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	validator AuthValidator,
	log *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		sessions:  sessions,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// SignIn はどの失敗でも ErrInvalidCredentials を返す（アカウントの有無を漏らさない）
func (u *AuthUsecase) SignIn(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	//入力検証
	if err := u.validator.ValidateLogin(ctx, email, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		u.log.Error("find user failed", zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if user == nil || !user.IsActive || user.Role != model.RoleAdmin {
		//応答時間でユーザーの有無が分からないようにハッシュ比較はしておく
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
		return nil, ErrInvalidCredentials
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	sess := model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(u.cfg.SessionTTL),
	}
	if err := u.sessions.Save(ctx, sess); err != nil {
		u.log.Error("save session failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
	}

	//last_login更新
	if err := u.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		u.log.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, err := u.issueAccessToken(sess)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken: token,
			ExpiresIn:   int(u.cfg.SessionTTL.Seconds()),
		},
	}, nil
}

// SignOut はセッションを消す。既に無くてもエラーにしない
func (u *AuthUsecase) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if err := u.sessions.Delete(ctx, sessionID); err != nil {
		u.log.Error("delete session failed", zap.Error(err))
		return NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
	}
	return nil
}

// CurrentSession は有効なセッションを返す。無ければ ErrNoSession
func (u *AuthUsecase) CurrentSession(ctx context.Context, sessionID string) (model.Session, error) {
	if sessionID == "" {
		return model.Session{}, ErrNoSession
	}
	s, err := u.sessions.Find(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			u.log.Error("find session failed", zap.Error(err))
		}
		return model.Session{}, ErrNoSession
	}
	if s.Expired(u.now()) {
		return model.Session{}, ErrNoSession
	}
	return s, nil
}

func ToSessionDTO(s model.Session) SessionDTO {
	return SessionDTO{
		User:      UserDTO{ID: s.UserID, Email: s.Email, Role: string(s.Role)},
		ExpiresAt: s.ExpiresAt,
	}
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("woodify-dummy-password"), bcrypt.DefaultCost)
	})
	return dummy
}

// jwt発行。sidでRedisのセッションと紐づける
func (u *AuthUsecase) issueAccessToken(s model.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(s.UserID, 10),
		"sid":  s.ID,
		"role": string(s.Role),
		"iat":  s.CreatedAt.Unix(),
		"exp":  s.ExpiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.cfg.JWTSecret))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
