package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/store"
	"github.com/enteacher-core/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// DefaultMembership 新用户的会员等级
	DefaultMembership = "free"
	// CodeExpire 验证码有效期
	CodeExpire = 5 * time.Minute
	codeDigits = 6
)

// PrincipalKind 登录主体类型
type PrincipalKind string

const (
	// PrincipalDatabaseUser 数据库中的用户
	PrincipalDatabaseUser PrincipalKind = "database_user"
	// PrincipalBootstrapAdmin 数据库不可用时由安装状态兜底的管理员
	PrincipalBootstrapAdmin PrincipalKind = "bootstrap_admin"
)

// Principal 已认证的主体
type Principal struct {
	Kind     PrincipalKind
	User     *models.User
	Username string
	Role     string
}

// IsAdmin 是否管理员
func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// IsBootstrap 是否兜底管理员
func (p *Principal) IsBootstrap() bool {
	return p.Kind == PrincipalBootstrapAdmin
}

// UserID 数据库用户 ID，兜底管理员没有对应的用户行，ok 为 false
func (p *Principal) UserID() (int64, bool) {
	if p.User == nil {
		return 0, false
	}
	return p.User.ID, true
}

func databasePrincipal(u *models.User) *Principal {
	return &Principal{Kind: PrincipalDatabaseUser, User: u, Username: u.Username, Role: u.Role}
}

func bootstrapPrincipal(username string) *Principal {
	return &Principal{Kind: PrincipalBootstrapAdmin, Username: username, Role: models.RoleAdmin}
}

// Claims JWT 负载
type Claims struct {
	Role      string `json:"role"`
	Bootstrap bool   `json:"bootstrap,omitempty"`
	jwt.RegisteredClaims
}

// TokenResponse 登录结果
type TokenResponse struct {
	AccessToken    string       `json:"access_token"`
	TokenType      string       `json:"token_type"`
	IsDefaultAdmin *bool        `json:"is_default_admin,omitempty"`
	User           *models.User `json:"user,omitempty"`
}

// RegisterRequest 注册参数
type RegisterRequest struct {
	Username            string `json:"username" binding:"required"`
	Password            string `json:"password" binding:"required"`
	Phone               string `json:"phone"`
	MembershipLevel     string `json:"membership_level"`
	MembershipExpiresAt string `json:"membership_expires_at"`
}

// AuthService 认证服务
type AuthService struct {
	db    *gorm.DB
	jwt   config.JWTSettings
	state *store.InstallStateStore
	codes CodeStore
	log   *zap.Logger
	now   func() time.Time
}

// NewAuthService 创建认证服务，db 为 nil 表示数据库不可用
func NewAuthService(db *gorm.DB, jwtSettings config.JWTSettings, state *store.InstallStateStore, codes CodeStore, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if codes == nil {
		codes = NewMemoryCodeStore()
	}
	return &AuthService{
		db:    db,
		jwt:   jwtSettings,
		state: state,
		codes: codes,
		log:   log,
		now:   time.Now,
	}
}

// IssueToken 签发访问令牌
func (s *AuthService) IssueToken(p *Principal) (string, error) {
	now := s.now()
	claims := Claims{
		Role:      p.Role,
		Bootstrap: p.IsBootstrap(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.Expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}

// ParseToken 校验并解析访问令牌
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwt.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *AuthService) tokenFor(p *Principal) (*TokenResponse, error) {
	token, err := s.IssueToken(p)
	if err != nil {
		return nil, fmt.Errorf("签发令牌失败: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// findUser 按字段查询用户，不存在返回 nil
func (s *AuthService) findUser(ctx context.Context, column, value string) (*models.User, error) {
	if s.db == nil {
		return nil, errors.New("数据库未连接")
	}
	var user models.User
	err := s.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login 账号密码登录
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.findUser(ctx, "username", username)
	if err != nil {
		s.log.Warn("查询用户失败", zap.String("username", username), zap.Error(err))
		return nil, ErrDatabaseUnavailable
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return s.tokenFor(databasePrincipal(user))
}

// AdminLogin 管理员登录
// 数据库可用时只认数据库账户；数据库不可用时才接受安装状态中的默认管理员
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*TokenResponse, error) {
	principal, err := s.authenticateAdmin(ctx, username, password)
	if err != nil {
		return nil, err
	}
	resp, err := s.tokenFor(principal)
	if err != nil {
		return nil, err
	}
	isDefault := principal.IsBootstrap()
	resp.IsDefaultAdmin = &isDefault
	return resp, nil
}

func (s *AuthService) authenticateAdmin(ctx context.Context, username, password string) (*Principal, error) {
	user, dbErr := s.findUser(ctx, "username", username)
	if user != nil && utils.CheckPassword(user.PasswordHash, password) {
		if !user.IsAdmin() {
			return nil, ErrForbidden
		}
		return databasePrincipal(user), nil
	}

	if dbErr != nil {
		if admin, ok := s.bootstrapAdmin(); ok && admin.Username == username && admin.Password == password {
			s.log.Warn("数据库不可用，使用安装默认管理员登录", zap.String("username", username), zap.Error(dbErr))
			return bootstrapPrincipal(admin.Username), nil
		}
		s.log.Error("管理员登录时数据库不可用", zap.Error(dbErr))
		return nil, ErrDatabaseUnavailable
	}
	return nil, ErrBadCredentials
}

func (s *AuthService) bootstrapAdmin() (store.AdminCredentials, bool) {
	if s.state == nil {
		return store.AdminCredentials{}, false
	}
	return s.state.Admin()
}

// Register 注册用户，手机号缺省时使用用户名
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	phone := req.Phone
	if phone == "" {
		phone = req.Username
	}

	existing, err := s.findUser(ctx, "username", req.Username)
	if err != nil {
		return nil, ErrDatabaseUnavailable
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	if existing, err = s.findUser(ctx, "phone", phone); err != nil {
		return nil, ErrDatabaseUnavailable
	} else if existing != nil {
		return nil, ErrPhoneExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}
	level := req.MembershipLevel
	if level == "" {
		level = DefaultMembership
	}
	user := &models.User{
		Username:            req.Username,
		Phone:               &phone,
		PasswordHash:        hash,
		Role:                models.RoleUser,
		MembershipLevel:     level,
		MembershipExpiresAt: parseExpiresAt(req.MembershipExpiresAt),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// parseExpiresAt 解析会员到期时间，无法解析时视为未设置
func parseExpiresAt(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// SendCode 生成并暂存手机验证码，未接入短信网关时直接返回验证码
func (s *AuthService) SendCode(ctx context.Context, phone string) (string, error) {
	if !validPhone(phone) {
		return "", ErrPhoneInvalid
	}
	code, err := utils.GenerateCode(codeDigits)
	if err != nil {
		return "", err
	}
	entry := CodeEntry{Code: code, ExpiresAt: s.now().Add(CodeExpire)}
	if err := s.codes.Save(ctx, phone, entry); err != nil {
		return "", fmt.Errorf("保存验证码失败: %w", err)
	}
	return code, nil
}

func validPhone(phone string) bool {
	if len(phone) < 4 || len(phone) > 20 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *AuthService) verifyCode(ctx context.Context, phone, code string) error {
	entry, ok, err := s.codes.Load(ctx, phone)
	if err != nil {
		return fmt.Errorf("读取验证码失败: %w", err)
	}
	if !ok {
		return ErrVerifyCodeMissing
	}
	if s.now().After(entry.ExpiresAt) {
		return ErrVerifyCodeExpired
	}
	if code != entry.Code {
		return ErrVerifyCodeMismatch
	}
	return nil
}

// CodeLogin 验证码登录，手机号未注册时自动创建用户
func (s *AuthService) CodeLogin(ctx context.Context, phone, code string) (*TokenResponse, error) {
	if err := s.verifyCode(ctx, phone, code); err != nil {
		return nil, err
	}
	if err := s.codes.Delete(ctx, phone); err != nil {
		s.log.Warn("删除验证码失败", zap.String("phone", phone), zap.Error(err))
	}

	user, err := s.findUser(ctx, "phone", phone)
	if err != nil {
		s.log.Error("验证码登录查询用户失败", zap.Error(err))
		return nil, ErrDatabaseUnavailable
	}
	if user == nil {
		if user, err = s.createPhoneUser(ctx, phone, code); err != nil {
			s.log.Error("验证码登录创建用户失败", zap.Error(err))
			return nil, ErrDatabaseUnavailable
		}
	}

	resp, err := s.tokenFor(databasePrincipal(user))
	if err != nil {
		return nil, err
	}
	resp.User = user
	return resp, nil
}

func (s *AuthService) createPhoneUser(ctx context.Context, phone, code string) (*models.User, error) {
	hash, err := utils.HashPassword(code)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:        phone,
		Phone:           &phone,
		PasswordHash:    hash,
		Role:            models.RoleUser,
		MembershipLevel: DefaultMembership,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentUser 解析令牌得到当前主体
// 兜底管理员的令牌不查库，只要求用户名仍与安装状态一致
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Bootstrap {
		if admin, ok := s.bootstrapAdmin(); ok && admin.Username == claims.Subject {
			return bootstrapPrincipal(admin.Username), nil
		}
		return nil, ErrTokenInvalid
	}

	user, err := s.findUser(ctx, "username", claims.Subject)
	if err != nil {
		s.log.Warn("解析当前用户时数据库不可用", zap.Error(err))
		return nil, ErrDatabaseUnavailable
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return databasePrincipal(user), nil
}
