package service

import (
	"ChocoWrappers/internal/model"
	"ChocoWrappers/internal/repo"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const adminHashCost = 12

// limiterIdle — через сколько простоя ограничитель клиента можно забыть.
const limiterIdle = 10 * time.Minute

// AdminService — вход администратора. Учётная запись по умолчанию
// создаётся при первом входе с настроенным именем.
type AdminService struct {
	backends        BackendProvider
	defaultUsername string
	defaultPassword string
	hashCost        int
	limiters        *loginLimiters
	logger          *zap.SugaredLogger
}

// NewAdminService создаёт сервис; perMinute ограничивает число попыток входа
// в минуту с одного адреса клиента.
func NewAdminService(backends BackendProvider, defaultUsername, defaultPassword string, perMinute int, logger *zap.SugaredLogger) *AdminService {
	if perMinute <= 0 {
		perMinute = 10
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AdminService{
		backends:        backends,
		defaultUsername: defaultUsername,
		defaultPassword: defaultPassword,
		hashCost:        adminHashCost,
		limiters:        newLoginLimiters(perMinute),
		logger:          logger,
	}
}

type loginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Login проверяет учётные данные; client — адрес клиента для ограничения
// частоты попыток. Неизвестный пользователь и неверный пароль дают одну и ту же
// ошибку ErrInvalidCredentials.
func (s *AdminService) Login(ctx context.Context, client, username, password string) (*model.Admin, error) {
	if err := validateInput(loginInput{Username: username, Password: password}, "username and password are required"); err != nil {
		return nil, err
	}
	if !s.limiters.allow(client, time.Now()) {
		return nil, ErrTooManyAttempts
	}

	return withBackend(ctx, s.backends, s.logger, func(b repo.Backend) (*model.Admin, error) {
		return s.login(ctx, b.Admins(), username, password)
	})
}

func (s *AdminService) login(ctx context.Context, admins repo.AdminStore, username, password string) (*model.Admin, error) {
	admin, err := admins.FindOne(ctx, repo.Filter{Username: username})
	if errors.Is(err, repo.ErrNotFound) && s.defaultUsername != "" && username == s.defaultUsername {
		admin, err = s.provisionDefault(ctx, admins)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *AdminService) provisionDefault(ctx context.Context, admins repo.AdminStore) (*model.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}
	admin := &model.Admin{
		Username:  s.defaultUsername,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := admins.InsertOne(ctx, admin); err != nil {
		return nil, fmt.Errorf("create default admin: %w", err)
	}
	s.logger.Infow("default admin created", "username", admin.Username)
	return admin, nil
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiters — ограничители попыток входа по адресу клиента.
type loginLimiters struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*clientLimiter
}

func newLoginLimiters(perMinute int) *loginLimiters {
	return &loginLimiters{perMinute: perMinute, clients: map[string]*clientLimiter{}}
}

func (l *loginLimiters) allow(client string, now time.Time) bool {
	if client == "" {
		client = anonymousUser
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[client]
	if !ok {
		l.pruneLocked(now)
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute),
		}
		l.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *loginLimiters) pruneLocked(now time.Time) {
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) > limiterIdle {
			delete(l.clients, k)
		}
	}
}
