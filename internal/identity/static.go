package identity

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// StaticProvider хранит текущий токен и профиль клиента в памяти.
// Токен непрозрачен: ядро проверяет исключительно его наличие.
type StaticProvider struct {
	mu    sync.RWMutex
	token string
	user  domain.User
}

// NewStaticProvider создаёт провайдер без активной сессии.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// NewAuthenticated создаёт провайдер с уже установленной сессией.
func NewAuthenticated(token string, user domain.User) *StaticProvider {
	return &StaticProvider{token: token, user: user}
}

// Token возвращает текущий токен и признак его наличия.
func (p *StaticProvider) Token() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.token != ""
}

// CurrentUser возвращает профиль текущего клиента.
func (p *StaticProvider) CurrentUser() domain.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

// SetSession устанавливает токен и профиль после аутентификации.
func (p *StaticProvider) SetSession(token string, user domain.User) {
	p.mu.Lock()
	p.token = token
	p.user = user
	p.mu.Unlock()
}

// Clear сбрасывает сессию (logout или истёкший токен).
func (p *StaticProvider) Clear() {
	p.mu.Lock()
	p.token = ""
	p.user = domain.User{}
	p.mu.Unlock()
}

var _ domain.IdentityProvider = (*StaticProvider)(nil)
