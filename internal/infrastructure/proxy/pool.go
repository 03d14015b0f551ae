package proxy

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// Pool is a static, read-only set of SOCKS5 relays
type Pool struct {
	proxies  []entities.ProxyDescriptor
	rotation bool

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPool creates a pool. With rotation disabled every per-account selector
// keeps the proxy it picked first.
func NewPool(proxies []entities.ProxyDescriptor, rotation bool, logger zerolog.Logger) *Pool {
	logger.Info().
		Int("proxies", len(proxies)).
		Bool("rotation", rotation).
		Msg("Proxy pool initialized")

	return &Pool{
		proxies:  append([]entities.ProxyDescriptor(nil), proxies...),
		rotation: rotation,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select returns a uniformly random proxy, or nil for a direct connection when the pool is empty
func (p *Pool) Select() *entities.ProxyDescriptor {
	if len(p.proxies) == 0 {
		return nil
	}

	p.mu.Lock()
	i := p.rnd.Intn(len(p.proxies))
	p.mu.Unlock()

	proxy := p.proxies[i]
	return &proxy
}

// ForAccount returns the selector one account uses for all of its connections
func (p *Pool) ForAccount() deps.ProxySelector {
	if p.rotation {
		return p
	}
	return &stickySelector{pool: p}
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	return len(p.proxies)
}

// stickySelector picks once and then keeps returning the same proxy
type stickySelector struct {
	pool  *Pool
	once  sync.Once
	proxy *entities.ProxyDescriptor
}

func (s *stickySelector) Select() *entities.ProxyDescriptor {
	s.once.Do(func() {
		s.proxy = s.pool.Select()
	})
	if s.proxy == nil {
		return nil
	}
	proxy := *s.proxy
	return &proxy
}

var _ deps.ProxyPool = (*Pool)(nil)
