package telegram

import (
	"fmt"
	"net"
	"time"

	"github.com/gotd/td/telegram/dcs"
	"golang.org/x/net/proxy"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// newProxyResolver routes MTProto connections through a SOCKS5 relay.
// Returns nil for a direct connection.
func newProxyResolver(p *entities.ProxyDescriptor, dialTimeout time.Duration) (dcs.Resolver, error) {
	if p == nil {
		return nil, nil
	}

	var auth *proxy.Auth
	if p.Username != "" || p.Password != "" {
		auth = &proxy.Auth{User: p.Username, Password: p.Password}
	}

	dialer, err := proxy.SOCKS5("tcp", p.Addr(), auth, &net.Dialer{Timeout: dialTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create socks5 dialer for %s: %w", p, err)
	}

	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer for %s does not support contexts", p)
	}

	return dcs.Plain(dcs.PlainOptions{Dial: contextDialer.DialContext}), nil
}
