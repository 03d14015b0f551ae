package entities

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ProxyDescriptor is a SOCKS5 relay. Always passed by value.
type ProxyDescriptor struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Addr returns host:port suitable for dialing
func (p ProxyDescriptor) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// String hides credentials
func (p ProxyDescriptor) String() string {
	return p.Addr()
}

// ParseProxy parses a "host:port:user:pass" entry
func ParseProxy(s string) (ProxyDescriptor, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return ProxyDescriptor{}, fmt.Errorf("proxy %q: expected host:port:user:pass", s)
	}

	host := parts[0]
	if host == "" {
		return ProxyDescriptor{}, fmt.Errorf("proxy %q: empty host", s)
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil || port <= 0 || port > 65535 {
		return ProxyDescriptor{}, fmt.Errorf("proxy %q: invalid port", s)
	}

	return ProxyDescriptor{
		Host:     host,
		Port:     port,
		Username: parts[2],
		Password: parts[3],
	}, nil
}

// ParseProxyList parses a comma-separated proxy list. Empty entries are skipped.
func ParseProxyList(s string) ([]ProxyDescriptor, error) {
	var proxies []ProxyDescriptor
	for _, entry := range strings.Split(s, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		p, err := ParseProxy(entry)
		if err != nil {
			return nil, err
		}
		proxies = append(proxies, p)
	}
	return proxies, nil
}
