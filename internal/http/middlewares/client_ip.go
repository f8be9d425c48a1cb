package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver obtiene la IP del cliente. X-Forwarded-For solo se mira cuando
// el peer directo es un proxy confiable; en ese caso gana el hop no confiable más a
// la derecha. Un resolver nil usa siempre RemoteAddr.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// NewClientIPResolver acepta IPs sueltas o CIDRs ("10.0.0.0/8", "::1").
func NewClientIPResolver(trusted []string) (*ClientIPResolver, error) {
	c := &ClientIPResolver{}
	for _, raw := range trusted {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := ParseTrustedProxy(raw)
		if err != nil {
			return nil, err
		}
		c.trusted = append(c.trusted, p)
	}
	return c, nil
}

// ParseTrustedProxy parsea una entrada de trusted proxies.
func ParseTrustedProxy(raw string) (netip.Prefix, error) {
	if strings.Contains(raw, "/") {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		return p.Masked(), nil
	}
	a, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("trusted proxy %q: %w", raw, err)
	}
	a = a.Unmap()
	return netip.PrefixFrom(a, a.BitLen()), nil
}

// ClientIP devuelve la IP que se usa para logs y rate limit.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !c.isTrusted(peer) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// hop ilegible: no se sigue confiando en lo que está a su izquierda
			break
		}
		if !c.isTrusted(ip) {
			return ip.Unmap().String()
		}
		peer = ip
	}
	return peer.Unmap().String()
}

// RateKey limita por IP de cliente y path.
func (c *ClientIPResolver) RateKey(r *http.Request) string {
	return c.ClientIP(r) + " " + r.URL.Path
}

func (c *ClientIPResolver) isTrusted(ip netip.Addr) bool {
	if c == nil {
		return false
	}
	ip = ip.Unmap()
	for _, p := range c.trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
