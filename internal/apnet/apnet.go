// Package apnet dials a resolved access point, applying the same
// host:port fallback original_source/src/main.rs used
// (split_once(":").unwrap_or(4070)).
package apnet

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is used when an endpoint string carries no port, or one
// that is not an integer in 1..65535.
const DefaultPort = 4070

// Dial connects to endpoint ("host" or "host:port") over TCP, applying
// DefaultPort when no valid port is present.
func Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	host, port := splitHostPort(endpoint)
	var d net.Dialer
	return d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}

// DialTimeout is a convenience wrapper for callers without their own
// context, mirroring the bounded connect the reference CLI performs.
func DialTimeout(endpoint string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Dial(ctx, endpoint)
}

func splitHostPort(endpoint string) (string, int) {
	host, portStr, found := strings.Cut(endpoint, ":")
	if !found {
		return endpoint, DefaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return host, DefaultPort
	}
	return host, port
}
