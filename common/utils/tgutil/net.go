package tgutil

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gotd/td/telegram/dcs"
	"golang.org/x/net/proxy"
)

func init() {
	proxy.RegisterDialerType("http", newConnectDialer)
	proxy.RegisterDialerType("https", newConnectDialer)
}

// connectDialer tunnels through an HTTP proxy with CONNECT. An https proxy
// URL means TLS to the proxy itself.
type connectDialer struct {
	proxyURL *url.URL
	forward  proxy.Dialer
}

func newConnectDialer(u *url.URL, forward proxy.Dialer) (proxy.Dialer, error) {
	return &connectDialer{proxyURL: u, forward: forward}, nil
}

func (d *connectDialer) Dial(network, addr string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, addr)
}

func (d *connectDialer) proxyAddr() string {
	if d.proxyURL.Port() != "" {
		return d.proxyURL.Host
	}
	port := "80"
	if d.proxyURL.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(d.proxyURL.Hostname(), port)
}

func (d *connectDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var conn net.Conn
	var err error
	if cd, ok := d.forward.(proxy.ContextDialer); ok {
		conn, err = cd.DialContext(ctx, "tcp", d.proxyAddr())
	} else {
		conn, err = d.forward.Dial("tcp", d.proxyAddr())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to proxy: %w", err)
	}
	if d.proxyURL.Scheme == "https" {
		tconn := tls.Client(conn, &tls.Config{ServerName: d.proxyURL.Hostname()})
		if err := tconn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("proxy tls handshake failed: %w", err)
		}
		conn = tconn
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if u := d.proxyURL.User; u != nil {
		password, _ := u.Password()
		creds := base64.StdEncoding.EncodeToString([]byte(u.Username() + ":" + password))
		req.Header.Set("Proxy-Authorization", "Basic "+creds)
	}
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to write CONNECT request: %w", err)
	}
	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read CONNECT response: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("proxy CONNECT failed with status: %s", resp.Status)
	}
	if br.Buffered() > 0 {
		return &bufferedConn{Conn: conn, r: br}, nil
	}
	return conn, nil
}

// bufferedConn keeps bytes the proxy sent right after its CONNECT reply.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func newProxyDialer(rawURL string) (proxy.ContextDialer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, err
	}
	cd, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("%s proxy dialer does not support context", u.Scheme)
	}
	return cd, nil
}

// NewProxyResolver builds the MTProto resolver. tgProxy takes precedence
// over the global proxy. Both may be empty.
func NewProxyResolver(globalProxy, tgProxy string) (dcs.Resolver, error) {
	proxyURL := tgProxy
	if proxyURL == "" {
		proxyURL = globalProxy
	}
	if proxyURL == "" {
		return dcs.DefaultResolver(), nil
	}
	dialer, err := newProxyDialer(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxyURL, err)
	}
	return dcs.Plain(dcs.PlainOptions{Dial: dialer.DialContext}), nil
}
