package netio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultPort 默认端口
const DefaultPort = 7777

var (
	// ErrInvalidHost 主机参数无效
	ErrInvalidHost = errors.New("invalid host argument")
	// ErrConnect 无法连接到对端
	ErrConnect = errors.New("unable to connect")
	// ErrListen 无法监听端口
	ErrListen = errors.New("unable to listen")
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// ValidateHost 校验主机参数：IP 地址或合法的主机名，不允许附带端口
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidHost)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > 253 {
		return fmt.Errorf("%w '%s'", ErrInvalidHost, host)
	}

	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if len(label) == 0 || len(label) > 63 {
			return fmt.Errorf("%w '%s'", ErrInvalidHost, host)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("%w '%s'", ErrInvalidHost, host)
		}
		for _, c := range label {
			if !isHostChar(c) {
				return fmt.Errorf("%w '%s'", ErrInvalidHost, host)
			}
		}
	}
	return nil
}

func isHostChar(c rune) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_'
}

// ValidatePort 校验端口范围，allowZero 为 true 时允许由系统分配
func ValidatePort(port int, allowZero bool) error {
	if port == 0 && allowZero {
		return nil
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}

// Dial 连接到 host:port
func Dial(ctx context.Context, host string, port int, timeout time.Duration) (*net.TCPConn, error) {
	if err := ValidateHost(host); err != nil {
		return nil, err
	}
	if err := ValidatePort(port, false); err != nil {
		return nil, fmt.Errorf("%w to host '%s': %w", ErrConnect, host, err)
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w to host '%s' on port '%d': %w", ErrConnect, host, port, err)
	}

	tc := conn.(*net.TCPConn)
	tuneSock(tc)
	return tc, nil
}

// Listen 在所有地址的 port 上监听，port 为 0 时由系统分配
func Listen(port int) (*net.TCPListener, error) {
	if err := ValidatePort(port, true); err != nil {
		return nil, fmt.Errorf("%w on port '%d': %w", ErrListen, port, err)
	}
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("%w on port '%d': %w", ErrListen, port, err)
	}
	return ln, nil
}

// AcceptOne 阻塞直到接受一个连接
//
// 临时性错误按指数退避（5ms 起，上限 1s）重试；监听器被关闭时返回 ErrListen。
func AcceptOne(ln net.Listener, logger *slog.Logger) (net.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err == nil {
			if tc, ok := conn.(*net.TCPConn); ok {
				tuneSock(tc)
			}
			logger.Info("connection accepted", "remote", conn.RemoteAddr().String())
			return conn, nil
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, fmt.Errorf("%w: %w", ErrListen, err)
		}

		if delay == 0 {
			delay = minAcceptDelay
		} else {
			delay = min(delay*2, maxAcceptDelay)
		}
		logger.Warn("accept failed, retrying", "error", err, "delay", delay)
		time.Sleep(delay)
	}
}

// Drain 在半关闭之后等待对端关闭连接，超时后直接返回
func Drain(conn net.Conn, timeout time.Duration) {
	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}
	_, _ = io.Copy(io.Discard, conn)
}

func tuneSock(conn *net.TCPConn) {
	_ = conn.SetNoDelay(true)
}
