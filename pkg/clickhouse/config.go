package clickhouse

import (
	"net"
	"strconv"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

// ClientOption configures NewClient.
type ClientOption func(*settings)

type settings struct {
	host    string
	port    int
	useHTTP bool
	opts    ch.Options
	server  ch.Settings
}

func defaultSettings() *settings {
	return &settings{
		opts: ch.Options{
			Auth:            ch.Auth{Database: "default", Username: "default"},
			DialTimeout:     5 * time.Second,
			ReadTimeout:     10 * time.Second,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		server: ch.Settings{},
	}
}

// options resolves the final clickhouse-go options. The port defaults by protocol.
func (s *settings) options() *ch.Options {
	o := s.opts
	port := s.port
	o.Protocol = ch.Native
	if s.useHTTP {
		o.Protocol = ch.HTTP
	}
	if port == 0 {
		port = 9000
		if s.useHTTP {
			port = 8123
		}
	}
	o.Addr = []string{net.JoinHostPort(s.host, strconv.Itoa(port))}
	if len(s.server) > 0 {
		o.Settings = s.server
	}
	return &o
}

func WithHost(host string) ClientOption {
	return func(s *settings) { s.host = host }
}

func WithPort(port int) ClientOption {
	return func(s *settings) { s.port = port }
}

func WithDatabase(database string) ClientOption {
	return func(s *settings) {
		if database != "" {
			s.opts.Auth.Database = database
		}
	}
}

func WithCredentials(user, password string) ClientOption {
	return func(s *settings) {
		if user != "" {
			s.opts.Auth.Username = user
		}
		s.opts.Auth.Password = password
	}
}

func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(s *settings) {
		s.opts.MaxOpenConns = maxOpen
		s.opts.MaxIdleConns = maxIdle
	}
}

// WithTimeouts sets the dial and read timeouts. Zero keeps the default.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(s *settings) {
		if dial > 0 {
			s.opts.DialTimeout = dial
		}
		if read > 0 {
			s.opts.ReadTimeout = read
		}
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) ClientOption {
	return func(s *settings) { s.useHTTP = useHTTP }
}

// WithAsyncInsert lets the server buffer small inserts. wait makes the
// insert return only after the buffer is flushed.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(s *settings) {
		if !enabled {
			delete(s.server, "async_insert")
			delete(s.server, "wait_for_async_insert")
			return
		}
		s.server["async_insert"] = 1
		if wait {
			s.server["wait_for_async_insert"] = 1
		} else {
			s.server["wait_for_async_insert"] = 0
		}
	}
}

func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(s *settings) {
		if d > 0 {
			s.server["max_execution_time"] = int(d.Seconds())
		}
	}
}
