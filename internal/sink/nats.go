package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

// DefaultNATSSubject is where documents are published.
const DefaultNATSSubject = "entra.signinlogs"

type NATSConfig struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	Subject  string        `mapstructure:"subject" yaml:"subject"`
	Name     string        `mapstructure:"name" yaml:"name"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Username string        `mapstructure:"username" yaml:"username"`
	Password string        `mapstructure:"password" yaml:"password"`
	Token    string        `mapstructure:"token" yaml:"token"`
}

// Publisher is the subset of *nats.Conn the sink uses.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSSink publishes one message per document.
type NATSSink struct {
	conn    Publisher
	subject string
}

// NewNATSSink connects to the server in cfg.
func NewNATSSink(cfg NATSConfig) (*NATSSink, error) {
	if cfg.Name == "" {
		cfg.Name = "entraseed"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSSinkWithPublisher(conn, cfg.Subject), nil
}

// NewNATSSinkWithPublisher wraps an existing connection.
func NewNATSSinkWithPublisher(conn Publisher, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultNATSSubject
	}
	return &NATSSink{conn: conn, subject: subject}
}

func (s *NATSSink) Name() string { return NameNATS }

func (s *NATSSink) Write(ctx context.Context, events []signin.Event) (int, error) {
	sent := 0
	for i := range events {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		data, err := json.Marshal(&events[i])
		if err != nil {
			return sent, fmt.Errorf("marshal event %s: %w", events[i].Event.ID, err)
		}
		if err := s.conn.Publish(s.subject, data); err != nil {
			return sent, fmt.Errorf("publish to %s: %w", s.subject, err)
		}
		sent++
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return sent, fmt.Errorf("flush: %w", err)
	}
	return sent, nil
}

func (s *NATSSink) Close() error {
	s.conn.Close()
	return nil
}
