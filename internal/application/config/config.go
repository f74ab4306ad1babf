package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"8080"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:8080"`

	// UploadDir holds one-shot drop files until they are claimed or expire.
	UploadDir string        `env:"UPLOAD_DIR" envDefault:"temp_uploads"`
	DropTTL   time.Duration `env:"DROP_TTL" envDefault:"1h"`

	// PaymentURL, when set, is returned instead of a fresh key from
	// POST /keys/generate so the frontend can redirect to checkout.
	PaymentURL string `env:"PAYMENT_URL"`

	// SendQueueSize bounds the per-connection outbound queue. A session
	// whose queue overflows is disconnected rather than stalling its room.
	SendQueueSize int `env:"SEND_QUEUE_SIZE" envDefault:"256"`

	StunURL string `env:"STUN_URL" envDefault:"stun:stun.l.google.com:19302"`

	ICEServers []webrtc.ICEServer

	Turn     TurnConfig
	Postgres PostgresConfig
}

type TurnConfig struct {
	Host     string `env:"TURN_HOST"`
	Username string `env:"TURN_USERNAME"`
	Password string `env:"TURN_PASSWORD"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"lepko"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	c.ICEServers = []webrtc.ICEServer{
		{URLs: []string{c.StunURL}},
	}

	// TURN is optional: calls still work on networks where STUN suffices.
	if c.Turn.Host != "" {
		c.ICEServers = append(c.ICEServers,
			webrtc.ICEServer{
				URLs:       []string{fmt.Sprintf("turn:%s?transport=udp", c.Turn.Host)},
				Username:   c.Turn.Username,
				Credential: c.Turn.Password,
			},
			webrtc.ICEServer{
				URLs:       []string{fmt.Sprintf("turn:%s?transport=tcp", c.Turn.Host)},
				Username:   c.Turn.Username,
				Credential: c.Turn.Password,
			},
		)
	}

	return &c, nil
}
