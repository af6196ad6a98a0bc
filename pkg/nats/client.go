package nats

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// Base subject constants (without prefix)
const (
	baseSubjectDeploymentStage     = "deployment.stage"
	baseSubjectDeploymentSucceeded = "deployment.succeeded"
	baseSubjectDeploymentFailed    = "deployment.failed"
	baseSubjectBuildLog            = "build.log"
	baseSubjectBuildLogEnd         = "build.log.end"
)

// DefaultPrefix namespaces every subject
const DefaultPrefix = "aether"

// Config selects the NATS servers and NKey identity used for events
type Config struct {
	Servers string
	Seed    string
	Prefix  string
}

// ConfigFromEnv reads AETHER_NATS_URL, AETHER_NATS_SEED and
// AETHER_NATS_PREFIX. It returns nil unless both URL and seed are set.
func ConfigFromEnv() *Config {
	servers := os.Getenv("AETHER_NATS_URL")
	seed := os.Getenv("AETHER_NATS_SEED")
	if servers == "" || seed == "" {
		return nil
	}
	prefix := os.Getenv("AETHER_NATS_PREFIX")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Config{Servers: servers, Seed: seed, Prefix: prefix}
}

// conn is the part of *nats.Conn the client uses
type conn interface {
	Publish(subject string, data []byte) error
	Flush() error
	Drain() error
	Close()
}

// Client publishes deployment events
type Client struct {
	conn   conn
	logger hclog.Logger
	prefix string // Subject prefix for namespace isolation (e.g., "aether" -> "aether.deployment.succeeded")
}

// NewClient connects with NKey authentication
func NewClient(cfg Config, logger hclog.Logger) (*Client, error) {
	if logger == nil {
		logger = hclog.Default()
	}

	// Parse the NKey seed
	kp, err := nkeys.FromSeed([]byte(cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NKey seed: %w", err)
	}

	// Get public key
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	opts := []nats.Option{
		nats.Name("aether-cli"),
		nats.Nkey(pub, func(nonce []byte) ([]byte, error) {
			sig, err := kp.Sign(nonce)
			if err != nil {
				return nil, fmt.Errorf("failed to sign nonce: %w", err)
			}
			return sig, nil
		}),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(cfg.Servers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Debug("connected to NATS", "servers", cfg.Servers, "prefix", cfg.Prefix)

	return newClientWithConn(nc, cfg.Prefix, logger), nil
}

func newClientWithConn(c conn, prefix string, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{conn: c, logger: logger, prefix: prefix}
}

// withPrefix adds the subject prefix if set
func (c *Client) withPrefix(subject string) string {
	if c.prefix == "" {
		return subject
	}
	return c.prefix + "." + subject
}

// PublishStage publishes a stage transition
func (c *Client) PublishStage(event StageEvent) error {
	return c.publish(c.withPrefix(baseSubjectDeploymentStage), event)
}

// PublishDeploymentSucceeded publishes a deployment succeeded event
func (c *Client) PublishDeploymentSucceeded(payload DeploymentEventPayload) error {
	return c.publish(c.withPrefix(baseSubjectDeploymentSucceeded), payload)
}

// PublishDeploymentFailed publishes a deployment failed event
func (c *Client) PublishDeploymentFailed(payload DeploymentEventPayload) error {
	return c.publish(c.withPrefix(baseSubjectDeploymentFailed), payload)
}

// PublishBuildLog publishes one build output line on an app-specific subject
func (c *Client) PublishBuildLog(payload BuildLogPayload) error {
	subject := fmt.Sprintf("%s.%s", c.withPrefix(baseSubjectBuildLog), payload.App)
	return c.publish(subject, payload)
}

// PublishBuildLogEnd signals end of build logs for an app
func (c *Client) PublishBuildLogEnd(payload BuildLogEndPayload) error {
	subject := fmt.Sprintf("%s.%s", c.withPrefix(baseSubjectBuildLogEnd), payload.App)
	return c.publish(subject, payload)
}

func (c *Client) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := c.conn.Publish(subject, data); err != nil {
		c.logger.Error("failed to publish event", "subject", subject, "error", err)
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	// Flush failure is a warning: the message is already buffered
	if err := c.conn.Flush(); err != nil {
		c.logger.Warn("failed to flush NATS connection", "subject", subject, "error", err)
	}

	c.logger.Trace("published event", "subject", subject)
	return nil
}

// Close drains pending messages and closes the connection
func (c *Client) Close() error {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.logger.Debug("NATS drain failed", "error", err)
		}
		c.conn.Close()
	}
	return nil
}
