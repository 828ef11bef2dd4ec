package ngrok

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kismet/internal/config"

	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok/v2"
)

// ErrMissingAuthToken is returned when the tunnel is enabled without a token.
var ErrMissingAuthToken = errors.New("ngrok auth token not found, set NGROK_AUTHTOKEN in .env or config")

// Service represents the ngrok tunnel service. A nil *Service is a disabled
// tunnel and every method is a no-op on it.
type Service struct {
	config *config.NgrokConfig
	logger logrus.FieldLogger
	agent  ngrok.Agent
	tunnel ngrok.EndpointForwarder
}

// NewService creates a new ngrok service instance
func NewService(cfg *config.NgrokConfig, logger logrus.FieldLogger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	authToken := cfg.AuthToken
	if authToken == "" {
		authToken = os.Getenv(config.EnvNgrokToken)
	}
	if authToken == "" {
		return nil, ErrMissingAuthToken
	}

	agent, err := ngrok.NewAgent(ngrok.WithAuthtoken(authToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create ngrok agent: %w", err)
	}

	return &Service{
		config: cfg,
		logger: logger.WithField("component", "ngrok"),
		agent:  agent,
	}, nil
}

// StartTunnel opens the public endpoint. Traffic is forwarded lazily, so the
// tunnel can be opened before the local listener is up and its URL used as
// the share base.
func (s *Service) StartTunnel(ctx context.Context, localAddress string) error {
	if s == nil {
		return nil
	}

	s.logger.Info("Starting ngrok tunnel")

	var endpointOpts []ngrok.EndpointOption
	if s.config.Domain != "" {
		endpointOpts = append(endpointOpts, ngrok.WithURL(s.config.Domain))
	}

	tunnel, err := s.agent.Forward(ctx, ngrok.WithUpstream(localAddress), endpointOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ngrok tunnel: %w", err)
	}
	s.tunnel = tunnel

	s.logger.WithFields(logrus.Fields{
		"public_url": tunnel.URL().String(),
		"upstream":   localAddress,
	}).Info("Ngrok tunnel active")

	return nil
}

// GetPublicURL returns the public URL of the tunnel
func (s *Service) GetPublicURL() string {
	if s == nil || s.tunnel == nil {
		return ""
	}
	return s.tunnel.URL().String()
}

// ShareBaseURL returns the base URL share links should point at: the tunnel
// URL when the tunnel is up and configured to be used, fallback otherwise.
func (s *Service) ShareBaseURL(fallback string) string {
	if s == nil || !s.config.UsePublicURL {
		return fallback
	}
	if u := s.GetPublicURL(); u != "" {
		return u
	}
	return fallback
}

// Stop stops the ngrok tunnel
func (s *Service) Stop() error {
	if s == nil || s.tunnel == nil {
		return nil
	}

	s.logger.Info("Stopping ngrok tunnel")
	return s.tunnel.Close()
}

// Done is closed when the tunnel goes away. It is nil, and so never ready,
// when the tunnel is disabled or not started.
func (s *Service) Done() <-chan struct{} {
	if s == nil || s.tunnel == nil {
		return nil
	}
	return s.tunnel.Done()
}
