// Package subscription implements the ONVIF base notification subscription of
// Reolink cameras. A Manager subscribes a callback URL to the camera's event
// service, after which the camera pushes motion notifications to that URL over
// plain HTTP. Leases are short; callers renew them with Renew, scheduled by
// the countdown RenewTimer returns.
//
// A Manager is not safe for concurrent use.
package subscription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds a single soap exchange.
	DefaultTimeout = 30 * time.Second

	// leaseDuration is the termination time requested on Subscribe and
	// Renew. Reolink firmware ignores longer values.
	leaseDuration = 15 * time.Minute

	soapContentType = "application/soap+xml;charset=UTF-8"

	passwordMaxLen = 31
)

// Manager holds the state of at most one event subscription.
type Manager struct {
	host     string
	username string
	password string
	url      string

	httpClient *http.Client
	logger     zerolog.Logger

	// managerURL is the per-subscription endpoint the camera returned,
	// empty when no subscription is active.
	managerURL      string
	terminationTime time.Time

	// timeDiff is the camera clock minus ours, measured on every exchange.
	// The termination time is camera time, so the countdown needs it.
	timeDiff time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.httpClient.Timeout = timeout
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager returns a Manager for the camera's event service. Nothing is
// sent until Subscribe is called. Passwords longer than 31 characters are
// truncated, matching the camera's own limit.
func NewManager(host string, port int, username, password string, opts ...Option) *Manager {
	if len(password) > passwordMaxLen {
		password = password[:passwordMaxLen]
	}

	m := &Manager{
		host:       host,
		username:   username,
		password:   password,
		url:        fmt.Sprintf("http://%s:%d/onvif/event_service", host, port),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log.With().Str("host", host).Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribed reports whether a subscription is currently held.
func (m *Manager) Subscribed() bool {
	return m.managerURL != ""
}

// RenewTimer returns how long the current lease has left, in camera time.
// Zero means the lease is gone (or was never taken) and the caller should
// Subscribe again rather than Renew.
func (m *Manager) RenewTimer() time.Duration {
	if m.managerURL == "" || m.terminationTime.IsZero() {
		return 0
	}
	cameraNow := time.Now().UTC().Add(m.timeDiff)
	remaining := m.terminationTime.Sub(cameraNow)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Subscribe registers callbackURL with the camera's event service. The camera
// will POST notification envelopes to that URL until the lease expires. Any
// previous subscription state is replaced.
func (m *Manager) Subscribe(ctx context.Context, callbackURL string) error {
	token, err := newSecurityToken(m.username, m.password)
	if err != nil {
		return errors.Trace(err)
	}

	envelope, err := subscribeEnvelope(token, callbackURL, leaseDuration)
	if err != nil {
		return errors.Trace(err)
	}

	sent := time.Now().UTC()
	response, err := m.send(ctx, m.url, envelope)
	if err != nil {
		return errors.Annotate(err, "subscribing")
	}

	result, err := parseSubscribeResponse(response)
	if err != nil {
		return errors.Annotate(err, "subscribing")
	}

	m.managerURL = result.Address
	m.terminationTime = result.TerminationTime
	m.timeDiff = result.CurrentTime.Sub(sent)

	m.logger.Debug().
		Str("manager_url", m.managerURL).
		Time("termination", m.terminationTime).
		Dur("time_diff", m.timeDiff).
		Msg("subscribed to event service")
	return nil
}

// Renew extends the current lease by the lease duration. On any failure the
// subscription is dropped locally, so afterwards RenewTimer returns zero and
// the caller must Subscribe again.
//
// The camera's Renew response echoes the initial termination time instead of
// the extended one, so the new termination is computed from the stored value
// rather than taken from the response.
func (m *Manager) Renew(ctx context.Context) error {
	if m.managerURL == "" {
		return errors.NotFoundf("active subscription")
	}

	token, err := newSecurityToken(m.username, m.password)
	if err != nil {
		return errors.Trace(err)
	}

	envelope, err := renewEnvelope(token, m.managerURL, leaseDuration)
	if err != nil {
		return errors.Trace(err)
	}

	sent := time.Now().UTC()
	response, err := m.send(ctx, m.managerURL, envelope)
	if err != nil {
		m.dropSubscription(ctx)
		return errors.Annotate(err, "renewing subscription")
	}

	currentTime, err := parseRenewResponse(response)
	if err != nil {
		m.dropSubscription(ctx)
		return errors.Annotate(err, "renewing subscription")
	}

	m.timeDiff = currentTime.Sub(sent)
	m.terminationTime = m.terminationTime.Add(leaseDuration)

	m.logger.Debug().
		Time("termination", m.terminationTime).
		Dur("time_diff", m.timeDiff).
		Msg("renewed subscription")
	return nil
}

// Unsubscribe cancels the subscription on the camera and clears the local
// state. The local state is cleared even when the camera request fails, so a
// Manager never stays wedged on an unreachable camera.
func (m *Manager) Unsubscribe(ctx context.Context) error {
	if m.managerURL == "" {
		return nil
	}

	var sendErr error
	token, err := newSecurityToken(m.username, m.password)
	if err == nil {
		var envelope string
		envelope, err = unsubscribeEnvelope(token, m.managerURL)
		if err == nil {
			_, sendErr = m.send(ctx, m.managerURL, envelope)
		}
	}
	if err == nil {
		err = sendErr
	}

	m.managerURL = ""
	m.terminationTime = time.Time{}
	m.timeDiff = 0

	if err != nil {
		return errors.Annotate(err, "unsubscribing")
	}
	m.logger.Debug().Msg("unsubscribed from event service")
	return nil
}

// dropSubscription is the failed-renew cleanup: tell the camera if we still
// can, forget the lease either way.
func (m *Manager) dropSubscription(ctx context.Context) {
	if err := m.Unsubscribe(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("cleanup unsubscribe failed")
	}
}

func (m *Manager) send(ctx context.Context, url, envelope string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return "", errors.Trace(err)
	}
	req.Header.Set("Content-Type", soapContentType)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", errors.Trace(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Trace(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("event service returned status %d", resp.StatusCode)
	}
	return string(body), nil
}
