// Package reolink implements a client for the Reolink camera HTTP/JSON
// command protocol. A Client owns one authenticated session against a single
// camera or NVR channel: it logs in on demand, batches commands, tracks the
// firmware's capability table to pick between protocol variants, and caches
// per-setting snapshots so settings can be changed with the full-object
// patch-and-echo flow the firmware requires.
//
// A Client is not safe for concurrent use; use one Client per camera
// connection and serialize calls through it.
package reolink

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/juju/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Manufacturer is the device vendor name reported for every camera.
const Manufacturer = "Reolink"

// Streaming defaults.
const (
	DefaultStream   = "main"
	DefaultProtocol = "rtmp"
	DefaultChannel  = 0
	DefaultTimeout  = 10 * time.Second
)

// The firmware silently mishandles longer passwords, so anything beyond this
// limit is truncated before use.
const passwordMaxLen = 31

// StreamAuth selects how credentials are embedded in constructed stream URLs.
type StreamAuth int

const (
	// StreamAuthToken puts the session token in the stream URL query.
	StreamAuthToken StreamAuth = iota
	// StreamAuthCredentials puts username and password in the stream URL.
	StreamAuthCredentials
)

// Client is a connection to a single Reolink camera or NVR channel.
type Client struct {
	host     string
	port     int
	username string
	password string
	scheme   string
	url      string

	stream     string
	protocol   string
	channel    int
	streamAuth StreamAuth

	httpClient *http.Client
	logger     zerolog.Logger

	// Session state, owned exclusively by this Client.
	token       string
	leaseExpiry time.Time

	state      *CameraState
	abilities  map[string]int
	apiVersion map[string]int
	ptzSupport bool
}

// Option configures a Client.
type Option func(c *Client)

// WithTimeout sets the total timeout applied to every network call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPS switches the command transport to HTTPS. Camera certificates are
// self-signed, so verification is skipped when insecure is true.
func WithHTTPS(insecure bool) Option {
	return func(c *Client) {
		c.scheme = "https"
		if insecure {
			c.httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStreamingOptions sets the stream ("main" or "sub"), protocol ("rtmp"
// or "rtsp") and channel used for stream URL construction.
func WithStreamingOptions(stream, protocol string, channel int) Option {
	return func(c *Client) {
		c.stream = stream
		c.protocol = protocol
		c.channel = channel
	}
}

// WithStreamAuthentication selects between token and username/password
// authentication in constructed stream URLs.
func WithStreamAuthentication(method StreamAuth) Option {
	return func(c *Client) {
		c.streamAuth = method
	}
}

// NewClient creates a client for the camera at host:port. No network call is
// made until the first operation; login happens on demand.
func NewClient(host string, port int, username, password string, opts ...Option) *Client {
	if len(password) > passwordMaxLen {
		password = password[:passwordMaxLen]
	}

	c := &Client{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		scheme:     "http",
		stream:     DefaultStream,
		protocol:   DefaultProtocol,
		channel:    DefaultChannel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log.With().Str("host", host).Logger(),
		state:      newCameraState(),
		abilities:  make(map[string]int),
		apiVersion: make(map[string]int),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.url = fmt.Sprintf("%s://%s:%d/cgi-bin/api.cgi", c.scheme, c.host, c.port)
	return c
}

// Host returns the camera host.
func (c *Client) Host() string { return c.host }

// Port returns the camera API port.
func (c *Client) Port() int { return c.port }

// Username returns the configured user name.
func (c *Client) Username() string { return c.username }

// Channel returns the configured channel number.
func (c *Client) Channel() int { return c.channel }

// Stream returns the configured stream name.
func (c *Client) Stream() string { return c.stream }

// Protocol returns the configured streaming protocol.
func (c *Client) Protocol() string { return c.protocol }

// UpdateStreamingOptions changes the streaming options on an existing client.
func (c *Client) UpdateStreamingOptions(stream, protocol string, channel int) {
	c.stream = stream
	c.protocol = protocol
	c.channel = channel
}

// Error-body substrings the firmware puts in small HTML responses when the
// credentials are wrong or the session is gone.
var credentialFailureMarkers = [][]byte{
	[]byte("invalid user"),
	[]byte("login failed"),
	[]byte("please login first"),
}

// send issues one transport call. A nil command slice means a bodyless GET
// (used for snapshot retrieval); anything else is POSTed as a JSON command
// array. Unless the batch starts with Login or Logout, a valid session is
// established first and the token is attached as a query parameter.
//
// Transport failures are returned wrapped, never as panics, so callers can
// tell "camera unreachable" from "camera rejected request". A small HTML
// error body is sniffed for the known credential-failure signatures and
// reported as an unauthorized error after clearing the token.
func (c *Client) send(ctx context.Context, commands []Command, params url.Values, expectContentType string) ([]byte, error) {
	if len(commands) == 0 || (commands[0].Cmd != cmdLogin && commands[0].Cmd != cmdLogout) {
		if err := c.ensureLoggedIn(ctx); err != nil {
			return nil, errors.Annotate(err, "not authenticated")
		}
	}

	if params == nil {
		params = url.Values{}
	}
	if c.token != "" {
		params.Set("token", c.token)
	}

	requestURL := c.url + "?" + params.Encode()

	var req *http.Request
	var err error
	if commands == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	} else {
		var body []byte
		body, err = encodeCommands(commands)
		if err != nil {
			return nil, errors.Trace(err)
		}
		c.logger.Debug().Str("cmd", commands[0].Cmd).RawJSON("body", body).Msg("sending command batch")
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, errors.Trace(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Session state is left untouched; the token may still be valid.
		return nil, errors.Annotatef(err, "host %s unreachable", c.host)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotatef(err, "reading response from host %s", c.host)
	}

	contentType := responseMediaType(resp)
	if contentType == "text/html" && len(data) < 500 && isCredentialFailure(data) {
		c.clearToken()
		return nil, errors.Unauthorizedf("host %s rejected the credentials", c.host)
	}

	if expectContentType != "" && contentType != expectContentType {
		return nil, &InvalidContentTypeError{Expected: expectContentType, Actual: contentType}
	}

	return data, nil
}

// command sends a batch and decodes the response array. A body that cannot
// be decoded clears the session token: the protocol gives no way to tell a
// garbage response from a stale-session one, so assume the worst.
func (c *Client) command(ctx context.Context, commands []Command, params url.Values) ([]Response, error) {
	raw, err := c.send(ctx, commands, params, "")
	if err != nil {
		return nil, errors.Trace(err)
	}

	responses, err := decodeResponses(c.host, raw)
	if err != nil {
		c.clearToken()
		return nil, errors.Trace(err)
	}
	return responses, nil
}

// applySetting sends a single write command and checks its acknowledgement.
func (c *Client) applySetting(ctx context.Context, command Command) error {
	c.logger.Debug().Str("cmd", command.Cmd).Msg("sending setting")

	responses, err := c.command(ctx, []Command{command}, cmdParams(command.Cmd))
	if err != nil {
		return errors.Trace(err)
	}
	if len(responses) == 0 {
		return errors.Trace(&DecodeError{Host: c.host, Err: errors.New("empty response array")})
	}

	resp := &responses[0]
	if err := resp.Err(); err != nil {
		return errors.Trace(err)
	}
	if code := resp.rspCode(); code != 200 {
		return errors.Trace(&ApiError{Cmd: command.Cmd, Code: code, Detail: "setting was not applied"})
	}
	return nil
}

// sendSetting runs the write half of the get-patch-set sequence: send the
// patched full settings object, require rspCode 200, then re-fetch that one
// setting so local state reflects what the camera actually applied.
func (c *Client) sendSetting(ctx context.Context, command Command) error {
	if err := c.applySetting(ctx, command); err != nil {
		return errors.Trace(err)
	}

	// The write acknowledgement is not trusted to reflect the new state.
	getCmd := "Get" + command.Cmd[len("Set"):]
	return errors.Trace(c.refreshSetting(ctx, getCmd))
}

// refreshSetting re-fetches a single setting and merges it into local state.
func (c *Client) refreshSetting(ctx context.Context, getCmd string) error {
	command, ok := c.getCommand(getCmd)
	if !ok {
		return errors.NotFoundf("get command %s", getCmd)
	}

	responses, err := c.command(ctx, []Command{command}, cmdParams(getCmd))
	if err != nil {
		return errors.Trace(err)
	}

	for _, warning := range c.mapResponses(responses) {
		c.logger.Warn().Str("cmd", warning.Cmd).Err(warning.Err).Msg("response mapping failed")
	}
	return nil
}

// setSnapshotField patches exactly one field of the cached snapshot for a
// setting and sends the whole object back. The setter fails before any
// network write when the setting was never fetched: the firmware needs the
// complete object and the client cannot construct a minimal diff.
func (c *Client) setSnapshotField(ctx context.Context, setCmd string, snap settingSnapshot, value interface{}, path ...string) error {
	if snap == nil {
		return errors.NotFoundf("cached settings for %s (fetch states first)", setCmd)
	}

	param := cloneSnapshot(snap)
	if !setNested(param, value, path...) {
		return errors.NotFoundf("field %v in cached settings for %s", path, setCmd)
	}

	return errors.Trace(c.sendSetting(ctx, Command{Cmd: setCmd, Action: 0, Param: param}))
}

func boolInt(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}

func cmdParams(cmd string) url.Values {
	return url.Values{"cmd": []string{cmd}}
}

func responseMediaType(resp *http.Response) string {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Header.Get("Content-Type")
	}
	return mediaType
}

func isCredentialFailure(body []byte) bool {
	for _, marker := range credentialFailureMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}
