package reolink

import (
	"context"
	"net/url"
	"time"

	"github.com/juju/errors"
)

// loginValue is the payload of a successful Login response.
type loginValue struct {
	Token struct {
		Name      string `json:"name"`
		LeaseTime int    `json:"leaseTime"`
	} `json:"Token"`
}

// SessionActive reports whether a login token is held and still within its
// lease. Expiry is lazy: the first read past the lease end clears the token,
// so this must be consulted before every authenticated request.
func (c *Client) SessionActive() bool {
	if c.token != "" && time.Now().Before(c.leaseExpiry) {
		return true
	}

	c.clearToken()
	return false
}

// clearToken drops the session state locally.
func (c *Client) clearToken() {
	c.token = ""
	c.leaseExpiry = time.Time{}
}

// ensureLoggedIn makes sure a session is active, logging in when needed.
func (c *Client) ensureLoggedIn(ctx context.Context) error {
	if c.SessionActive() {
		return nil
	}
	return errors.Trace(c.Login(ctx))
}

// Login sends the plaintext-credential Login command and stores the returned
// token and lease. It never retries: a failed login leaves the session
// logged out and reports the failure to the caller.
func (c *Client) Login(ctx context.Context) error {
	if c.SessionActive() {
		return nil
	}

	c.logger.Debug().Str("user", c.username).Msg("logging in")

	commands := []Command{{
		Cmd:    cmdLogin,
		Action: 0,
		Param: map[string]interface{}{
			"User": map[string]string{
				"userName": c.username,
				"password": c.password,
			},
		},
	}}
	params := url.Values{"cmd": []string{cmdLogin}, "token": []string{"null"}}

	raw, err := c.send(ctx, commands, params, "")
	if err != nil {
		return errors.Trace(err)
	}

	responses, err := decodeResponses(c.host, raw)
	if err != nil {
		return errors.Trace(err)
	}
	if len(responses) == 0 {
		return errors.Trace(&DecodeError{Host: c.host, Err: errors.New("empty login response")})
	}

	resp := &responses[0]
	if resp.Code != 0 {
		detail := ""
		if resp.Error != nil {
			detail = resp.Error.Detail
		}
		return errors.Unauthorizedf("host %s login failed: %s", c.host, detail)
	}

	var value loginValue
	if err := resp.DecodeValue(&value); err != nil {
		return errors.Trace(err)
	}

	c.token = value.Token.Name
	c.leaseExpiry = time.Now().Add(time.Duration(value.Token.LeaseTime) * time.Second)

	c.logger.Debug().
		Time("lease_expiry", c.leaseExpiry).
		Msg("logged in")
	return nil
}

// Logout sends the Logout command with the current token and clears the
// session locally whatever the camera answers. From the client's point of
// view the token must never outlive a logout.
func (c *Client) Logout(ctx context.Context) error {
	commands := []Command{{Cmd: cmdLogout, Action: 0, Param: map[string]interface{}{}}}

	_, err := c.send(ctx, commands, cmdParams(cmdLogout), "")
	c.clearToken()
	if err != nil {
		return errors.Trace(err)
	}
	return nil
}
