package reolink

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/juju/errors"
	"github.com/rs/zerolog"
)

func TestLoginStoresSession(t *testing.T) {
	cam := newFakeCamera(t)
	c := cam.client()

	if c.SessionActive() {
		t.Fatal("fresh client reports active session")
	}

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !c.SessionActive() {
		t.Fatal("session not active after login")
	}
	if c.token != testToken {
		t.Fatalf("stored token %q, want %q", c.token, testToken)
	}
}

func TestLoginIdempotentWhileSessionActive(t *testing.T) {
	cam := newFakeCamera(t)
	c := cam.client()

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	before := len(cam.requests)

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if len(cam.requests) != before {
		t.Fatal("second login hit the network despite an active session")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	cam := newFakeCamera(t)

	u, _ := url.Parse(cam.server.URL)
	port, _ := strconv.Atoi(u.Port())
	c := NewClient(u.Hostname(), port, testUsername, "wrong", WithLogger(zerolog.Nop()))

	err := c.Login(context.Background())
	if err == nil {
		t.Fatal("expected login failure")
	}
	if !errors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if c.SessionActive() {
		t.Fatal("session active after failed login")
	}
}

func TestLogoutClearsSessionUnconditionally(t *testing.T) {
	cam := newFakeCamera(t)
	c := cam.client()

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Kill the transport, then log out. The request fails but the local
	// session must still be gone.
	cam.server.Close()

	if err := c.Logout(context.Background()); err == nil {
		t.Fatal("expected transport error from logout")
	}
	if c.SessionActive() {
		t.Fatal("session still active after logout")
	}
}

func TestOperationsLoginOnDemand(t *testing.T) {
	cam := newFakeCamera(t)
	cam.stub(cmdGetMdState, `{"state":1}`)
	c := cam.client()

	motion, err := c.GetMotionState(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !motion {
		t.Fatal("expected motion state true")
	}
	if !c.SessionActive() {
		t.Fatal("operation did not establish a session")
	}
	if _, ok := cam.lastCommand(cmdLogin); !ok {
		t.Fatal("no login request observed before the operation")
	}
}

func TestExpiredSessionIsRenewed(t *testing.T) {
	cam := newFakeCamera(t)
	cam.stub(cmdGetMdState, `{"state":0}`)
	c := cam.client()

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Force the lazy expiry path.
	c.leaseExpiry = c.leaseExpiry.AddDate(0, 0, -1)
	if c.SessionActive() {
		t.Fatal("session should have lapsed")
	}
	if c.token != "" {
		t.Fatal("lapsed session kept its token")
	}

	if _, err := c.GetMotionState(context.Background()); err != nil {
		t.Fatalf("operation after lapse failed: %v", err)
	}
	if !c.SessionActive() {
		t.Fatal("operation did not re-login after lapse")
	}
}
