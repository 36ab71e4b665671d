package subscription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeEventService emulates the camera's event endpoint, including the
// firmware bug where a Renew response echoes the initial termination time
// instead of the extended one.
type fakeEventService struct {
	t      *testing.T
	server *httptest.Server

	// clockOffset shifts the camera clock relative to the local one.
	clockOffset time.Duration

	failRenew bool

	subscribed   bool
	termination  time.Time
	renews       int
	unsubscribes int
}

func newFakeEventService(t *testing.T) *fakeEventService {
	f := &fakeEventService{t: t}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeEventService) manager() *Manager {
	u, err := url.Parse(f.server.URL)
	if err != nil {
		f.t.Fatalf("parsing server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	return NewManager(u.Hostname(), port, "admin", "secret", WithLogger(zerolog.Nop()))
}

func (f *fakeEventService) now() time.Time {
	return time.Now().UTC().Add(f.clockOffset)
}

func (f *fakeEventService) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	request := string(body)

	switch {
	case strings.Contains(request, "<b:Subscribe>"):
		f.subscribed = true
		f.termination = f.now().Add(leaseDuration)
		fmt.Fprintf(w, `<Envelope><Body><SubscribeResponse>
			<wsa5:Address>%s/onvif/Subscription?Idx=0</wsa5:Address>
			<wsnt:CurrentTime>%s</wsnt:CurrentTime>
			<wsnt:TerminationTime>%s</wsnt:TerminationTime>
			</SubscribeResponse></Body></Envelope>`,
			f.server.URL,
			f.now().Format(responseTimeFormat),
			f.termination.Format(responseTimeFormat))

	case strings.Contains(request, "<b:Renew>"):
		f.renews++
		if f.failRenew {
			http.Error(w, "renew refused", http.StatusBadRequest)
			return
		}
		// The echoed termination time is the stale initial one.
		fmt.Fprintf(w, `<Envelope><Body><RenewResponse>
			<wsnt:CurrentTime>%s</wsnt:CurrentTime>
			<wsnt:TerminationTime>%s</wsnt:TerminationTime>
			</RenewResponse></Body></Envelope>`,
			f.now().Format(responseTimeFormat),
			f.termination.Format(responseTimeFormat))

	case strings.Contains(request, "<b:Unsubscribe/>"):
		f.subscribed = false
		f.unsubscribes++
		fmt.Fprint(w, `<Envelope><Body><UnsubscribeResponse/></Body></Envelope>`)

	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func within(d, want, tolerance time.Duration) bool {
	diff := d - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func TestSubscribe(t *testing.T) {
	service := newFakeEventService(t)
	m := service.manager()

	if m.Subscribed() {
		t.Fatal("fresh manager reports a subscription")
	}
	if m.RenewTimer() != 0 {
		t.Fatal("fresh manager reports a lease countdown")
	}

	if err := m.Subscribe(context.Background(), "http://192.168.1.50:8080/notify"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if !m.Subscribed() || !service.subscribed {
		t.Fatal("subscription not established")
	}
	if !strings.Contains(m.managerURL, "/onvif/Subscription") {
		t.Fatalf("manager URL not taken from the response: %q", m.managerURL)
	}
	if !within(m.RenewTimer(), leaseDuration, 5*time.Second) {
		t.Fatalf("RenewTimer() = %v, want about %v", m.RenewTimer(), leaseDuration)
	}
}

func TestRenewExtendsStoredTermination(t *testing.T) {
	service := newFakeEventService(t)
	m := service.manager()

	if err := m.Subscribe(context.Background(), "http://192.168.1.50:8080/notify"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := m.Renew(context.Background()); err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if service.renews != 1 {
		t.Fatalf("camera saw %d renews, want 1", service.renews)
	}

	// The response echoed the initial termination; the countdown must
	// reflect the stored termination plus one lease anyway.
	if !within(m.RenewTimer(), 2*leaseDuration, 5*time.Second) {
		t.Fatalf("RenewTimer() = %v, want about %v", m.RenewTimer(), 2*leaseDuration)
	}
}

func TestRenewWithoutSubscription(t *testing.T) {
	service := newFakeEventService(t)
	m := service.manager()

	if err := m.Renew(context.Background()); err == nil {
		t.Fatal("expected error renewing without a subscription")
	}
	if service.renews != 0 {
		t.Fatal("renew without subscription reached the camera")
	}
}

func TestFailedRenewDropsSubscription(t *testing.T) {
	service := newFakeEventService(t)
	m := service.manager()

	if err := m.Subscribe(context.Background(), "http://192.168.1.50:8080/notify"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	service.failRenew = true
	if err := m.Renew(context.Background()); err == nil {
		t.Fatal("expected renew failure")
	}

	if m.Subscribed() {
		t.Fatal("failed renew left the subscription active")
	}
	if m.RenewTimer() != 0 {
		t.Fatalf("RenewTimer() = %v after a failed renew, want 0", m.RenewTimer())
	}
	if service.unsubscribes != 1 {
		t.Fatal("failed renew did not attempt a camera-side unsubscribe")
	}
}

func TestUnsubscribeClearsStateOnTransportFailure(t *testing.T) {
	service := newFakeEventService(t)
	m := service.manager()

	if err := m.Subscribe(context.Background(), "http://192.168.1.50:8080/notify"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	service.server.Close()
	if err := m.Unsubscribe(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
	if m.Subscribed() {
		t.Fatal("local state survived a failed unsubscribe")
	}
}

func TestRenewTimerUsesCameraClock(t *testing.T) {
	service := newFakeEventService(t)
	// Camera clock runs five minutes ahead of ours.
	service.clockOffset = 5 * time.Minute
	m := service.manager()

	if err := m.Subscribe(context.Background(), "http://192.168.1.50:8080/notify"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Termination is camera-now + lease; our clock is behind, so only a
	// skew-corrected countdown reads the full lease.
	if !within(m.RenewTimer(), leaseDuration, 5*time.Second) {
		t.Fatalf("RenewTimer() = %v, want about %v despite clock skew", m.RenewTimer(), leaseDuration)
	}
	if !within(m.timeDiff, 5*time.Minute, 5*time.Second) {
		t.Fatalf("timeDiff = %v, want about 5m", m.timeDiff)
	}
}

func TestPasswordTruncatedTo31Chars(t *testing.T) {
	long := strings.Repeat("p", 40)
	m := NewManager("cam", 8000, "admin", long, WithLogger(zerolog.Nop()))
	if len(m.password) != passwordMaxLen {
		t.Fatalf("password length %d, want %d", len(m.password), passwordMaxLen)
	}
}
