package reolink

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
)

const (
	testUsername = "admin"
	testPassword = "secret"
	testToken    = "0763dc73b04d62"
)

// fakeCamera emulates the api.cgi endpoint: token-checked command batches,
// canned per-command value payloads, and the firmware's small HTML error page
// on a bad token.
type fakeCamera struct {
	t      *testing.T
	server *httptest.Server

	// sessionToken is what Login hands out and what later requests must
	// present. Tests rotate it to simulate an expired session.
	sessionToken string

	// values maps a command name to the JSON value payload of a successful
	// response. Commands not present get an ability error.
	values map[string]string

	snapshotContentType string
	snapshotBody        []byte

	requests [][]Command
}

func newFakeCamera(t *testing.T) *fakeCamera {
	f := &fakeCamera{
		t:                   t,
		sessionToken:        testToken,
		values:              make(map[string]string),
		snapshotContentType: "image/jpeg",
		snapshotBody:        []byte{0xff, 0xd8, 0xff, 0xe0},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCamera) stub(cmd, value string) {
	f.values[cmd] = value
}

func (f *fakeCamera) client(opts ...Option) *Client {
	u, err := url.Parse(f.server.URL)
	if err != nil {
		f.t.Fatalf("parsing server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return NewClient(u.Hostname(), port, testUsername, testPassword, opts...)
}

// lastCommand returns the most recently received command with the given name.
func (f *fakeCamera) lastCommand(cmd string) (Command, bool) {
	for i := len(f.requests) - 1; i >= 0; i-- {
		for _, command := range f.requests[i] {
			if command.Cmd == cmd {
				return command, true
			}
		}
	}
	return Command{}, false
}

func (f *fakeCamera) handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if r.Method == http.MethodGet {
		if query.Get("token") != f.sessionToken {
			f.loginPage(w)
			return
		}
		w.Header().Set("Content-Type", f.snapshotContentType)
		w.Write(f.snapshotBody)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var commands []Command
	if err := json.Unmarshal(body, &commands); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.requests = append(f.requests, commands)

	if len(commands) > 0 && commands[0].Cmd == cmdLogin {
		f.handleLogin(w, commands[0])
		return
	}
	if len(commands) > 0 && commands[0].Cmd == cmdLogout {
		f.writeResponses(w, []Response{{Cmd: cmdLogout, Code: 0, Value: json.RawMessage(`{"rspCode":200}`)}})
		return
	}

	if query.Get("token") != f.sessionToken {
		f.loginPage(w)
		return
	}

	responses := make([]Response, 0, len(commands))
	for _, command := range commands {
		responses = append(responses, f.respond(command))
	}
	f.writeResponses(w, responses)
}

func (f *fakeCamera) handleLogin(w http.ResponseWriter, command Command) {
	param, _ := command.Param.(map[string]interface{})
	user, _ := param["User"].(map[string]interface{})
	name, _ := user["userName"].(string)
	password, _ := user["password"].(string)

	if name != testUsername || password != testPassword {
		f.writeResponses(w, []Response{{
			Cmd:   cmdLogin,
			Code:  1,
			Error: &ResponseDetail{RspCode: -7, Detail: "login failed"},
		}})
		return
	}

	value := fmt.Sprintf(`{"Token":{"leaseTime":3600,"name":%q}}`, f.sessionToken)
	f.writeResponses(w, []Response{{Cmd: cmdLogin, Code: 0, Value: json.RawMessage(value)}})
}

func (f *fakeCamera) respond(command Command) Response {
	if value, ok := f.values[command.Cmd]; ok {
		return Response{Cmd: command.Cmd, Code: 0, Value: json.RawMessage(value)}
	}
	return Response{
		Cmd:   command.Cmd,
		Code:  1,
		Error: &ResponseDetail{RspCode: -9, Detail: "ability error"},
	}
}

func (f *fakeCamera) writeResponses(w http.ResponseWriter, responses []Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responses); err != nil {
		f.t.Errorf("encoding fake response: %v", err)
	}
}

func (f *fakeCamera) loginPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body>please login first</body></html>")
}
