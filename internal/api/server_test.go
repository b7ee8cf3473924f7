package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arung-agamani/denpa-pipeline/internal/auth"
	"github.com/arung-agamani/denpa-pipeline/internal/diag"
	"github.com/arung-agamani/denpa-pipeline/internal/trackdb"
)

type fakeController struct {
	played, paused, stopped bool
	shuffle, repeat, muted  bool
}

func (f *fakeController) Play() error          { f.played = true; return nil }
func (f *fakeController) Pause()               { f.paused = true }
func (f *fakeController) Stop()                { f.stopped = true }
func (f *fakeController) Next() error          { return nil }
func (f *fakeController) Previous() error      { return nil }
func (f *fakeController) SeekSeconds(s float64) error { return nil }
func (f *fakeController) SetMute(on bool)      { f.muted = on }
func (f *fakeController) SetShuffle(on bool)   { f.shuffle = on }
func (f *fakeController) SetRepeat(on bool)    { f.repeat = on }
func (f *fakeController) Status() Status       { return Status{State: "running"} }

func newTestServer(t *testing.T) (*Server, *fakeController, string) {
	t.Helper()
	a := auth.New(auth.Config{Username: "op", Password: "hunter2", JWTSecret: "test-secret-test-secret-test-secret"})
	ctrl := &fakeController{}
	tracks := trackdb.NewDatabase()
	reg := diag.NewRegistry()
	srv := New(":0", ctrl, tracks, reg, a)

	token, err := a.CreateToken("op")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	return srv, ctrl, token
}

func doRequest(srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, r)
	return w
}

func TestGuardedRouteRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doRequest(srv, http.MethodGet, "/api/status", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestTransportPlayInvokesController(t *testing.T) {
	srv, ctrl, token := newTestServer(t)
	w := doRequest(srv, http.MethodPost, "/api/transport/play", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !ctrl.played {
		t.Fatal("expected Play to be invoked")
	}
}

func TestPlaylistInsertAndList(t *testing.T) {
	srv, _, token := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/playlist", token, map[string]any{
		"uri": "file:///a.wav", "metadata": "", "insertAfterId": 0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("insert: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(srv, http.MethodGet, "/api/playlist", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var resp struct {
		Tracks []trackJSON `json:"tracks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Tracks) != 1 || resp.Tracks[0].URI != "file:///a.wav" {
		t.Fatalf("unexpected tracks: %+v", resp.Tracks)
	}
}

func TestLoginThenVerify(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "op", "password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a non-empty token")
	}

	w = doRequest(srv, http.MethodGet, "/api/auth/verify", resp.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", w.Code)
	}
}
