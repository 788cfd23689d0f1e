package proxyman

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/proxyman/internal/sessionstore"
)

func makeToken(exp time.Time) string {
	payload := base64.RawURLEncoding.EncodeToString(
		[]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix())))
	return "eyJhbGciOiJSUzI1NiJ9." + payload + ".sig"
}

// seedManager builds a manager with a persisted session, the way a console
// run restores one at startup.
func seedManager(t *testing.T, endpoint, token string, id perm.Identity) *SessionManager {
	t.Helper()
	dir := t.TempDir()
	store := sessionstore.New(dir)
	if err := store.SaveToken(token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if err := store.SaveIdentity(id); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}
	return NewSessionManager(SessionOptions{
		API:   AuthClient{Endpoint: endpoint},
		Store: sessionstore.New(dir),
	})
}

func adminID() perm.Identity {
	return perm.Identity{ID: 1, Email: "admin@example.com", Roles: []string{perm.RoleAdmin}}
}

func TestGatewayRefreshesAndRetriesOnce(t *testing.T) {
	// The seeded token still looks valid locally but the backend has
	// already invalidated it, so only the 401 path can recover.
	stale := makeToken(time.Now().Add(30 * time.Minute))
	fresh := makeToken(time.Now().Add(2 * time.Hour))

	var refreshCalls, resourceCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tokens", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(TokenResult{Token: fresh, Expires: time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		resourceCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+fresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr := seedManager(t, server.URL, stale, adminID())
	client := &http.Client{Transport: NewGateway(mgr, nil, nil)}

	resp, err := client.Get(server.URL + "/protected")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh endpoint called %d times, want 1", got)
	}
	if got := resourceCalls.Load(); got != 2 {
		t.Fatalf("resource endpoint called %d times, want 2", got)
	}
	if token, _ := mgr.Token(); token != fresh {
		t.Fatalf("manager token = %q, want refreshed token", token)
	}
}

func TestGatewaySingleFlightAcrossConcurrentRequests(t *testing.T) {
	stale := makeToken(time.Now().Add(30 * time.Minute))
	fresh := makeToken(time.Now().Add(2 * time.Hour))

	const parallel = 5
	var refreshCalls atomic.Int32
	barrier := make(chan struct{})
	var arrived sync.WaitGroup
	arrived.Add(parallel)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tokens", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(TokenResult{Token: fresh, Expires: time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+fresh {
			_, _ = io.WriteString(w, `{}`)
			return
		}
		// Hold all stale-token requests until every request has arrived,
		// so they fail together against the same expired token.
		arrived.Done()
		<-barrier
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr := seedManager(t, server.URL, stale, adminID())
	client := &http.Client{Transport: NewGateway(mgr, nil, nil)}

	go func() {
		arrived.Wait()
		close(barrier)
	}()

	var wg sync.WaitGroup
	statuses := make([]int, parallel)
	errs := make([]error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(server.URL + "/protected")
			if err != nil {
				errs[i] = err
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i := 0; i < parallel; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if statuses[i] != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, statuses[i])
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh endpoint called %d times, want 1", got)
	}
}

func TestGatewayBoundsRetryToOne(t *testing.T) {
	stale := makeToken(time.Now().Add(30 * time.Minute))
	fresh := makeToken(time.Now().Add(2 * time.Hour))

	var resourceCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tokens", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(TokenResult{Token: fresh, Expires: time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		resourceCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr := seedManager(t, server.URL, stale, adminID())
	client := &http.Client{Transport: NewGateway(mgr, nil, nil)}

	resp, err := client.Get(server.URL + "/protected")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want the propagated 401", resp.StatusCode)
	}
	if got := resourceCalls.Load(); got != 2 {
		t.Fatalf("resource endpoint called %d times, want exactly 2", got)
	}
}

func TestGatewayFailedRefreshClearsSession(t *testing.T) {
	stale := makeToken(time.Now().Add(30 * time.Minute))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tokens", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr := seedManager(t, server.URL, stale, adminID())
	client := &http.Client{Transport: NewGateway(mgr, nil, nil)}

	_, err := client.Get(server.URL + "/protected")
	if err == nil {
		t.Fatalf("expected error after failed refresh")
	}
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("error = %v, want ErrLoginRequired", err)
	}
	if mgr.IsAuthenticated() {
		t.Fatalf("session not cleared after failed refresh")
	}
}

func TestGatewayDoesNotRetryTokenEndpoints(t *testing.T) {
	stale := makeToken(time.Now().Add(30 * time.Minute))

	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tokens", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr := seedManager(t, server.URL, stale, adminID())
	client := &http.Client{Transport: NewGateway(mgr, nil, nil)}

	resp, err := client.Get(server.URL + "/tokens")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 propagated unmodified", resp.StatusCode)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("token endpoint called %d times, want 1", got)
	}
}

func TestGatewayPassesThroughUnauthenticated(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	mgr := NewSessionManager(SessionOptions{
		API:   AuthClient{Endpoint: server.URL},
		Store: sessionstore.New(t.TempDir()),
	})
	client := &http.Client{Transport: NewGateway(mgr, nil, nil)}

	resp, err := client.Get(server.URL + "/protected")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without retry", resp.StatusCode)
	}
	if gotAuth != "" {
		t.Fatalf("anonymous request carried Authorization %q", gotAuth)
	}
}
