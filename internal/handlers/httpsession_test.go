package handlers

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"reflect"
	"testing"
	"time"
)

func TestHTTPSessionHandler_ExtractStripsAuthorization(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	base, _ := url.Parse("https://api.example.com")
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "abc123"}})

	sess := &HTTPSession{
		Client:  &http.Client{Jar: jar, Timeout: 5 * time.Second},
		BaseURL: "https://api.example.com",
		Headers: http.Header{
			"Authorization": []string{"Bearer secret-token"},
			"X-Client":      []string{"suitkaise-test"},
		},
	}

	h := HTTPSessionHandler{}
	state, err := h.Extract(reflect.ValueOf(sess))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	headers := state.Fields["headers"].(map[string]string)
	if _, ok := headers["Authorization"]; ok {
		t.Error("expected Authorization to be stripped from the extracted headers")
	}
	if headers["X-Client"] != "suitkaise-test" {
		t.Errorf("X-Client = %v, want suitkaise-test", headers["X-Client"])
	}
	cookies := state.Fields["cookies"].([]string)
	if len(cookies) != 1 {
		t.Fatalf("expected 1 extracted cookie, got %d", len(cookies))
	}
}

func TestHTTPSessionHandler_ReconnectRebuildsSessionAndSignsJWT(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	base, _ := url.Parse("https://api.example.com")
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "abc123"}})

	sess := &HTTPSession{
		Client:  &http.Client{Jar: jar, Timeout: 5 * time.Second},
		BaseURL: "https://api.example.com",
		Headers: http.Header{"X-Client": []string{"suitkaise-test"}},
	}

	h := HTTPSessionHandler{}
	state, err := h.Extract(reflect.ValueOf(sess))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(sess)))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	resolved, err := shell.(*httpSessionReconnector).Reconnect(JWTCredentials{
		Subject: "user-1",
		Secret:  []byte("test-signing-key"),
		TTL:     time.Minute,
	})
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}

	rebuilt := resolved.(*HTTPSession)
	if rebuilt.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q, want https://api.example.com", rebuilt.BaseURL)
	}
	if rebuilt.Headers.Get("Authorization") == "" {
		t.Error("expected Reconnect to attach a signed bearer token")
	}
	rebuiltCookies := rebuilt.Client.Jar.Cookies(base)
	if len(rebuiltCookies) != 1 || rebuiltCookies[0].Value != "abc123" {
		t.Errorf("rebuilt cookies = %+v, want one cookie with value abc123", rebuiltCookies)
	}
}
