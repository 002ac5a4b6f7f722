package handlers

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"reflect"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// HTTPSession is a serializable handle for a well-known HTTP client
// session: base URL, default headers, and the *http.Client backing it
// (cookie jar included). The stdlib bundles none of this into one type,
// so this is the engine's own stand-in, the same role S3Object plays for
// a single S3 object.
type HTTPSession struct {
	Client  *http.Client
	BaseURL string
	Headers http.Header
}

var httpSessionType = reflect.TypeOf((*HTTPSession)(nil))

// HTTPSessionHandler is the tier-3 handler for *HTTPSession. Registry.
// TierSpecial. The Authorization header is never extracted; the
// Reconnector reattaches credentials by minting a fresh signed JWT from
// the auth map rather than carrying the original bearer token across the
// wire.
type HTTPSessionHandler struct{}

func (HTTPSessionHandler) Name() string { return "httpsession" }

func (HTTPSessionHandler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.HTTPSession" }

func (HTTPSessionHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == httpSessionType && !v.IsNil()
}

func (HTTPSessionHandler) Handles(typeKey ir.TypeKey) bool {
	return typeKey == "suitkaise.HTTPSession"
}

func (HTTPSessionHandler) Extract(v reflect.Value) (registry.State, error) {
	sess, ok := v.Interface().(*HTTPSession)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "http session handler received a nil *HTTPSession")
	}

	headers := make(map[string]string, len(sess.Headers))
	for key, vals := range sess.Headers {
		if key == "Authorization" || len(vals) == 0 {
			continue
		}
		headers[key] = vals[0]
	}

	var cookies []string
	if sess.Client != nil && sess.Client.Jar != nil {
		if base, err := url.Parse(sess.BaseURL); err == nil {
			for _, c := range sess.Client.Jar.Cookies(base) {
				cookies = append(cookies, c.String())
			}
		}
	}

	var timeout time.Duration
	if sess.Client != nil {
		timeout = sess.Client.Timeout
	}

	state := registry.NewRecordState(4)
	state.Set("base_url", sess.BaseURL)
	state.Set("headers", headers)
	state.Set("cookies", cookies)
	state.Set("timeout_ns", int64(timeout))
	return state, nil
}

func (HTTPSessionHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &httpSessionReconnector{}, nil
}

func (HTTPSessionHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*httpSessionReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "http session handler cannot populate a shell of this type")
	}
	r.baseURL, _ = resolved.Fields["base_url"].(string)
	r.headers, _ = resolved.Fields["headers"].(map[string]string)
	r.cookies, _ = resolved.Fields["cookies"].([]string)
	r.timeoutNS, _ = resolved.Fields["timeout_ns"].(int64)
	return nil
}

type httpSessionReconnector struct {
	baseURL   string
	headers   map[string]string
	cookies   []string
	timeoutNS int64
}

func (r *httpSessionReconnector) ReconnectTypeKey() string { return "suitkaise.HTTPSession" }

// JWTCredentials is the auth map shape an *HTTPSession Reconnector
// expects: signing material for a fresh bearer token, attached as the
// Authorization header on the rebuilt session.
type JWTCredentials struct {
	Subject string
	Secret  []byte
	TTL     time.Duration
}

func (r *httpSessionReconnector) Reconnect(auth any) (any, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, errkind.New(errkind.ReconnectFailed, "http session reconnect: invalid base url "+r.baseURL)
	}

	var parsed []*http.Cookie
	for _, raw := range r.cookies {
		header := http.Header{}
		header.Add("Set-Cookie", raw)
		resp := http.Response{Header: header}
		parsed = append(parsed, resp.Cookies()...)
	}
	jar.SetCookies(base, parsed)

	headers := http.Header{}
	for key, val := range r.headers {
		headers.Set(key, val)
	}

	if creds, ok := auth.(JWTCredentials); ok {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": creds.Subject,
			"exp": time.Now().Add(creds.TTL).Unix(),
		})
		signed, err := token.SignedString(creds.Secret)
		if err != nil {
			return nil, errkind.New(errkind.ReconnectFailed, "http session reconnect: signing token: "+err.Error())
		}
		headers.Set("Authorization", "Bearer "+signed)
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: time.Duration(r.timeoutNS),
	}
	return &HTTPSession{Client: client, BaseURL: r.baseURL, Headers: headers}, nil
}
