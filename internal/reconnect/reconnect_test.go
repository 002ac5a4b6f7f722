package reconnect

import (
	"fmt"
	"testing"
)

type fakeConn struct {
	host, port string
	auth       any
}

type fakeConnReconnector struct {
	host, port string
}

func (r *fakeConnReconnector) ReconnectTypeKey() string { return "fake.Conn" }

func (r *fakeConnReconnector) Reconnect(auth any) (any, error) {
	if auth == nil {
		return nil, fmt.Errorf("no credentials supplied")
	}
	return &fakeConn{host: r.host, port: r.port, auth: auth}, nil
}

type fakeThread struct {
	started bool
}

func (f *fakeThread) Start() { f.started = true }

type fakeThreadReconnector struct{}

func (r *fakeThreadReconnector) ReconnectTypeKey() string { return "fake.Thread" }

func (r *fakeThreadReconnector) Reconnect(auth any) (any, error) {
	return &fakeThread{}, nil
}

// worker's Conn field is typed any rather than *fakeConnReconnector: the
// live value Reconnect produces (*fakeConn) is a different concrete type
// than the placeholder, so only an interface-typed field is wide enough to
// hold both across the replacement.
type worker struct {
	Name  string
	Conn  any
	Extra any
}

func TestReconnectAll_ReplacesFieldWithLiveValue(t *testing.T) {
	w := &worker{Name: "w1", Conn: &fakeConnReconnector{host: "localhost", port: "5432"}}
	auth := AuthMap{"fake.Conn": {"*": "secret"}}

	got, errs := ReconnectAll(w, auth, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	out := got.(*worker)
	conn, ok := out.Conn.(*fakeConn)
	if !ok {
		t.Fatalf("expected Conn to be replaced with *fakeConn, got %T", out.Conn)
	}
	if conn.host != "localhost" || conn.port != "5432" {
		t.Errorf("unexpected reconnected conn: %+v", conn)
	}
}

func TestReconnectAll_FieldLookupBeforeWildcard(t *testing.T) {
	w := &worker{Conn: &fakeConnReconnector{host: "localhost", port: "5432"}}
	auth := AuthMap{
		"fake.Conn": {
			"Conn": "specific-secret",
			"*":    "wildcard-secret",
		},
	}

	got, errs := ReconnectAll(w, auth, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	conn, ok := got.(*worker).Conn.(*fakeConn)
	if !ok {
		t.Fatalf("expected Conn to be replaced with *fakeConn, got %T", got.(*worker).Conn)
	}
	if conn.auth != "specific-secret" {
		t.Errorf("auth = %v, want the field-specific entry", conn.auth)
	}
}

func TestReconnectAll_NoAuthCollectsError(t *testing.T) {
	w := &worker{Conn: &fakeConnReconnector{host: "localhost", port: "5432"}}

	_, errs := ReconnectAll(w, nil, false)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestReconnectAll_StartThreadsInvokesStart(t *testing.T) {
	type holder struct {
		Thread any
	}
	h := &holder{Thread: &fakeThreadReconnector{}}

	got, errs := ReconnectAll(h, nil, true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	out := got.(*holder)
	thread, ok := out.Thread.(*fakeThread)
	if !ok {
		t.Fatalf("expected Thread to be replaced with *fakeThread, got %T", out.Thread)
	}
	if !thread.started {
		t.Error("expected Start to be invoked when startThreads is true")
	}
}

func TestDecodeAuthSpecs_BuildsNestedMap(t *testing.T) {
	raw := []map[string]any{
		{"type_key": "fake.Conn", "attr": "*", "secret": "s3cr3t"},
	}
	auth, err := DecodeAuthSpecs(raw)
	if err != nil {
		t.Fatalf("DecodeAuthSpecs: %v", err)
	}
	if auth.lookup("fake.Conn", "anything") != "s3cr3t" {
		t.Errorf("expected wildcard secret, got %v", auth.lookup("fake.Conn", "anything"))
	}
}

func TestDecodeAuthSpecs_RejectsMissingFields(t *testing.T) {
	raw := []map[string]any{
		{"type_key": "fake.Conn"},
	}
	if _, err := DecodeAuthSpecs(raw); err == nil {
		t.Fatal("expected validation error for missing attr/secret")
	}
}
