package handlers

import (
	"net"
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// ConnHandler is the tier-3 handler for any concrete net.Conn
// implementation (*net.TCPConn, *net.UnixConn, *tls.Conn, ...): the remote
// address's network and address string, with the Reconnector dialing a fresh
// connection to the remote address rather than the wire carrying anything
// about what was previously in flight on the socket. Registry.
// TierSpecial.
type ConnHandler struct{}

func (ConnHandler) Name() string { return "conn" }

func (ConnHandler) TypeKey(v reflect.Value) ir.TypeKey { return "net.Conn" }

func (ConnHandler) CanHandle(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(net.Conn)
	return ok
}

func (ConnHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "net.Conn" }

func (ConnHandler) Extract(v reflect.Value) (registry.State, error) {
	conn, ok := v.Interface().(net.Conn)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "conn handler received a value that isn't a net.Conn")
	}
	remote := conn.RemoteAddr()
	state := registry.NewRecordState(2)
	state.Set("network", remote.Network())
	state.Set("remote_addr", remote.String())
	return state, nil
}

func (ConnHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &connReconnector{}, nil
}

func (ConnHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*connReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "conn handler cannot populate a shell of this type")
	}
	r.network, _ = resolved.Fields["network"].(string)
	r.remoteAddr, _ = resolved.Fields["remote_addr"].(string)
	return nil
}

type connReconnector struct {
	network, remoteAddr string
}

func (r *connReconnector) ReconnectTypeKey() string { return "net.Conn" }

func (r *connReconnector) Reconnect(auth any) (any, error) {
	return net.Dial(r.network, r.remoteAddr)
}

// ListenerHandler is the tier-3 handler for any concrete net.Listener
// implementation: network and local address, with the Reconnector
// re-listening on that address. Registry.TierSpecial.
type ListenerHandler struct{}

func (ListenerHandler) Name() string { return "listener" }

func (ListenerHandler) TypeKey(v reflect.Value) ir.TypeKey { return "net.Listener" }

func (ListenerHandler) CanHandle(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(net.Listener)
	return ok
}

func (ListenerHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "net.Listener" }

func (ListenerHandler) Extract(v reflect.Value) (registry.State, error) {
	l, ok := v.Interface().(net.Listener)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "listener handler received a value that isn't a net.Listener")
	}
	addr := l.Addr()
	state := registry.NewRecordState(2)
	state.Set("network", addr.Network())
	state.Set("local_addr", addr.String())
	return state, nil
}

func (ListenerHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &listenerReconnector{}, nil
}

func (ListenerHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*listenerReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "listener handler cannot populate a shell of this type")
	}
	r.network, _ = resolved.Fields["network"].(string)
	r.localAddr, _ = resolved.Fields["local_addr"].(string)
	return nil
}

type listenerReconnector struct {
	network, localAddr string
}

func (r *listenerReconnector) ReconnectTypeKey() string { return "net.Listener" }

func (r *listenerReconnector) Reconnect(auth any) (any, error) {
	return net.Listen(r.network, r.localAddr)
}
