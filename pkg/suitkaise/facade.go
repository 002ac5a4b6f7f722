package suitkaise

import (
	"github.com/ceetaro/suitkaise/internal/dispatcher"
	"github.com/ceetaro/suitkaise/internal/handlers"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/reconnect"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// Options configures one Serialize/Deserialize call: whether to attach a
// descent path to errors, whether to stream verbose trace events, and
// which context to parent OpenTelemetry spans under.
type Options = dispatcher.Options

// TraceEvent and TraceSink let a caller observe a verbose walk without the
// engine depending on any particular output (a CLI, a log sink, an SSE
// stream are all valid TraceSink implementations).
type TraceEvent = dispatcher.TraceEvent
type TraceSink = dispatcher.TraceSink

// Types is the process-wide registry of struct types the tier-1 hook,
// tier-2 mapping, and tier-4 fallback handlers can reconstruct. Every
// struct type this program will serialize or deserialize through the
// default engine must be Register'd here, ordinarily from an init()
// function, before the first call that touches it; whichever of those
// three handlers actually claims the type is decided per-value by
// CanHandle, not by which registry call it came through.
var Types = handlers.NewTypeRegistry()

// Funcs is the process-wide registry of named functions, methods, and
// closures the tier-3 function and iterator handlers can resolve on
// reconnect. Register every func value (and every iterator factory) this
// program wants to survive a round trip here before the first call that
// touches it.
var Funcs = handlers.NewFuncRegistry()

// Enums is the process-wide registry of enum-like types (fmt.Stringer
// implementations with a closed set of values) the tier-3 enum handler can
// resolve a String() back into a value.
var Enums = handlers.NewEnumRegistry()

// Packages is the process-wide registry of import-path markers the tier-3
// package-reference handler resolves back to during deserialize.
var Packages = handlers.NewPackageRegistry()

// Semaphores is the process-wide registry of *semaphore.Weighted capacities,
// recorded once at construction time since the type itself exposes none.
var Semaphores = handlers.NewSemaphoreRegistry()

// Files is the process-wide registry distinguishing temp *os.File handles
// from regular ones.
var Files = handlers.NewFileRegistry()

// SQLDrivers is the process-wide registry of driver names *sql.DB handles
// were opened with.
var SQLDrivers = handlers.NewSQLDriverRegistry()

// CtxKeys is the process-wide registry of well-known context.Context keys
// the tier-3 context handler can look values up under.
var CtxKeys = handlers.NewCtxKeyRegistry()

// defaultRegistry wires all five resolution tiers of SPEC_FULL.md ยง6 into
// one Registry shared by the package-level functions below: tier-0 fast
// path, tier-1 user hooks, tier-2 mapping pairs, the tier-3 specialized
// families of SPEC_FULL.md ยง8, and the tier-4 struct fallback.
func defaultRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register(handlers.ScalarHandler{}, registry.TierFastPath)
	reg.Register(handlers.ContainerHandler{}, registry.TierFastPath)

	reg.Register(handlers.NewHookHandler(Types), registry.TierUserHook)
	reg.Register(handlers.NewMappingHandler(Types), registry.TierMapping)

	// IteratorHandler must precede FuncHandler: an iter.Seq/iter.Seq2 value
	// is itself a func, and ties within a tier resolve in registration order.
	reg.Register(handlers.NewIteratorHandler(Funcs), registry.TierSpecial)
	reg.Register(handlers.NewFuncHandler(Funcs), registry.TierSpecial)
	reg.Register(handlers.NewEnumHandler(Enums), registry.TierSpecial)
	reg.Register(handlers.NewPackageHandler(Packages), registry.TierSpecial)
	reg.Register(handlers.LoggerHandler{}, registry.TierSpecial)
	reg.Register(handlers.RegexpHandler{}, registry.TierSpecial)
	reg.Register(handlers.MutexHandler{}, registry.TierSpecial)
	reg.Register(handlers.RWMutexHandler{}, registry.TierSpecial)
	reg.Register(handlers.WaitGroupHandler{}, registry.TierSpecial)
	reg.Register(handlers.ChanHandler{}, registry.TierSpecial)
	reg.Register(handlers.NewSemaphoreHandler(Semaphores), registry.TierSpecial)
	reg.Register(handlers.NewFileHandler(Files), registry.TierSpecial)
	reg.Register(handlers.BufferHandler{}, registry.TierSpecial)
	reg.Register(handlers.ReaderHandler{}, registry.TierSpecial)
	reg.Register(handlers.MappedFileHandler{}, registry.TierSpecial)
	reg.Register(handlers.S3Handler{}, registry.TierSpecial)
	reg.Register(handlers.ConnHandler{}, registry.TierSpecial)
	reg.Register(handlers.ListenerHandler{}, registry.TierSpecial)
	reg.Register(handlers.NewSQLHandler(SQLDrivers), registry.TierSpecial)
	reg.Register(handlers.GormHandler{}, registry.TierSpecial)
	reg.Register(handlers.WeakPointerHandler{}, registry.TierSpecial)
	reg.Register(handlers.NewContextHandler(CtxKeys), registry.TierSpecial)
	reg.Register(handlers.CmdHandler{}, registry.TierSpecial)
	reg.Register(handlers.PoolHandler{}, registry.TierSpecial)
	reg.Register(handlers.HTTPSessionHandler{}, registry.TierSpecial)

	reg.Register(handlers.NewStructHandler(Types), registry.TierFallback)
	return reg
}

var defaultDispatcher = dispatcher.New(defaultRegistry())

// Serialize converts v into wire-encoded IR bytes using the default
// engine-wide registry.
func Serialize(v any, opts Options) ([]byte, error) {
	return defaultDispatcher.Serialize(v, opts)
}

// Deserialize reconstructs an object graph from wire-encoded IR bytes.
func Deserialize(data []byte, opts Options) (any, error) {
	return defaultDispatcher.Deserialize(data, opts)
}

// SerializeIR converts v into an IR Node tree without wire-encoding it.
func SerializeIR(v any, opts Options) (ir.Node, error) {
	return defaultDispatcher.SerializeIR(v, opts)
}

// DeserializeIR reconstructs an object graph from an already-decoded IR
// Node tree.
func DeserializeIR(root ir.Node, opts Options) (any, error) {
	return defaultDispatcher.DeserializeIR(root, opts)
}

// ToJSONable serializes v and projects the resulting IR into plain Go
// values suitable for json.Marshal.
func ToJSONable(v any, opts Options) (any, error) {
	return defaultDispatcher.ToJSONable(v, opts)
}

// ToJSON serializes v and renders the resulting IR as a JSON string.
func ToJSON(v any, indent bool, sortKeys bool, opts Options) (string, error) {
	return defaultDispatcher.ToJSON(v, indent, sortKeys, opts)
}

// ReconnectAll walks a deserialized object graph and reconnects every
// live-resource value it finds, using auth to supply the credentials each
// Reconnector needs. See internal/reconnect for the lookup order and
// concurrency model.
func ReconnectAll(root any, auth reconnect.AuthMap, startThreads bool) (any, []error) {
	return reconnect.ReconnectAll(root, auth, startThreads)
}
