package handlers

import (
	"database/sql"
	"reflect"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var (
	sqlDBType  = reflect.TypeOf((*sql.DB)(nil))
	gormDBType = reflect.TypeOf((*gorm.DB)(nil))
)

// SQLDriverRegistry records which driver name a *sql.DB was opened with.
// database/sql.Open takes the driver name but *sql.DB never exposes it
// again afterward, unlike *gorm.DB whose Dialector reports its own Name()
// — so a plain *sql.DB needs this registration the same way a
// *semaphore.Weighted needs SemaphoreRegistry for its capacity.
type SQLDriverRegistry struct {
	*ConnRegistry
}

// NewSQLDriverRegistry returns an empty SQLDriverRegistry.
func NewSQLDriverRegistry() *SQLDriverRegistry {
	return &SQLDriverRegistry{ConnRegistry: NewConnRegistry()}
}

// Register records that db was opened with the named driver
// ("sqlite" or "pgx").
func (r *SQLDriverRegistry) Register(db *sql.DB, driver string) {
	r.ConnRegistry.Register(db, driver)
}

// SQLHandler is the tier-3 handler for *sql.DB. Registry.TierSpecial. The
// DSN itself is never extracted — database/sql gives no way to recover it
// after Open, and even if it did, it would carry the original
// credentials. The Reconnector takes the full DSN (credentials included)
// from the auth map and reopens with it.
type SQLHandler struct {
	reg *SQLDriverRegistry
}

// NewSQLHandler returns a SQLHandler backed by reg.
func NewSQLHandler(reg *SQLDriverRegistry) *SQLHandler {
	return &SQLHandler{reg: reg}
}

func (h *SQLHandler) Name() string { return "sqldb" }

func (h *SQLHandler) TypeKey(v reflect.Value) ir.TypeKey { return "sql.DB" }

func (h *SQLHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == sqlDBType && !v.IsNil()
}

func (h *SQLHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "sql.DB" }

func (h *SQLHandler) Extract(v reflect.Value) (registry.State, error) {
	db, ok := v.Interface().(*sql.DB)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "sql handler received a nil *sql.DB")
	}
	driver, ok := h.reg.Lookup(db)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnknownHandler, "*sql.DB was never registered with SQLDriverRegistry.Register; its driver name cannot be recovered by reflection")
	}
	state := registry.NewRecordState(1)
	state.Set("driver", driver.(string))
	return state, nil
}

func (h *SQLHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &sqlReconnector{}, nil
}

func (h *SQLHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*sqlReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "sql handler cannot populate a shell of this type")
	}
	r.driver, _ = resolved.Fields["driver"].(string)
	return nil
}

type sqlReconnector struct {
	driver string
}

func (r *sqlReconnector) ReconnectTypeKey() string { return "sql.DB" }

func (r *sqlReconnector) Reconnect(auth any) (any, error) {
	dsn, ok := auth.(string)
	if !ok || dsn == "" {
		return nil, errkind.New(errkind.ReconnectFailed, "sql.DB reconnect requires the full DSN (with credentials) as the auth value")
	}
	return sql.Open(r.driver, dsn)
}

// GormHandler is the tier-3 handler for *gorm.DB. Registry.TierSpecial.
// Unlike *sql.DB, *gorm.DB's Dialector reports its own driver Name(), so
// no separate registry is needed for that part — only the DSN (with
// credentials) still has to come from the auth map to reopen.
type GormHandler struct{}

func (GormHandler) Name() string { return "gormdb" }

func (GormHandler) TypeKey(v reflect.Value) ir.TypeKey { return "gorm.DB" }

func (GormHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == gormDBType && !v.IsNil()
}

func (GormHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "gorm.DB" }

func (GormHandler) Extract(v reflect.Value) (registry.State, error) {
	db, ok := v.Interface().(*gorm.DB)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "gorm handler received a nil *gorm.DB")
	}
	state := registry.NewRecordState(1)
	state.Set("driver", db.Name())
	return state, nil
}

func (GormHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &gormReconnector{}, nil
}

func (GormHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*gormReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "gorm handler cannot populate a shell of this type")
	}
	r.driver, _ = resolved.Fields["driver"].(string)
	return nil
}

type gormReconnector struct {
	driver string
}

func (r *gormReconnector) ReconnectTypeKey() string { return "gorm.DB" }

func (r *gormReconnector) Reconnect(auth any) (any, error) {
	dsn, ok := auth.(string)
	if !ok || dsn == "" {
		return nil, errkind.New(errkind.ReconnectFailed, "gorm.DB reconnect requires the full DSN (with credentials) as the auth value")
	}
	switch r.driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}
