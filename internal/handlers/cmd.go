package handlers

import (
	"os/exec"
	"reflect"
	"strings"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var execCmdType = reflect.TypeOf((*exec.Cmd)(nil))

var secretEnvMarkers = []string{"SECRET", "PASSWORD", "TOKEN", "_KEY", "APIKEY"}

func isSecretEnvKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range secretEnvMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// CmdHandler is the tier-3 handler for *exec.Cmd. Registry.TierSpecial.
// Path, Args, and Env are exported fields reflection already exposes — no
// registration step needed, unlike a *sql.DB's driver name or a
// semaphore's capacity — but env entries that look like secrets are
// stripped before the record is built. The Reconnector re-execs rather
// than attaching to whatever process the original Cmd may have started.
type CmdHandler struct{}

func (CmdHandler) Name() string { return "cmd" }

func (CmdHandler) TypeKey(v reflect.Value) ir.TypeKey { return "exec.Cmd" }

func (CmdHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == execCmdType && !v.IsNil()
}

func (CmdHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "exec.Cmd" }

func (CmdHandler) Extract(v reflect.Value) (registry.State, error) {
	cmd, ok := v.Interface().(*exec.Cmd)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "cmd handler received a nil *exec.Cmd")
	}
	env := make([]string, 0, len(cmd.Env))
	for _, kv := range cmd.Env {
		key, _, found := strings.Cut(kv, "=")
		if found && isSecretEnvKey(key) {
			continue
		}
		env = append(env, kv)
	}
	state := registry.NewRecordState(3)
	state.Set("path", cmd.Path)
	state.Set("args", append([]string(nil), cmd.Args...))
	state.Set("env", env)
	return state, nil
}

func (CmdHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &cmdReconnector{}, nil
}

func (CmdHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*cmdReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "cmd handler cannot populate a shell of this type")
	}
	r.path, _ = resolved.Fields["path"].(string)
	r.args, _ = resolved.Fields["args"].([]string)
	r.env, _ = resolved.Fields["env"].([]string)
	return nil
}

type cmdReconnector struct {
	path string
	args []string
	env  []string
}

func (r *cmdReconnector) ReconnectTypeKey() string { return "exec.Cmd" }

func (r *cmdReconnector) Reconnect(auth any) (any, error) {
	var argv []string
	if len(r.args) > 1 {
		argv = r.args[1:]
	}
	cmd := exec.Command(r.path, argv...)
	cmd.Env = append([]string(nil), r.env...)
	if extra, ok := auth.([]string); ok {
		cmd.Env = append(cmd.Env, extra...)
	}
	return cmd, nil
}
