package handlers

import (
	"bytes"
	"io"
	"os"
	"reflect"
	"sync"
	"syscall"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var (
	osFileType      = reflect.TypeOf((*os.File)(nil))
	bytesBufferType = reflect.TypeOf((*bytes.Buffer)(nil))
	bytesReaderType = reflect.TypeOf((*bytes.Reader)(nil))
)

// FileRegistry records which *os.File handles were opened by os.CreateTemp
// rather than os.Open, since both report the same Name() and there's no
// way to tell a temp file from a regular one after the fact. A file never
// registered here is treated as a regular, reopenable-by-path file.
type FileRegistry struct {
	mu   sync.RWMutex
	temp map[*os.File]bool
}

// NewFileRegistry returns an empty FileRegistry.
func NewFileRegistry() *FileRegistry {
	return &FileRegistry{temp: make(map[*os.File]bool)}
}

// MarkTemp records f as having come from os.CreateTemp.
func (r *FileRegistry) MarkTemp(f *os.File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.temp[f] = true
}

func (r *FileRegistry) isTemp(f *os.File) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.temp[f]
}

// FileHandler is the tier-3 handler for *os.File: path and current offset
// (via Seek(0, io.SeekCurrent)), reopened by a Reconnector
// rather than carried inline — the file's contents may have changed since
// this process last touched it, and a live *os.File is a kernel handle,
// not data. The original open flag is not recorded; Reconnect always
// reopens with os.O_RDWR. Registry.TierSpecial. A temp file (FileRegistry.MarkTemp)
// reconnects by erroring instead of reopening, since os.CreateTemp's
// whole point is a path nobody else is meant to reuse.
type FileHandler struct {
	reg *FileRegistry
}

// NewFileHandler returns a FileHandler backed by reg.
func NewFileHandler(reg *FileRegistry) *FileHandler {
	return &FileHandler{reg: reg}
}

func (h *FileHandler) Name() string { return "file" }

func (h *FileHandler) TypeKey(v reflect.Value) ir.TypeKey { return "os.File" }

func (h *FileHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == osFileType && !v.IsNil()
}

func (h *FileHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "os.File" }

func (h *FileHandler) Extract(v reflect.Value) (registry.State, error) {
	f, ok := v.Interface().(*os.File)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "file handler received a nil *os.File")
	}
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "file handler: "+err.Error())
	}
	state := registry.NewRecordState(3)
	state.Set("path", f.Name())
	state.Set("offset", offset)
	state.Set("temp", h.reg.isTemp(f))
	return state, nil
}

func (h *FileHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &fileReconnector{}, nil
}

func (h *FileHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*fileReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "file handler cannot populate a shell of this type")
	}
	r.path, _ = resolved.Fields["path"].(string)
	r.offset, _ = resolved.Fields["offset"].(int64)
	r.temp, _ = resolved.Fields["temp"].(bool)
	return nil
}

type fileReconnector struct {
	path   string
	offset int64
	temp   bool
}

func (r *fileReconnector) ReconnectTypeKey() string { return "os.File" }

func (r *fileReconnector) Reconnect(auth any) (any, error) {
	if r.temp {
		return nil, errkind.New(errkind.ReconnectFailed, "cannot reconnect a temp file: "+r.path+" is not guaranteed to still exist or belong to this process")
	}
	f, err := os.OpenFile(r.path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// BufferHandler is the tier-3 handler for *bytes.Buffer: its contents are
// plain data with no live resource behind them, so they're snapshotted
// inline and reconstructed directly, with no Reconnector. Registry.
// TierSpecial.
type BufferHandler struct{}

func (BufferHandler) Name() string { return "buffer" }

func (BufferHandler) TypeKey(v reflect.Value) ir.TypeKey { return "bytes.Buffer" }

func (BufferHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == bytesBufferType && !v.IsNil()
}

func (BufferHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "bytes.Buffer" }

func (BufferHandler) Extract(v reflect.Value) (registry.State, error) {
	buf, ok := v.Interface().(*bytes.Buffer)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "buffer handler received a nil *bytes.Buffer")
	}
	state := registry.NewRecordState(1)
	state.Set("contents", append([]byte(nil), buf.Bytes()...))
	return state, nil
}

func (BufferHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &bytes.Buffer{}, nil
}

func (BufferHandler) PopulateShell(shell any, resolved registry.State) error {
	buf, ok := shell.(*bytes.Buffer)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "buffer handler cannot populate a shell of this type")
	}
	contents, _ := resolved.Fields["contents"].([]byte)
	buf.Write(contents)
	return nil
}

// ReaderHandler is the tier-3 handler for *bytes.Reader: contents plus the
// current read position, snapshotted inline like Buffer. Registry.
// TierSpecial.
type ReaderHandler struct{}

func (ReaderHandler) Name() string { return "bytesreader" }

func (ReaderHandler) TypeKey(v reflect.Value) ir.TypeKey { return "bytes.Reader" }

func (ReaderHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == bytesReaderType && !v.IsNil()
}

func (ReaderHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "bytes.Reader" }

func (ReaderHandler) Extract(v reflect.Value) (registry.State, error) {
	r, ok := v.Interface().(*bytes.Reader)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "bytesreader handler received a nil *bytes.Reader")
	}
	pos, _ := r.Seek(0, io.SeekCurrent)
	full := make([]byte, r.Size())
	r.Seek(0, io.SeekStart)
	io.ReadFull(r, full)
	r.Seek(pos, io.SeekStart)

	state := registry.NewRecordState(2)
	state.Set("contents", full)
	state.Set("position", pos)
	return state, nil
}

func (ReaderHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &readerShell{}, nil
}

func (ReaderHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*readerShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "bytesreader handler cannot populate a shell of this type")
	}
	contents, _ := resolved.Fields["contents"].([]byte)
	position, _ := resolved.Fields["position"].(int64)
	r := bytes.NewReader(contents)
	r.Seek(position, io.SeekStart)
	s.r = r
	return nil
}

type readerShell struct {
	r *bytes.Reader
}

func (s *readerShell) Finalize() any { return s.r }

// MappedFile is a minimal memory-mapped-file handle: the engine's own
// stand-in for the family of mmap wrapper types a real program would use,
// since the standard library exposes raw syscall.Mmap rather than a
// reusable handle type. Read-write, whole-file mappings only.
type MappedFile struct {
	path   string
	data   []byte
	closed bool
}

// OpenMapped mmaps the whole of the file at path read-write.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(info.Size()), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &MappedFile{path: path, data: data}, nil
}

// Bytes returns the mapped region.
func (m *MappedFile) Bytes() []byte { return m.data }

// Path returns the file path this mapping was opened against.
func (m *MappedFile) Path() string { return m.path }

// Close unmaps the region.
func (m *MappedFile) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return syscall.Munmap(m.data)
}

var mappedFileType = reflect.TypeOf((*MappedFile)(nil))

// MappedFileHandler is the tier-3 handler for *MappedFile. Registry.
// TierSpecial. The mapping itself can't be carried across a serialize
// boundary (it's backed by a kernel mapping tied to this process), so
// reconnection re-opens and re-maps the same path.
type MappedFileHandler struct{}

func (MappedFileHandler) Name() string { return "mmap" }

func (MappedFileHandler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.MappedFile" }

func (MappedFileHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == mappedFileType && !v.IsNil()
}

func (MappedFileHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "suitkaise.MappedFile" }

func (MappedFileHandler) Extract(v reflect.Value) (registry.State, error) {
	m, ok := v.Interface().(*MappedFile)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "mmap handler received a nil *MappedFile")
	}
	state := registry.NewRecordState(2)
	state.Set("path", m.path)
	state.Set("length", int64(len(m.data)))
	return state, nil
}

func (MappedFileHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &mmapReconnector{}, nil
}

func (MappedFileHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*mmapReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "mmap handler cannot populate a shell of this type")
	}
	r.path, _ = resolved.Fields["path"].(string)
	return nil
}

type mmapReconnector struct {
	path string
}

func (r *mmapReconnector) ReconnectTypeKey() string { return "suitkaise.MappedFile" }

func (r *mmapReconnector) Reconnect(auth any) (any, error) {
	return OpenMapped(r.path)
}
