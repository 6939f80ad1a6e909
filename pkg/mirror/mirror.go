// Package mirror manages mirror sessions (SPAN, RSPAN, ERSPAN) and the
// ports attached to them.
//
// All registry state lives behind one module lock taken at the top of every
// exported method. Hardware programming is delegated to an npu.MirrorAPI;
// a session is only ever visible in the registry after the backend has
// accepted it.
package mirror

import (
	"cmp"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/store"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// portKey identifies one attachment within a session.
type portKey struct {
	port types.ObjectID
	dir  types.Direction
}

func comparePortKey(a, b portKey) int {
	if c := cmp.Compare(a.port, b.port); c != 0 {
		return c
	}
	return cmp.Compare(a.dir, b.dir)
}

type attachment struct {
	port types.ObjectID
	dir  types.Direction
}

type session struct {
	info  npu.MirrorSession
	ports *store.Store[portKey, *attachment]
}

// Module is the mirror session registry.
type Module struct {
	mu          sync.Mutex
	initialized bool
	backend     npu.MirrorAPI
	inv         *inventory.DB
	sessions    *store.Store[types.ObjectID, *session]
}

// New returns a mirror module that programs sessions through backend and
// validates object references against inv. Init must be called before use.
func New(backend npu.MirrorAPI, inv *inventory.DB) *Module {
	return &Module{
		backend:  backend,
		inv:      inv,
		sessions: store.NewOrdered[types.ObjectID, *session](),
	}
}

// Init initialises the backend mirror table.
func (m *Module) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.backend.Init(); err != nil {
		log.Errorf("mirror: backend init failed: %v", err)
		return err
	}
	m.initialized = true
	log.Info("mirror: module initialised")
	return nil
}

// lookup returns the session for id. m.mu must be held.
func (m *Module) lookup(id types.ObjectID) (*session, error) {
	if !m.initialized {
		return nil, types.StatusFailure
	}
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, types.StatusInvalidObjectID
	}
	return s, nil
}

// CreateSession validates attrs, programs the session and returns its id.
// Per-attribute errors take precedence over missing mandatory attributes.
func (m *Module) CreateSession(attrs []types.Attribute) (types.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return types.NullObjectID, types.StatusFailure
	}

	rec := &session{info: npu.MirrorSession{Type: typeHint(attrs)}}
	seen := types.NewAttrSet()
	for i, attr := range attrs {
		if err := m.fill(&rec.info, attr, i); err != nil {
			log.Debugf("mirror: create rejected attribute %d (id %d): %v", i, attr.ID, err)
			return types.NullObjectID, err
		}
		seen.Add(attr.ID)
	}
	if missing := seen.Missing(mandatoryAttrs(&rec.info)); len(missing) > 0 {
		log.Debugf("mirror: create missing mandatory attributes %v for %s session", missing, rec.info.Type)
		return types.NullObjectID, types.StatusMandatoryAttributeMissing
	}

	handle, err := m.backend.SessionCreate(&rec.info)
	if err != nil {
		log.Errorf("mirror: backend session create failed: %v", err)
		return types.NullObjectID, err
	}
	// A wider handle would alias another session's id, and no id can
	// address it for a destroy.
	if handle > types.MaxHandle {
		log.Errorf("mirror: backend handle %#x exceeds %#x, session leaked in backend", handle, uint64(types.MaxHandle))
		return types.NullObjectID, types.StatusFailure
	}
	id := types.NewObjectID(types.ObjectTypeMirrorSession, handle)
	rec.info.ID = id
	rec.ports = store.New[portKey, *attachment](comparePortKey)

	if err := m.sessions.Insert(id, rec); err != nil {
		log.Errorf("mirror: session %s already registered, undoing backend create", id)
		if derr := m.backend.SessionDestroy(id); derr != nil {
			log.Errorf("mirror: rollback of session %s failed: %v", id, derr)
		}
		return types.NullObjectID, err
	}

	log.WithFields(log.Fields{"session": id, "type": rec.info.Type}).Debug("mirror: session created")
	return id, nil
}

// RemoveSession destroys an idle session. A session with attached ports
// is rejected with StatusObjectInUse.
func (m *Module) RemoveSession(id types.ObjectID) error {
	if id.Type() != types.ObjectTypeMirrorSession {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	if !rec.ports.Empty() {
		log.Debugf("mirror: session %s still has %d port(s) attached", id, rec.ports.Len())
		return types.StatusObjectInUse
	}
	if err := m.backend.SessionDestroy(id); err != nil {
		log.Errorf("mirror: backend destroy of %s failed: %v", id, err)
		return err
	}
	if _, ok := m.sessions.Remove(id); !ok {
		return types.StatusFailure
	}

	log.WithField("session", id).Debug("mirror: session removed")
	return nil
}

// SetSessionAttribute changes one attribute of a live session. If the
// backend rejects the change the session is restored as it was.
func (m *Module) SetSessionAttribute(id types.ObjectID, attr types.Attribute) error {
	if id.Type() != types.ObjectTypeMirrorSession {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	// the session type decides the mandatory set and cannot change
	if attr.ID == types.MirrorAttrType {
		return types.InvalidAttribute(0)
	}

	snapshot := rec.info
	if err := m.fill(&rec.info, attr, 0); err != nil {
		rec.info = snapshot
		return err
	}
	if err := m.backend.SessionSet(&rec.info, attr); err != nil {
		log.Errorf("mirror: backend set of attribute %d on %s failed: %v", attr.ID, id, err)
		rec.info = snapshot
		return err
	}
	return nil
}

// GetSessionAttribute fills attrs from the backend.
func (m *Module) GetSessionAttribute(id types.ObjectID, attrs []types.Attribute) error {
	if id.Type() != types.ObjectTypeMirrorSession {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return types.StatusInvalidParameter
	}
	info := rec.info
	return m.backend.SessionGet(&info, attrs)
}

// Exists reports whether id names a live session.
func (m *Module) Exists(id types.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.Has(id)
}

// Count returns the number of live sessions.
func (m *Module) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.Len()
}
