// Package samplepacket manages packet sampling sessions and their port
// attachments. A (port, direction) attachment may be programmed port-based,
// flow-based through ACL rules, or both at once; flow-based attachments are
// reference counted per ACL rule.
package samplepacket

import (
	"cmp"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/store"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

type attachKey struct {
	port types.ObjectID
	dir  types.Direction
}

func compareAttachKey(a, b attachKey) int {
	if c := cmp.Compare(a.port, b.port); c != 0 {
		return c
	}
	return cmp.Compare(a.dir, b.dir)
}

// attachment is freed once refs is zero and no mode bit is left.
type attachment struct {
	port types.ObjectID
	dir  types.Direction
	mode types.SampleAttachMode
	refs uint32
}

func (a *attachment) idle() bool {
	return a.refs == 0 && a.mode == 0
}

type session struct {
	info  npu.SamplepacketSession
	ports *store.Store[attachKey, *attachment]
}

// Module is the samplepacket session registry.
type Module struct {
	mu          sync.Mutex
	initialized bool
	backend     npu.SamplepacketAPI
	inv         *inventory.DB
	sessions    *store.Store[types.ObjectID, *session]
}

// New returns a samplepacket module backed by backend. Init must be called
// before use.
func New(backend npu.SamplepacketAPI, inv *inventory.DB) *Module {
	return &Module{
		backend:  backend,
		inv:      inv,
		sessions: store.NewOrdered[types.ObjectID, *session](),
	}
}

// Init initialises the backend samplepacket table.
func (m *Module) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.backend.Init(); err != nil {
		log.Errorf("samplepacket: backend init failed: %v", err)
		return err
	}
	m.initialized = true
	log.Info("samplepacket: module initialised")
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

// CreateSession validates attrs and programs a new session. TYPE defaults
// to slow path and MODE to exclusive; SAMPLE_RATE is required.
func (m *Module) CreateSession(attrs []types.Attribute) (types.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return types.NullObjectID, types.StatusFailure
	}

	rec := &session{info: npu.SamplepacketSession{
		Type: types.SamplepacketSlowPath,
		Mode: types.SamplepacketExclusive,
	}}
	seen := types.NewAttrSet()
	for i, attr := range attrs {
		if err := fill(&rec.info, attr, i); err != nil {
			log.Debugf("samplepacket: create rejected attribute %d (id %d): %v", i, attr.ID, err)
			return types.NullObjectID, err
		}
		seen.Add(attr.ID)
	}
	if missing := seen.Missing(mandatory); len(missing) > 0 {
		return types.NullObjectID, types.StatusMandatoryAttributeMissing
	}

	handle, err := m.backend.SessionCreate(&rec.info)
	if err != nil {
		log.Errorf("samplepacket: backend session create failed: %v", err)
		return types.NullObjectID, err
	}
	// A wider handle would alias another session's id, and no id can
	// address it for a destroy.
	if handle > types.MaxHandle {
		log.Errorf("samplepacket: backend handle %#x exceeds %#x, session leaked in backend", handle, uint64(types.MaxHandle))
		return types.NullObjectID, types.StatusFailure
	}
	id := types.NewObjectID(types.ObjectTypeSamplepacket, handle)
	rec.info.ID = id
	rec.ports = store.New[attachKey, *attachment](compareAttachKey)

	if err := m.sessions.Insert(id, rec); err != nil {
		log.Errorf("samplepacket: session %s already registered, undoing backend create", id)
		if derr := m.backend.SessionDestroy(id); derr != nil {
			log.Errorf("samplepacket: rollback of session %s failed: %v", id, derr)
		}
		return types.NullObjectID, err
	}

	log.WithFields(log.Fields{"session": id, "rate": rec.info.Rate}).Debug("samplepacket: session created")
	return id, nil
}

// RemoveSession destroys a session that no port references.
func (m *Module) RemoveSession(id types.ObjectID) error {
	if id.Type() != types.ObjectTypeSamplepacket {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	if !rec.ports.Empty() {
		return types.StatusObjectInUse
	}
	if err := m.backend.SessionDestroy(id); err != nil {
		log.Errorf("samplepacket: backend destroy of %s failed: %v", id, err)
		return err
	}
	if _, ok := m.sessions.Remove(id); !ok {
		return types.StatusFailure
	}

	log.WithField("session", id).Debug("samplepacket: session removed")
	return nil
}

// SetSessionAttribute changes one attribute, restoring the previous state
// if the backend rejects it.
func (m *Module) SetSessionAttribute(id types.ObjectID, attr types.Attribute) error {
	if id.Type() != types.ObjectTypeSamplepacket {
		return types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	snapshot := rec.info
	if err := fill(&rec.info, attr, 0); err != nil {
		rec.info = snapshot
		return err
	}
	if err := m.backend.SessionSet(&rec.info, attr); err != nil {
		log.Errorf("samplepacket: backend set of attribute %d on %s failed: %v", attr.ID, id, err)
		rec.info = snapshot
		return err
	}
	return nil
}

// GetSessionAttribute fills attrs from the backend.
func (m *Module) GetSessionAttribute(id types.ObjectID, attrs []types.Attribute) error {
	if id.Type() != types.ObjectTypeSamplepacket {
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
