package samplepacket

import (
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Binding is one (port, direction) attachment of a session.
type Binding struct {
	Port types.ObjectID
	Dir  types.Direction
	Mode types.SampleAttachMode
	Refs uint32
}

// SessionView is a copy of a session's state for the debug walkers.
type SessionView struct {
	Session npu.SamplepacketSession
	Ports   []Binding
}

func (s *session) view() SessionView {
	v := SessionView{Session: s.info}
	s.ports.Ascend(func(_ attachKey, a *attachment) bool {
		v.Ports = append(v.Ports, Binding{Port: a.port, Dir: a.dir, Mode: a.mode, Refs: a.refs})
		return true
	})
	return v
}

// Sessions returns every live session in id order.
func (m *Module) Sessions() []SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SessionView
	m.sessions.Ascend(func(_ types.ObjectID, s *session) bool {
		out = append(out, s.view())
		return true
	})
	return out
}

// Session returns one session.
func (m *Module) Session(id types.ObjectID) (SessionView, error) {
	if id.Type() != types.ObjectTypeSamplepacket {
		return SessionView{}, types.StatusInvalidObjectType
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	return rec.view(), nil
}

// Binding returns the attachment of session id on (port, dir), if any.
func (m *Module) Binding(id, port types.ObjectID, dir types.Direction) (Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.lookup(id)
	if err != nil {
		return Binding{}, false
	}
	a, ok := rec.ports.Get(attachKey{port: port, dir: dir})
	if !ok {
		return Binding{}, false
	}
	return Binding{Port: a.port, Dir: a.dir, Mode: a.mode, Refs: a.refs}, true
}
