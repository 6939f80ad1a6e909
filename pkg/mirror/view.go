package mirror

import (
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Binding is one port attached to a session.
type Binding struct {
	Port types.ObjectID
	Dir  types.Direction
}

// SessionView is a copy of a session's state for the debug walkers.
type SessionView struct {
	Session npu.MirrorSession
	Ports   []Binding
}

func (s *session) view() SessionView {
	v := SessionView{Session: s.info}
	s.ports.Ascend(func(_ portKey, a *attachment) bool {
		v.Ports = append(v.Ports, Binding{Port: a.port, Dir: a.dir})
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
	if id.Type() != types.ObjectTypeMirrorSession {
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
