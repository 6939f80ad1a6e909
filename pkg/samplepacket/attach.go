package samplepacket

import (
	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

func checkAttach(id types.ObjectID, dir types.Direction, mode types.SampleAttachMode) error {
	if id.Type() != types.ObjectTypeSamplepacket {
		return types.StatusInvalidObjectType
	}
	if dir != types.Ingress && dir != types.Egress {
		return types.StatusInvalidParameter
	}
	if mode != types.SamplePortBased && mode != types.SampleFlowBased {
		return types.StatusInvalidParameter
	}
	return nil
}

// SessionPortAdd attaches session id to (port, dir) through the given
// hardware path.
//
// A port-based attach on a key that already has one is rejected with
// StatusItemAlreadyExists. A flow-based attach on a key that already has
// one only takes another reference; the backend is programmed once.
func (m *Module) SessionPortAdd(id, port types.ObjectID, dir types.Direction, mode types.SampleAttachMode) error {
	if err := checkAttach(id, dir, mode); err != nil {
		return err
	}
	if err := m.inv.Check(port, types.ObjectTypePort, types.ObjectTypeLag); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	key := attachKey{port: port, dir: dir}
	att, exists := rec.ports.Get(key)
	if exists && att.mode&mode != 0 {
		if mode == types.SamplePortBased {
			return types.StatusItemAlreadyExists
		}
		att.refs++
		log.WithFields(log.Fields{"session": id, "port": port, "dir": dir, "refs": att.refs}).
			Debug("samplepacket: flow reference added")
		return nil
	}

	if mode == types.SamplePortBased {
		err = m.backend.SessionPortAdd(id, port, dir)
	} else {
		err = m.backend.SessionACLPortAdd(id, port, dir)
	}
	if err != nil {
		log.Errorf("samplepacket: backend %s attach of %s on %s %s failed: %v", mode, id, port, dir, err)
		return err
	}

	if !exists {
		att = &attachment{port: port, dir: dir}
		if err := rec.ports.Insert(key, att); err != nil {
			m.undoAdd(id, port, dir, mode)
			return err
		}
	}
	att.mode |= mode
	if mode == types.SampleFlowBased {
		att.refs++
	}

	log.WithFields(log.Fields{"session": id, "port": port, "dir": dir, "mode": att.mode}).
		Debug("samplepacket: port attached")
	return nil
}

// undoAdd tears down a backend attachment that could not be recorded.
// m.mu must be held.
func (m *Module) undoAdd(id, port types.ObjectID, dir types.Direction, mode types.SampleAttachMode) {
	var err error
	if mode == types.SamplePortBased {
		err = m.backend.SessionPortRemove(id, port, dir)
	} else {
		err = m.backend.SessionACLPortRemove(id, port, dir)
	}
	if err != nil {
		log.Errorf("samplepacket: rollback of %s attach on %s failed: %v", id, port, err)
	}
}

// SessionPortRemove drops one attachment of session id from (port, dir).
//
// A flow-based remove releases one reference. While other references
// remain it returns StatusObjectInUse and leaves the hardware untouched;
// the backend flow path is torn down only by the last one.
func (m *Module) SessionPortRemove(id, port types.ObjectID, dir types.Direction, mode types.SampleAttachMode) error {
	if err := checkAttach(id, dir, mode); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	key := attachKey{port: port, dir: dir}
	att, ok := rec.ports.Get(key)
	if !ok || att.mode&mode == 0 {
		return types.StatusItemNotFound
	}

	if mode == types.SampleFlowBased {
		att.refs--
		if att.refs > 0 {
			log.WithFields(log.Fields{"session": id, "port": port, "dir": dir, "refs": att.refs}).
				Debug("samplepacket: flow reference released")
			return types.StatusObjectInUse
		}
		if err := m.backend.SessionACLPortRemove(id, port, dir); err != nil {
			log.Errorf("samplepacket: backend flow detach of %s from %s %s failed: %v", id, port, dir, err)
			att.refs++
			return err
		}
	} else if err := m.backend.SessionPortRemove(id, port, dir); err != nil {
		log.Errorf("samplepacket: backend detach of %s from %s %s failed: %v", id, port, dir, err)
		return err
	}

	att.mode &^= mode
	if att.idle() {
		if _, ok := rec.ports.Remove(key); !ok {
			return types.StatusFailure
		}
	}

	log.WithFields(log.Fields{"session": id, "port": port, "dir": dir, "mode": mode}).
		Debug("samplepacket: port detached")
	return nil
}
