package mirror

import (
	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

func validDirection(dir types.Direction) bool {
	return dir == types.Ingress || dir == types.Egress
}

// SessionPortAdd attaches port to session id in direction dir. The
// attachment is recorded only after the backend has programmed it; a
// duplicate (port, dir) is rejected with StatusItemAlreadyExists.
func (m *Module) SessionPortAdd(id, port types.ObjectID, dir types.Direction) error {
	if id.Type() != types.ObjectTypeMirrorSession {
		return types.StatusInvalidObjectType
	}
	if !validDirection(dir) {
		return types.StatusInvalidParameter
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
	key := portKey{port: port, dir: dir}
	if rec.ports.Has(key) {
		return types.StatusItemAlreadyExists
	}

	att := &attachment{port: port, dir: dir}
	if err := m.backend.SessionPortAdd(id, port, dir); err != nil {
		log.Errorf("mirror: backend attach of %s to %s %s failed: %v", id, port, dir, err)
		return err
	}
	if err := rec.ports.Insert(key, att); err != nil {
		if rerr := m.backend.SessionPortRemove(id, port, dir); rerr != nil {
			log.Errorf("mirror: rollback of %s attach on %s failed: %v", id, port, rerr)
		}
		return err
	}

	log.WithFields(log.Fields{"session": id, "port": port, "dir": dir}).Debug("mirror: port attached")
	return nil
}

// SessionPortRemove detaches port from session id in direction dir.
func (m *Module) SessionPortRemove(id, port types.ObjectID, dir types.Direction) error {
	if id.Type() != types.ObjectTypeMirrorSession {
		return types.StatusInvalidObjectType
	}
	if !validDirection(dir) {
		return types.StatusInvalidParameter
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	key := portKey{port: port, dir: dir}
	if !rec.ports.Has(key) {
		return types.StatusItemNotFound
	}
	if err := m.backend.SessionPortRemove(id, port, dir); err != nil {
		log.Errorf("mirror: backend detach of %s from %s %s failed: %v", id, port, dir, err)
		return err
	}
	if _, ok := rec.ports.Remove(key); !ok {
		return types.StatusFailure
	}

	log.WithFields(log.Fields{"session": id, "port": port, "dir": dir}).Debug("mirror: port detached")
	return nil
}
