// Package inventory tracks the switch objects the NPU reports at start-up
// (ports, LAGs, VLANs and QoS objects). Feature modules consult it to
// validate object references before touching their own registries.
//
// The inventory lock is a leaf: no method calls out while holding it, so
// any module may query it with its own lock held.
package inventory

import (
	"slices"
	"sync"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Object is one inventory entry.
type Object struct {
	ID   types.ObjectID
	Name string
	// Members lists the member ports of a LAG.
	Members []types.ObjectID
}

// DB is the switch object inventory.
type DB struct {
	mu      sync.RWMutex
	objects map[types.ObjectID]Object
}

// New returns an empty inventory.
func New() *DB {
	return &DB{objects: make(map[types.ObjectID]Object)}
}

// Add registers obj. Null ids are rejected with StatusInvalidObjectID and
// duplicates with StatusItemAlreadyExists.
func (db *DB) Add(obj Object) error {
	if obj.ID.IsNull() {
		return types.StatusInvalidObjectID
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.objects[obj.ID]; ok {
		return types.StatusItemAlreadyExists
	}
	obj.Members = slices.Clone(obj.Members)
	db.objects[obj.ID] = obj
	return nil
}

// Remove unregisters id.
func (db *DB) Remove(id types.ObjectID) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.objects[id]; !ok {
		return types.StatusItemNotFound
	}
	delete(db.objects, id)
	return nil
}

// Get returns the entry for id.
func (db *DB) Get(id types.ObjectID) (Object, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	obj, ok := db.objects[id]
	return obj, ok
}

// Exists reports whether id is registered.
func (db *DB) Exists(id types.ObjectID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.objects[id]
	return ok
}

// TypeOf returns the type tag of a registered id.
func (db *DB) TypeOf(id types.ObjectID) (types.ObjectType, bool) {
	if !db.Exists(id) {
		return types.ObjectTypeNull, false
	}
	return id.Type(), true
}

// ExistsAs reports whether id is registered and carries one of the given
// type tags.
func (db *DB) ExistsAs(id types.ObjectID, allowed ...types.ObjectType) bool {
	if !slices.Contains(allowed, id.Type()) {
		return false
	}
	return db.Exists(id)
}

// Check validates an object id passed as the target of an entry point:
// the type tag must be one of allowed (StatusInvalidObjectType) and the
// object must be registered (StatusInvalidObjectID).
func (db *DB) Check(id types.ObjectID, allowed ...types.ObjectType) error {
	if !slices.Contains(allowed, id.Type()) {
		return types.StatusInvalidObjectType
	}
	if !db.Exists(id) {
		return types.StatusInvalidObjectID
	}
	return nil
}

// List returns the registered ids of type t in ascending order.
func (db *DB) List(t types.ObjectType) []types.ObjectID {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var ids []types.ObjectID
	for id := range db.objects {
		if id.Type() == t {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Lookup returns the object registered under name. Names are not
// required to be unique; the lowest id wins.
func (db *DB) Lookup(name string) (Object, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var (
		found Object
		ok    bool
	)
	for id, obj := range db.objects {
		if name == "" || obj.Name != name {
			continue
		}
		if !ok || id < found.ID {
			found, ok = obj, true
		}
	}
	return found, ok
}

// Len returns the number of registered objects.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.objects)
}
