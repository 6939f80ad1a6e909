// Package types defines the object identifiers, attribute values and status
// codes shared by every module of the adapter. These mirror the SAI calling
// convention (object id + attribute list) with plain Go values.
package types

import "fmt"

// ObjectType is the tag embedded in the upper bits of every ObjectID.
type ObjectType uint8

const (
	ObjectTypeNull ObjectType = iota
	ObjectTypePort
	ObjectTypeLag
	ObjectTypeVlan
	ObjectTypeMirrorSession
	ObjectTypeSamplepacket
	ObjectTypeQosMap
	ObjectTypeScheduler
	ObjectTypePolicer
	ObjectTypeWred
	ObjectTypeAcl
	ObjectTypeSwitch
)

var objectTypeNames = map[ObjectType]string{
	ObjectTypeNull:          "null",
	ObjectTypePort:          "port",
	ObjectTypeLag:           "lag",
	ObjectTypeVlan:          "vlan",
	ObjectTypeMirrorSession: "mirror_session",
	ObjectTypeSamplepacket:  "samplepacket",
	ObjectTypeQosMap:        "qos_map",
	ObjectTypeScheduler:     "scheduler",
	ObjectTypePolicer:       "policer",
	ObjectTypeWred:          "wred",
	ObjectTypeAcl:           "acl",
	ObjectTypeSwitch:        "switch",
}

func (t ObjectType) String() string {
	if name, ok := objectTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("object_type(%d)", uint8(t))
}

// ParseObjectType returns the ObjectType with the given name.
func ParseObjectType(name string) (ObjectType, error) {
	for t, n := range objectTypeNames {
		if n == name {
			return t, nil
		}
	}
	return ObjectTypeNull, fmt.Errorf("unknown object type %q", name)
}

const (
	objectTypeShift = 56
	handleMask      = (uint64(1) << objectTypeShift) - 1
)

// MaxHandle is the widest backend handle an ObjectID can carry.
const MaxHandle = handleMask

// ObjectID is an opaque identifier composed of an object-type tag and a
// backend-assigned handle. The zero value is the null object.
type ObjectID uint64

// NullObjectID is the SAI null object id.
const NullObjectID ObjectID = 0

// NewObjectID composes an id from a type tag and a backend handle.
// Only the low 56 bits of handle are kept.
func NewObjectID(t ObjectType, handle uint64) ObjectID {
	return ObjectID(uint64(t)<<objectTypeShift | handle&handleMask)
}

// Type returns the embedded object-type tag.
func (id ObjectID) Type() ObjectType {
	return ObjectType(uint64(id) >> objectTypeShift)
}

// Handle returns the backend handle portion of the id.
func (id ObjectID) Handle() uint64 {
	return uint64(id) & handleMask
}

// IsNull reports whether id is the null object.
func (id ObjectID) IsNull() bool {
	return id == NullObjectID
}

func (id ObjectID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// Direction selects the ingress or egress side of a port.
type Direction uint8

const (
	Ingress Direction = iota
	Egress
)

func (d Direction) String() string {
	switch d {
	case Ingress:
		return "ingress"
	case Egress:
		return "egress"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "ingress" or "egress".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "ingress":
		return Ingress, nil
	case "egress":
		return Egress, nil
	default:
		return Ingress, fmt.Errorf("unknown direction %q", s)
	}
}
