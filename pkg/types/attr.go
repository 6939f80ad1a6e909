package types

import (
	"fmt"
	"net"
	"net/netip"
	"slices"
)

// AttrID identifies an attribute within one object type's attribute space.
type AttrID int32

// MACAddress is a fixed-size Ethernet address. Being an array, it copies by
// value, which keeps record snapshots independent.
type MACAddress [6]byte

// ParseMAC parses any format accepted by net.ParseMAC into a 48-bit address.
func ParseMAC(s string) (MACAddress, error) {
	var mac MACAddress
	hw, err := net.ParseMAC(s)
	if err != nil {
		return mac, err
	}
	if len(hw) != len(mac) {
		return mac, fmt.Errorf("%q is not a 48-bit MAC address", s)
	}
	copy(mac[:], hw)
	return mac, nil
}

// IsZero reports whether every octet is zero.
func (m MACAddress) IsZero() bool {
	return m == MACAddress{}
}

func (m MACAddress) String() string {
	return net.HardwareAddr(m[:]).String()
}

// AttrValue holds the value of one attribute. As with the SAI union, the
// attribute id decides which field is meaningful.
type AttrValue struct {
	Bool    bool
	U8      uint8
	U16     uint16
	U32     uint32
	S32     int32
	U64     uint64
	OID     ObjectID
	OIDList []ObjectID
	U32List []uint32
	MAC     MACAddress
	IP      netip.Addr
}

// Attribute is one {id, value} pair of an attribute list.
type Attribute struct {
	ID    AttrID
	Value AttrValue
}

func BoolAttr(id AttrID, v bool) Attribute {
	return Attribute{ID: id, Value: AttrValue{Bool: v}}
}

func U8Attr(id AttrID, v uint8) Attribute {
	return Attribute{ID: id, Value: AttrValue{U8: v}}
}

func U16Attr(id AttrID, v uint16) Attribute {
	return Attribute{ID: id, Value: AttrValue{U16: v}}
}

func U32Attr(id AttrID, v uint32) Attribute {
	return Attribute{ID: id, Value: AttrValue{U32: v}}
}

// S32Attr carries enum-typed attributes.
func S32Attr(id AttrID, v int32) Attribute {
	return Attribute{ID: id, Value: AttrValue{S32: v}}
}

func OIDAttr(id AttrID, v ObjectID) Attribute {
	return Attribute{ID: id, Value: AttrValue{OID: v}}
}

func OIDListAttr(id AttrID, v ...ObjectID) Attribute {
	return Attribute{ID: id, Value: AttrValue{OIDList: slices.Clone(v)}}
}

func MACAttr(id AttrID, v MACAddress) Attribute {
	return Attribute{ID: id, Value: AttrValue{MAC: v}}
}

func IPAttr(id AttrID, v netip.Addr) Attribute {
	return Attribute{ID: id, Value: AttrValue{IP: v}}
}

// AttrSet is a set of attribute ids. It replaces the fixed-width bitmap
// used for mandatory-attribute accounting, so any id value is representable.
type AttrSet map[AttrID]struct{}

// NewAttrSet returns a set holding ids.
func NewAttrSet(ids ...AttrID) AttrSet {
	s := make(AttrSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s AttrSet) Add(id AttrID) {
	s[id] = struct{}{}
}

// Has reports whether id is a member.
func (s AttrSet) Has(id AttrID) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the members of s and every other set.
func (s AttrSet) Union(others ...AttrSet) AttrSet {
	out := make(AttrSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, o := range others {
		for id := range o {
			out[id] = struct{}{}
		}
	}
	return out
}

// Missing returns the members of required that are absent from s, sorted.
// An empty result means s covers required.
func (s AttrSet) Missing(required AttrSet) []AttrID {
	var missing []AttrID
	for id := range required {
		if !s.Has(id) {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	return missing
}
