// Package npu defines the capability interfaces the adapter delegates
// hardware programming to. A concrete backend is chosen once at start-up
// and referenced through Backend for the life of the process; the adapter
// only passes plain structs in and checks the returned error.
package npu

import (
	"net/netip"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// MirrorSession is the parameter block of one mirror session as handed to
// the backend. It holds only value fields so a struct copy is a full
// snapshot.
type MirrorSession struct {
	ID              types.ObjectID
	Type            types.MirrorSessionType
	MonitorPort     types.ObjectID
	TruncateSize    uint16
	TC              uint8
	VlanTPID        uint16
	VlanID          uint16
	VlanPri         uint8
	VlanCFI         uint8
	VlanHeaderValid bool
	EncapType       types.ErspanEncapType
	IPHdrVersion    uint8
	TOS             uint8
	TTL             uint8
	SrcIP           netip.Addr
	DstIP           netip.Addr
	SrcMAC          types.MACAddress
	DstMAC          types.MACAddress
	GREProtocolType uint16
}

// SamplepacketSession is the parameter block of one samplepacket session.
type SamplepacketSession struct {
	ID   types.ObjectID
	Type types.SamplepacketType
	Mode types.SamplepacketMode
	Rate uint32
}

// SwitchAPI reports the objects that exist on the device.
type SwitchAPI interface {
	// Init brings the device up and discovers its fixed objects.
	Init() error
	// Objects lists ports, LAGs, VLANs and QoS objects known to the device.
	Objects() ([]inventory.Object, error)
}

// MirrorAPI programs mirror sessions.
type MirrorAPI interface {
	Init() error
	// SessionCreate programs s and returns the backend handle used to
	// compose the session object id. Handles must not exceed
	// types.MaxHandle (56 bits).
	SessionCreate(s *MirrorSession) (uint64, error)
	SessionDestroy(id types.ObjectID) error
	// SessionSet applies attr, already stored in s, to the hardware.
	SessionSet(s *MirrorSession, attr types.Attribute) error
	// SessionGet fills the values of attrs for s. s.Type tells the backend
	// which attributes are legal to read.
	SessionGet(s *MirrorSession, attrs []types.Attribute) error
	SessionPortAdd(id, port types.ObjectID, dir types.Direction) error
	SessionPortRemove(id, port types.ObjectID, dir types.Direction) error
	// SessionAttrValidate confirms the backend can program attr for a
	// session of type t.
	SessionAttrValidate(t types.MirrorSessionType, attr types.Attribute) error
}

// SamplepacketAPI programs samplepacket sessions and their port or
// ACL-driven attachments.
type SamplepacketAPI interface {
	Init() error
	// SessionCreate returns the backend handle for s. Handles must not
	// exceed types.MaxHandle (56 bits).
	SessionCreate(s *SamplepacketSession) (uint64, error)
	SessionDestroy(id types.ObjectID) error
	SessionSet(s *SamplepacketSession, attr types.Attribute) error
	SessionGet(s *SamplepacketSession, attrs []types.Attribute) error
	SessionPortAdd(id, port types.ObjectID, dir types.Direction) error
	SessionPortRemove(id, port types.ObjectID, dir types.Direction) error
	SessionACLPortAdd(id, port types.ObjectID, dir types.Direction) error
	SessionACLPortRemove(id, port types.ObjectID, dir types.Direction) error
}

// PortAPI programs generic port attributes and reads counters.
type PortAPI interface {
	PortSetAttribute(port types.ObjectID, attr types.Attribute) error
	PortGetAttribute(port types.ObjectID, attrs []types.Attribute) error
	PortGetStats(port types.ObjectID, ids []types.PortStat) ([]uint64, error)
	PortClearStats(port types.ObjectID, ids []types.PortStat) error
}

// QosAPI applies QoS profiles (maps, scheduler, policers, WRED) to ports.
type QosAPI interface {
	PortQosSet(port types.ObjectID, attr types.Attribute) error
}

// Backend groups the per-feature tables of one NPU implementation.
type Backend interface {
	Name() string
	Switch() SwitchAPI
	Mirror() MirrorAPI
	Samplepacket() SamplepacketAPI
	Port() PortAPI
	Qos() QosAPI
}
