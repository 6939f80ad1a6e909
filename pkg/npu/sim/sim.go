// Package sim is an in-memory NPU backend. It keeps the state a real SDK
// would program into hardware, counts every call, and lets callers inject
// failures per operation. The CLI runs against it and module tests use it
// as their backend double.
package sim

import (
	"maps"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/netdev"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Name is the backend name reported by Backend.Name.
const Name = "sim"

// Op names one backend entry point for call counting and fault injection.
type Op string

const (
	OpSwitchInit Op = "switch.init"

	OpMirrorInit          Op = "mirror.init"
	OpMirrorCreate        Op = "mirror.session_create"
	OpMirrorDestroy       Op = "mirror.session_destroy"
	OpMirrorSet           Op = "mirror.session_set"
	OpMirrorGet           Op = "mirror.session_get"
	OpMirrorPortAdd       Op = "mirror.session_port_add"
	OpMirrorPortRemove    Op = "mirror.session_port_remove"
	OpMirrorAttrsValidate Op = "mirror.session_attribs_validate"

	OpSampleInit          Op = "samplepacket.init"
	OpSampleCreate        Op = "samplepacket.session_create"
	OpSampleDestroy       Op = "samplepacket.session_destroy"
	OpSampleSet           Op = "samplepacket.session_set"
	OpSampleGet           Op = "samplepacket.session_get"
	OpSamplePortAdd       Op = "samplepacket.session_port_add"
	OpSamplePortRemove    Op = "samplepacket.session_port_remove"
	OpSampleACLPortAdd    Op = "samplepacket.session_acl_port_add"
	OpSampleACLPortRemove Op = "samplepacket.session_acl_port_remove"

	OpPortSet        Op = "port.set_attribute"
	OpPortGet        Op = "port.get_attribute"
	OpPortGetStats   Op = "port.get_stats"
	OpPortClearStats Op = "port.clear_stats"

	OpQosPortSet Op = "qos.port_set"
)

// PortConfig describes one front-panel port.
type PortConfig struct {
	Index  uint32
	IfName string
	Lanes  []uint32
	Speed  uint32
}

// LagConfig describes a LAG by its member port indexes.
type LagConfig struct {
	Index   uint32
	Members []uint32
}

// ObjectConfig describes a pre-created object such as a QoS map or policer.
type ObjectConfig struct {
	Type  types.ObjectType
	Index uint64
}

// Config is the device the simulator pretends to be.
type Config struct {
	Ports   []PortConfig
	Lags    []LagConfig
	Vlans   []uint16
	Objects []ObjectConfig
	// Resolver maps port interface names to kernel links. Nil disables
	// netdev enrichment.
	Resolver netdev.Resolver
}

// Attachment is a session-to-port binding programmed into the simulator.
type Attachment struct {
	Session types.ObjectID
	Port    types.ObjectID
	Dir     types.Direction
	Flow    bool
}

// Backend is the simulated NPU.
type Backend struct {
	mu         sync.Mutex
	cfg        Config
	calls      map[Op]int
	faults     map[Op]error
	nextHandle uint64

	mirrorSessions map[types.ObjectID]npu.MirrorSession
	sampleSessions map[types.ObjectID]npu.SamplepacketSession
	attachments    map[Attachment]struct{}
	portAttrs      map[types.ObjectID]map[types.AttrID]types.AttrValue
	portQos        map[types.ObjectID]map[types.AttrID]types.AttrValue
	stats          map[types.ObjectID][]uint64
}

// New returns a simulator for the device described by cfg.
func New(cfg Config) *Backend {
	return &Backend{
		cfg:            cfg,
		calls:          make(map[Op]int),
		faults:         make(map[Op]error),
		mirrorSessions: make(map[types.ObjectID]npu.MirrorSession),
		sampleSessions: make(map[types.ObjectID]npu.SamplepacketSession),
		attachments:    make(map[Attachment]struct{}),
		portAttrs:      make(map[types.ObjectID]map[types.AttrID]types.AttrValue),
		portQos:        make(map[types.ObjectID]map[types.AttrID]types.AttrValue),
		stats:          make(map[types.ObjectID][]uint64),
	}
}

// NewPorts returns a simulator with n ports numbered 1..n and no other objects.
func NewPorts(n int) *Backend {
	cfg := Config{}
	for i := 1; i <= n; i++ {
		cfg.Ports = append(cfg.Ports, PortConfig{Index: uint32(i), Lanes: []uint32{uint32(i)}, Speed: 10000})
	}
	return New(cfg)
}

// PortID returns the object id the simulator assigns to port index.
func PortID(index uint32) types.ObjectID {
	return types.NewObjectID(types.ObjectTypePort, uint64(index))
}

// LagID returns the object id of LAG index.
func LagID(index uint32) types.ObjectID {
	return types.NewObjectID(types.ObjectTypeLag, uint64(index))
}

// VlanID returns the object id of VLAN vid.
func VlanID(vid uint16) types.ObjectID {
	return types.NewObjectID(types.ObjectTypeVlan, uint64(vid))
}

func (b *Backend) Name() string                      { return Name }
func (b *Backend) Switch() npu.SwitchAPI             { return switchAPI{b} }
func (b *Backend) Mirror() npu.MirrorAPI             { return mirrorAPI{b} }
func (b *Backend) Samplepacket() npu.SamplepacketAPI { return samplepacketAPI{b} }
func (b *Backend) Port() npu.PortAPI                 { return portAPI{b} }
func (b *Backend) Qos() npu.QosAPI                   { return qosAPI{b} }

// FailOn makes every subsequent call of op return err until ClearFault.
func (b *Backend) FailOn(op Op, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[op] = err
}

// ClearFault removes an injected failure.
func (b *Backend) ClearFault(op Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.faults, op)
}

// Calls returns how many times op has been invoked, including failed calls.
func (b *Backend) Calls(op Op) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// ResetCalls zeroes every call counter.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.calls)
}

// Attached reports whether a binding is currently programmed.
func (b *Backend) Attached(a Attachment) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.attachments[a]
	return ok
}

// Attachments returns every programmed binding.
func (b *Backend) Attachments() []Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Collect(maps.Keys(b.attachments))
}

// MirrorSessionCount returns the number of mirror sessions programmed.
func (b *Backend) MirrorSessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.mirrorSessions)
}

// SamplepacketSessionCount returns the number of samplepacket sessions programmed.
func (b *Backend) SamplepacketSessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sampleSessions)
}

// PortAttr returns the last value programmed for a port attribute.
func (b *Backend) PortAttr(port types.ObjectID, id types.AttrID) (types.AttrValue, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.portAttrs[port][id]
	return v, ok
}

// AddStat bumps a port counter, standing in for traffic.
func (b *Backend) AddStat(port types.ObjectID, stat types.PortStat, n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	counters := b.countersLocked(port)
	counters[stat] += n
}

// enter counts a call of op and returns its injected failure, if any.
// b.mu must be held.
func (b *Backend) enter(op Op) error {
	b.calls[op]++
	if err := b.faults[op]; err != nil {
		log.WithField("op", op).Debugf("sim: injected failure: %v", err)
		return err
	}
	return nil
}

// SetNextHandle makes h the handle returned by the next create.
func (b *Backend) SetNextHandle(h uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHandle = h - 1
}

func (b *Backend) allocHandle() uint64 {
	b.nextHandle++
	return b.nextHandle
}

func (b *Backend) countersLocked(port types.ObjectID) []uint64 {
	c, ok := b.stats[port]
	if !ok {
		c = make([]uint64, len(types.AllPortStats()))
		b.stats[port] = c
	}
	return c
}
