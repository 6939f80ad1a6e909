package mirror

import (
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/npu/sim"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// ──────────────────────────────────────────────
//  helpers
// ──────────────────────────────────────────────

func newTestModule(t *testing.T) (*Module, *sim.Backend) {
	t.Helper()
	b := sim.New(sim.Config{
		Ports: []sim.PortConfig{{Index: 1}, {Index: 2}, {Index: 3}, {Index: 4}},
		Lags:  []sim.LagConfig{{Index: 1, Members: []uint32{3, 4}}},
	})
	require.NoError(t, b.Switch().Init())

	inv := inventory.New()
	objs, err := b.Switch().Objects()
	require.NoError(t, err)
	for _, o := range objs {
		require.NoError(t, inv.Add(o))
	}

	m := New(b.Mirror(), inv)
	require.NoError(t, m.Init())
	return m, b
}

func localAttrs(monitor types.ObjectID) []types.Attribute {
	return []types.Attribute{
		types.OIDAttr(types.MirrorAttrMonitorPort, monitor),
		types.S32Attr(types.MirrorAttrType, int32(types.MirrorLocal)),
	}
}

func remoteAttrs(monitor types.ObjectID) []types.Attribute {
	return []types.Attribute{
		types.S32Attr(types.MirrorAttrType, int32(types.MirrorRemote)),
		types.OIDAttr(types.MirrorAttrMonitorPort, monitor),
		types.U16Attr(types.MirrorAttrVlanTPID, 0x8100),
		types.U16Attr(types.MirrorAttrVlanID, 100),
		types.U8Attr(types.MirrorAttrVlanPri, 3),
	}
}

func erspanAttrs(monitor types.ObjectID) []types.Attribute {
	src, _ := types.ParseMAC("02:00:00:00:00:01")
	dst, _ := types.ParseMAC("02:00:00:00:00:02")
	return []types.Attribute{
		types.S32Attr(types.MirrorAttrType, int32(types.MirrorEnhancedRemote)),
		types.OIDAttr(types.MirrorAttrMonitorPort, monitor),
		types.S32Attr(types.MirrorAttrErspanEncapType, int32(types.ErspanEncapL3GRETunnel)),
		types.U8Attr(types.MirrorAttrIPHdrVersion, 4),
		types.U8Attr(types.MirrorAttrTOS, 0),
		types.IPAttr(types.MirrorAttrSrcIP, netip.MustParseAddr("10.0.0.1")),
		types.IPAttr(types.MirrorAttrDstIP, netip.MustParseAddr("10.0.0.2")),
		types.MACAttr(types.MirrorAttrSrcMAC, src),
		types.MACAttr(types.MirrorAttrDstMAC, dst),
		types.U16Attr(types.MirrorAttrGREProtocolType, 0x88be),
	}
}

// ──────────────────────────────────────────────
//  CreateSession
// ──────────────────────────────────────────────

func TestCreateSession_Local(t *testing.T) {
	m, b := newTestModule(t)

	id, err := m.CreateSession(localAttrs(sim.PortID(1)))
	require.NoError(t, err)
	assert.Equal(t, types.ObjectTypeMirrorSession, id.Type())
	assert.True(t, m.Exists(id))
	assert.Equal(t, 1, b.MirrorSessionCount())

	view, err := m.Session(id)
	require.NoError(t, err)
	assert.Equal(t, sim.PortID(1), view.Session.MonitorPort)
	assert.Equal(t, types.MirrorLocal, view.Session.Type)
	assert.Empty(t, view.Ports)
}

func TestCreateSession_LagMonitor(t *testing.T) {
	m, _ := newTestModule(t)
	_, err := m.CreateSession(localAttrs(sim.LagID(1)))
	assert.NoError(t, err)
}

func TestCreateSession_UniqueIDs(t *testing.T) {
	m, _ := newTestModule(t)

	seen := make(map[types.ObjectID]bool)
	for i := 0; i < 16; i++ {
		id, err := m.CreateSession(localAttrs(sim.PortID(1)))
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
	assert.Equal(t, 16, m.Count())
}

func TestCreateSession_ConcurrentUniqueIDs(t *testing.T) {
	m, _ := newTestModule(t)

	const workers = 8
	ids := make(chan types.ObjectID, workers*4)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				id, err := m.CreateSession(localAttrs(sim.PortID(2)))
				if err == nil {
					ids <- id
				}
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[types.ObjectID]bool)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers*4)
}

func TestCreateSession_RemoteMandatory(t *testing.T) {
	m, _ := newTestModule(t)

	// monitor port and type alone are not enough for RSPAN
	attrs := remoteAttrs(sim.PortID(1))
	_, err := m.CreateSession([]types.Attribute{attrs[0], attrs[1], attrs[2], attrs[4]})
	assert.Equal(t, types.StatusMandatoryAttributeMissing, err)
	assert.Equal(t, 0, m.Count())

	_, err = m.CreateSession(attrs)
	assert.NoError(t, err)
}

func TestCreateSession_EnhancedRemote(t *testing.T) {
	m, _ := newTestModule(t)

	_, err := m.CreateSession(erspanAttrs(sim.PortID(1)))
	require.NoError(t, err)

	// dropping the GRE protocol leaves the encapsulation incomplete
	attrs := erspanAttrs(sim.PortID(1))
	_, err = m.CreateSession(attrs[:len(attrs)-1])
	assert.Equal(t, types.StatusMandatoryAttributeMissing, err)
}

func TestCreateSession_TaggedErspanNeedsVlan(t *testing.T) {
	m, _ := newTestModule(t)

	attrs := append(erspanAttrs(sim.PortID(1)), types.BoolAttr(types.MirrorAttrVlanHeaderValid, true))
	_, err := m.CreateSession(attrs)
	assert.Equal(t, types.StatusMandatoryAttributeMissing, err)

	attrs = append(attrs,
		types.U16Attr(types.MirrorAttrVlanTPID, 0x8100),
		types.U16Attr(types.MirrorAttrVlanID, 20),
		types.U8Attr(types.MirrorAttrVlanPri, 0),
	)
	_, err = m.CreateSession(attrs)
	assert.NoError(t, err)
}

func TestCreateSession_MissingType(t *testing.T) {
	m, _ := newTestModule(t)
	_, err := m.CreateSession([]types.Attribute{types.OIDAttr(types.MirrorAttrMonitorPort, sim.PortID(1))})
	assert.Equal(t, types.StatusMandatoryAttributeMissing, err)
}

func TestCreateSession_InvalidBeatsMissing(t *testing.T) {
	m, _ := newTestModule(t)

	// vlan id missing and monitor port bogus: the bad value wins
	attrs := []types.Attribute{
		types.S32Attr(types.MirrorAttrType, int32(types.MirrorRemote)),
		types.OIDAttr(types.MirrorAttrMonitorPort, sim.PortID(42)),
	}
	_, err := m.CreateSession(attrs)
	assert.Equal(t, types.InvalidAttributeValue(1), err)
}

func TestCreateSession_UnknownAttribute(t *testing.T) {
	m, _ := newTestModule(t)
	attrs := append(localAttrs(sim.PortID(1)), types.U32Attr(1000, 1))
	_, err := m.CreateSession(attrs)
	assert.Equal(t, types.UnknownAttribute(2), err)
}

func TestCreateSession_InvalidValues(t *testing.T) {
	var zeroMAC types.MACAddress
	tests := []struct {
		name string
		attr types.Attribute
	}{
		{"bad_type", types.S32Attr(types.MirrorAttrType, 7)},
		{"monitor_is_vlan", types.OIDAttr(types.MirrorAttrMonitorPort, sim.VlanID(10))},
		{"tpid_zero", types.U16Attr(types.MirrorAttrVlanTPID, 0)},
		{"vlan_zero", types.U16Attr(types.MirrorAttrVlanID, 0)},
		{"vlan_4095", types.U16Attr(types.MirrorAttrVlanID, 4095)},
		{"pri_8", types.U8Attr(types.MirrorAttrVlanPri, 8)},
		{"cfi_2", types.U8Attr(types.MirrorAttrVlanCFI, 2)},
		{"encap_unknown", types.S32Attr(types.MirrorAttrErspanEncapType, 5)},
		{"ip_version_5", types.U8Attr(types.MirrorAttrIPHdrVersion, 5)},
		{"src_ip_unset", types.IPAttr(types.MirrorAttrSrcIP, netip.Addr{})},
		{"dst_ip_zero", types.IPAttr(types.MirrorAttrDstIP, netip.IPv4Unspecified())},
		{"src_mac_zero", types.MACAttr(types.MirrorAttrSrcMAC, zeroMAC)},
		{"dst_mac_zero", types.MACAttr(types.MirrorAttrDstMAC, zeroMAC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, b := newTestModule(t)
			attrs := append(localAttrs(sim.PortID(1)), tc.attr)
			_, err := m.CreateSession(attrs)
			assert.Equal(t, types.InvalidAttributeValue(2), err)
			assert.Equal(t, 0, b.Calls(sim.OpMirrorCreate), "backend must not be called")
		})
	}
}

func TestCreateSession_BackendRejectsAttribute(t *testing.T) {
	m, b := newTestModule(t)
	b.FailOn(sim.OpMirrorAttrsValidate, types.StatusNotSupported)

	_, err := m.CreateSession(localAttrs(sim.PortID(1)))
	assert.Equal(t, types.InvalidAttributeValue(0), err)
	assert.Equal(t, 0, b.Calls(sim.OpMirrorCreate))
}

func TestCreateSession_BackendFailureLeavesNoRecord(t *testing.T) {
	m, b := newTestModule(t)
	b.FailOn(sim.OpMirrorCreate, types.StatusInsufficientResources)

	id, err := m.CreateSession(localAttrs(sim.PortID(1)))
	assert.Equal(t, types.StatusInsufficientResources, err)
	assert.True(t, id.IsNull())
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.Sessions())
}

func TestCreateSession_HandleOutOfRange(t *testing.T) {
	m, b := newTestModule(t)
	b.SetNextHandle(types.MaxHandle)

	id, err := m.CreateSession(localAttrs(sim.PortID(1)))
	require.NoError(t, err)
	assert.Equal(t, uint64(types.MaxHandle), id.Handle())

	// the next handle no longer fits and would alias handle 0
	wide, err := m.CreateSession(localAttrs(sim.PortID(1)))
	assert.Equal(t, types.StatusFailure, err)
	assert.True(t, wide.IsNull())
	assert.Equal(t, 1, m.Count())
}

func TestCreateSession_Uninitialized(t *testing.T) {
	m := New(sim.NewPorts(1).Mirror(), inventory.New())
	_, err := m.CreateSession(localAttrs(sim.PortID(1)))
	assert.Equal(t, types.StatusFailure, err)
}

// ──────────────────────────────────────────────
//  RemoveSession
// ──────────────────────────────────────────────

func TestRemoveSession(t *testing.T) {
	m, b := newTestModule(t)
	id, err := m.CreateSession(localAttrs(sim.PortID(1)))
	require.NoError(t, err)

	require.NoError(t, m.RemoveSession(id))
	assert.False(t, m.Exists(id))
	assert.Equal(t, 0, b.MirrorSessionCount())

	assert.Equal(t, types.StatusInvalidObjectID, m.RemoveSession(id))
}

func TestRemoveSession_WrongType(t *testing.T) {
	m, b := newTestModule(t)
	err := m.RemoveSession(types.NewObjectID(types.ObjectTypeSamplepacket, 1))
	assert.Equal(t, types.StatusInvalidObjectType, err)
	assert.Equal(t, 0, b.Calls(sim.OpMirrorDestroy))
}

func TestRemoveSession_InUse(t *testing.T) {
	m, _ := newTestModule(t)
	id, err := m.CreateSession(localAttrs(sim.PortID(1)))
	require.NoError(t, err)
	require.NoError(t, m.SessionPortAdd(id, sim.PortID(2), types.Ingress))

	assert.Equal(t, types.StatusObjectInUse, m.RemoveSession(id))
	assert.True(t, m.Exists(id))

	require.NoError(t, m.SessionPortRemove(id, sim.PortID(2), types.Ingress))
	assert.NoError(t, m.RemoveSession(id))
}

func TestRemoveSession_BackendFailureKeepsSession(t *testing.T) {
	m, b := newTestModule(t)
	id, err := m.CreateSession(localAttrs(sim.PortID(1)))
	require.NoError(t, err)

	b.FailOn(sim.OpMirrorDestroy, types.StatusFailure)
	assert.Equal(t, types.StatusFailure, m.RemoveSession(id))
	assert.True(t, m.Exists(id))
}

// ──────────────────────────────────────────────
//  Set / Get
// ──────────────────────────────────────────────

func TestSetSessionAttribute(t *testing.T) {
	m, _ := newTestModule(t)
	id, err := m.CreateSession(remoteAttrs(sim.PortID(1)))
	require.NoError(t, err)

	require.NoError(t, m.SetSessionAttribute(id, types.U16Attr(types.MirrorAttrVlanID, 200)))
	view, _ := m.Session(id)
	assert.Equal(t, uint16(200), view.Session.VlanID)

	attrs := []types.Attribute{{ID: types.MirrorAttrVlanID}}
	require.NoError(t, m.GetSessionAttribute(id, attrs))
	assert.Equal(t, uint16(200), attrs[0].Value.U16)
}

func TestSetSessionAttribute_TypeIsCreateOnly(t *testing.T) {
	m, _ := newTestModule(t)
	id, _ := m.CreateSession(localAttrs(sim.PortID(1)))
	err := m.SetSessionAttribute(id, types.S32Attr(types.MirrorAttrType, int32(types.MirrorRemote)))
	assert.Equal(t, types.InvalidAttribute(0), err)
}

func TestSetSessionAttribute_InvalidValueUnchanged(t *testing.T) {
	m, b := newTestModule(t)
	id, _ := m.CreateSession(remoteAttrs(sim.PortID(1)))

	err := m.SetSessionAttribute(id, types.U16Attr(types.MirrorAttrVlanID, 5000))
	assert.Equal(t, types.InvalidAttributeValue(0), err)
	assert.Equal(t, 0, b.Calls(sim.OpMirrorSet))

	view, _ := m.Session(id)
	assert.Equal(t, uint16(100), view.Session.VlanID)
}

func TestSetSessionAttribute_BackendFailureRollsBack(t *testing.T) {
	m, b := newTestModule(t)
	id, _ := m.CreateSession(localAttrs(sim.PortID(1)))
	b.FailOn(sim.OpMirrorSet, types.StatusInsufficientResources)

	err := m.SetSessionAttribute(id, types.OIDAttr(types.MirrorAttrMonitorPort, sim.PortID(2)))
	assert.Equal(t, types.StatusInsufficientResources, err)

	view, _ := m.Session(id)
	assert.Equal(t, sim.PortID(1), view.Session.MonitorPort)
}

func TestGetSessionAttribute_TypeLegality(t *testing.T) {
	m, _ := newTestModule(t)
	id, _ := m.CreateSession(localAttrs(sim.PortID(1)))

	attrs := []types.Attribute{{ID: types.MirrorAttrMonitorPort}, {ID: types.MirrorAttrType}}
	require.NoError(t, m.GetSessionAttribute(id, attrs))
	assert.Equal(t, sim.PortID(1), attrs[0].Value.OID)
	assert.Equal(t, int32(types.MirrorLocal), attrs[1].Value.S32)

	// VLAN fields are not readable on a local session
	err := m.GetSessionAttribute(id, []types.Attribute{{ID: types.MirrorAttrVlanID}})
	assert.Equal(t, types.InvalidAttribute(0), err)

	assert.Equal(t, types.StatusInvalidParameter, m.GetSessionAttribute(id, nil))
}

func TestGetSessionAttribute_Unknown(t *testing.T) {
	m, _ := newTestModule(t)
	missing := types.NewObjectID(types.ObjectTypeMirrorSession, 99)
	err := m.GetSessionAttribute(missing, []types.Attribute{{ID: types.MirrorAttrType}})
	assert.Equal(t, types.StatusInvalidObjectID, err)
}
