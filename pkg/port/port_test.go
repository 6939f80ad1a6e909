package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/mirror"
	"github.com/Nativu5/sai-adapter/pkg/npu/sim"
	"github.com/Nativu5/sai-adapter/pkg/qos"
	"github.com/Nativu5/sai-adapter/pkg/samplepacket"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// ──────────────────────────────────────────────
//  fixture
// ──────────────────────────────────────────────

// recordingMirrors counts attach and detach calls per session.
type recordingMirrors struct {
	*mirror.Module
	adds    map[types.ObjectID]int
	removes map[types.ObjectID]int
}

func (r *recordingMirrors) SessionPortAdd(id, port types.ObjectID, dir types.Direction) error {
	r.adds[id]++
	return r.Module.SessionPortAdd(id, port, dir)
}

func (r *recordingMirrors) SessionPortRemove(id, port types.ObjectID, dir types.Direction) error {
	r.removes[id]++
	return r.Module.SessionPortRemove(id, port, dir)
}

type fixture struct {
	b       *sim.Backend
	inv     *inventory.DB
	mirrors *recordingMirrors
	samples *samplepacket.Module
	qos     *qos.Module
	ports   *Module
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := sim.New(sim.Config{
		Ports:   []sim.PortConfig{{Index: 1}, {Index: 2}, {Index: 3}, {Index: 4}},
		Vlans:   []uint16{10},
		Objects: []sim.ObjectConfig{{Type: types.ObjectTypeQosMap, Index: 1}},
	})
	require.NoError(t, b.Switch().Init())

	inv := inventory.New()
	objs, err := b.Switch().Objects()
	require.NoError(t, err)
	for _, o := range objs {
		require.NoError(t, inv.Add(o))
	}

	f := &fixture{b: b, inv: inv}
	mm := mirror.New(b.Mirror(), inv)
	require.NoError(t, mm.Init())
	f.mirrors = &recordingMirrors{
		Module:  mm,
		adds:    make(map[types.ObjectID]int),
		removes: make(map[types.ObjectID]int),
	}
	f.samples = samplepacket.New(b.Samplepacket(), inv)
	require.NoError(t, f.samples.Init())
	f.qos = qos.New(b.Qos(), inv)
	f.ports = New(Options{
		Backend:   b.Port(),
		Inv:       inv,
		Mirrors:   f.mirrors,
		Samplers:  f.samples,
		QoS:       f.qos,
		IsQosAttr: qos.IsPortAttr,
	})
	require.NoError(t, f.ports.Init())
	return f
}

func (f *fixture) localSession(t *testing.T) types.ObjectID {
	t.Helper()
	id, err := f.mirrors.CreateSession([]types.Attribute{
		types.OIDAttr(types.MirrorAttrMonitorPort, sim.PortID(1)),
		types.S32Attr(types.MirrorAttrType, int32(types.MirrorLocal)),
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) sampleSession(t *testing.T, rate uint32) types.ObjectID {
	t.Helper()
	id, err := f.samples.CreateSession([]types.Attribute{
		types.U32Attr(types.SamplepacketAttrSampleRate, rate),
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) get(t *testing.T, port types.ObjectID, id types.AttrID) types.AttrValue {
	t.Helper()
	attrs := []types.Attribute{{ID: id}}
	require.NoError(t, f.ports.GetAttribute(port, attrs))
	return attrs[0].Value
}

// ──────────────────────────────────────────────
//  dispatch checks
// ──────────────────────────────────────────────

func TestSetAttribute_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		port types.ObjectID
		attr types.Attribute
		want error
	}{
		{"not_a_port", sim.LagID(1), types.U32Attr(types.PortAttrMTU, 1500), types.StatusInvalidObjectType},
		{"missing_port", sim.PortID(8), types.U32Attr(types.PortAttrMTU, 1500), types.StatusInvalidObjectID},
		{"unknown_attr", sim.PortID(1), types.U32Attr(500, 1), types.UnknownAttribute(0)},
		{"read_only_type", sim.PortID(1), types.S32Attr(types.PortAttrType, 0), types.InvalidAttribute(0)},
		{"read_only_oper", sim.PortID(1), types.S32Attr(types.PortAttrOperStatus, types.PortOperStatusUp), types.InvalidAttribute(0)},
		{"pvid_zero", sim.PortID(1), types.U16Attr(types.PortAttrPortVlanID, 0), types.InvalidAttributeValue(0)},
		{"pvid_4095", sim.PortID(1), types.U16Attr(types.PortAttrPortVlanID, 4095), types.InvalidAttributeValue(0)},
		{"priority", sim.PortID(1), types.U8Attr(types.PortAttrDefaultVlanPriority, 8), types.InvalidAttributeValue(0)},
		{"mirror_not_session", sim.PortID(1), types.OIDListAttr(types.PortAttrIngressMirrorSession, sim.PortID(2)), types.InvalidAttributeValue(0)},
		{"mirror_missing", sim.PortID(1), types.OIDListAttr(types.PortAttrIngressMirrorSession, types.NewObjectID(types.ObjectTypeMirrorSession, 77)), types.InvalidAttributeValue(0)},
		{"sample_not_session", sim.PortID(1), types.OIDAttr(types.PortAttrIngressSamplepacketEnable, sim.VlanID(10)), types.InvalidAttributeValue(0)},
		{"block_self", sim.PortID(1), types.OIDListAttr(types.PortAttrEgressBlockPortList, sim.PortID(1)), types.InvalidAttributeValue(0)},
		{"block_not_port", sim.PortID(1), types.OIDListAttr(types.PortAttrEgressBlockPortList, sim.VlanID(10)), types.InvalidAttributeValue(0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.ports.SetAttribute(tc.port, tc.attr))
		})
	}
	assert.False(t, f.ports.Bound(sim.PortID(1)))
	assert.Equal(t, 0, f.b.Calls(sim.OpPortSet))
}

func TestSetAttribute_Uninitialized(t *testing.T) {
	b := sim.NewPorts(1)
	m := New(Options{Backend: b.Port(), Inv: inventory.New()})
	err := m.SetAttribute(sim.PortID(1), types.U32Attr(types.PortAttrMTU, 1500))
	assert.Equal(t, types.StatusFailure, err)
}

func TestSetAttribute_DropUntaggedNoOp(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(2)

	require.NoError(t, f.ports.SetAttribute(port, types.BoolAttr(types.PortAttrDropUntagged, true)))
	require.NoError(t, f.ports.SetAttribute(port, types.BoolAttr(types.PortAttrDropUntagged, true)))
	assert.Equal(t, 1, f.b.Calls(sim.OpPortSet))

	require.NoError(t, f.ports.SetAttribute(port, types.BoolAttr(types.PortAttrDropUntagged, false)))
	assert.Equal(t, 2, f.b.Calls(sim.OpPortSet))

	// the tagged knob has its own cache entry
	require.NoError(t, f.ports.SetAttribute(port, types.BoolAttr(types.PortAttrDropTagged, false)))
	assert.Equal(t, 3, f.b.Calls(sim.OpPortSet))
}

func TestSetAttribute_DefaultGoesToBackend(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(3)

	require.NoError(t, f.ports.SetAttribute(port, types.U32Attr(types.PortAttrMTU, 9100)))
	v, ok := f.b.PortAttr(port, types.PortAttrMTU)
	require.True(t, ok)
	assert.Equal(t, uint32(9100), v.U32)

	// served from the cache
	assert.Equal(t, uint32(9100), f.get(t, port, types.PortAttrMTU).U32)
	assert.Equal(t, 0, f.b.Calls(sim.OpPortGet))
}

func TestSetAttribute_BackendFailureNotCached(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(3)
	f.b.FailOn(sim.OpPortSet, types.StatusNotSupported)

	err := f.ports.SetAttribute(port, types.U32Attr(types.PortAttrSpeed, 40000))
	assert.Equal(t, types.StatusNotSupported, err)

	info, err := f.ports.Info(port)
	require.NoError(t, err)
	assert.Empty(t, info.Attrs)
}

func TestSetAttribute_ACLIsNoOp(t *testing.T) {
	f := newFixture(t)
	acl := types.NewObjectID(types.ObjectTypeAcl, 1)
	require.NoError(t, f.ports.SetAttribute(sim.PortID(1), types.OIDAttr(types.PortAttrIngressACL, acl)))
	assert.Equal(t, 0, f.b.Calls(sim.OpPortSet))
	assert.Equal(t, acl, f.get(t, sim.PortID(1), types.PortAttrIngressACL).OID)
}

func TestSetAttribute_QosDelegated(t *testing.T) {
	f := newFixture(t)
	qmap := types.NewObjectID(types.ObjectTypeQosMap, 1)

	require.NoError(t, f.ports.SetAttribute(sim.PortID(2), types.OIDAttr(types.PortAttrQosDscpToTCMap, qmap)))
	assert.Equal(t, 1, f.b.Calls(sim.OpQosPortSet))
	assert.Equal(t, 0, f.b.Calls(sim.OpPortSet))
	assert.Equal(t, qmap, f.get(t, sim.PortID(2), types.PortAttrQosDscpToTCMap).OID)

	err := f.ports.SetAttribute(sim.PortID(2), types.OIDAttr(types.PortAttrQosSchedulerProfileID, qmap))
	assert.Equal(t, types.InvalidAttributeValue(0), err)
}

// ──────────────────────────────────────────────
//  mirror list reconciliation
// ──────────────────────────────────────────────

func TestMirrorList_Reconcile(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(2)
	a, b, c := f.localSession(t), f.localSession(t), f.localSession(t)

	require.NoError(t, f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrIngressMirrorSession, a, b)))
	require.NoError(t, f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrIngressMirrorSession, b, c)))

	assert.Equal(t, 1, f.mirrors.adds[a])
	assert.Equal(t, 1, f.mirrors.removes[a])
	assert.Equal(t, 1, f.mirrors.adds[b], "b must not be re-added")
	assert.Equal(t, 0, f.mirrors.removes[b], "b must not be detached")
	assert.Equal(t, 1, f.mirrors.adds[c])
	assert.Equal(t, 0, f.mirrors.removes[c])

	assert.ElementsMatch(t, []types.ObjectID{b, c}, f.get(t, port, types.PortAttrIngressMirrorSession).OIDList)
	assert.Empty(t, f.get(t, port, types.PortAttrEgressMirrorSession).OIDList)
}

func TestMirrorList_DirectionsIndependent(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(2)
	a := f.localSession(t)

	require.NoError(t, f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrIngressMirrorSession, a)))
	require.NoError(t, f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrEgressMirrorSession, a)))
	require.NoError(t, f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrIngressMirrorSession)))

	assert.Equal(t, []types.ObjectID{a}, f.get(t, port, types.PortAttrEgressMirrorSession).OIDList)
	assert.True(t, f.ports.Bound(port))
	assert.Equal(t, types.StatusObjectInUse, f.mirrors.RemoveSession(a))
}

func TestMirrorList_PartialFailureKeepsEarlierEntries(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(2)
	a, b := f.localSession(t), f.localSession(t)

	// b is already bound to the port outside the dispatcher
	require.NoError(t, f.mirrors.Module.SessionPortAdd(b, port, types.Ingress))

	err := f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrIngressMirrorSession, a, b))
	assert.Equal(t, types.StatusItemAlreadyExists, err)
	assert.Equal(t, []types.ObjectID{a}, f.get(t, port, types.PortAttrIngressMirrorSession).OIDList)
}

func TestMirrorList_ScenarioLocalSession(t *testing.T) {
	f := newFixture(t)
	p2 := sim.PortID(2)
	id := f.localSession(t)

	require.NoError(t, f.ports.SetAttribute(p2, types.OIDListAttr(types.PortAttrIngressMirrorSession, id)))
	assert.Equal(t, []types.ObjectID{id}, f.get(t, p2, types.PortAttrIngressMirrorSession).OIDList)

	require.NoError(t, f.ports.SetAttribute(p2, types.OIDListAttr(types.PortAttrIngressMirrorSession)))
	assert.Equal(t, 1, f.b.Calls(sim.OpMirrorPortRemove))
	assert.False(t, f.ports.Bound(p2))

	assert.NoError(t, f.mirrors.RemoveSession(id))
}

// ──────────────────────────────────────────────
//  samplepacket enable
// ──────────────────────────────────────────────

func TestSamplepacket_ScenarioPortBased(t *testing.T) {
	f := newFixture(t)
	p2 := sim.PortID(2)
	first := f.sampleSession(t, 100)
	second := f.sampleSession(t, 200)

	require.NoError(t, f.ports.SetAttribute(p2, types.OIDAttr(types.PortAttrIngressSamplepacketEnable, first)))
	assert.Equal(t, first, f.get(t, p2, types.PortAttrIngressSamplepacketEnable).OID)

	err := f.ports.SetAttribute(p2, types.OIDAttr(types.PortAttrIngressSamplepacketEnable, second))
	assert.Equal(t, types.StatusObjectInUse, err)

	// same session again changes nothing
	require.NoError(t, f.ports.SetAttribute(p2, types.OIDAttr(types.PortAttrIngressSamplepacketEnable, first)))
	assert.Equal(t, 1, f.b.Calls(sim.OpSamplePortAdd))

	require.NoError(t, f.ports.SetAttribute(p2, types.OIDAttr(types.PortAttrIngressSamplepacketEnable, types.NullObjectID)))
	assert.False(t, f.ports.Bound(p2))

	require.NoError(t, f.ports.SetAttribute(p2, types.OIDAttr(types.PortAttrIngressSamplepacketEnable, second)))
	assert.Equal(t, second, f.get(t, p2, types.PortAttrIngressSamplepacketEnable).OID)
	assert.True(t, f.b.Attached(sim.Attachment{Session: second, Port: p2, Dir: types.Ingress}))
}

func TestSamplepacket_DisableWhenUnset(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ports.SetAttribute(sim.PortID(3),
		types.OIDAttr(types.PortAttrEgressSamplepacketEnable, types.NullObjectID)))
	assert.Equal(t, 0, f.b.Calls(sim.OpSamplePortRemove))
}

// ──────────────────────────────────────────────
//  egress block list
// ──────────────────────────────────────────────

func TestEgressBlockList(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(1)

	require.NoError(t, f.ports.SetAttribute(port,
		types.OIDListAttr(types.PortAttrEgressBlockPortList, sim.PortID(2), sim.PortID(3))))
	assert.True(t, f.ports.Bound(port))
	assert.Equal(t, []types.ObjectID{sim.PortID(2), sim.PortID(3)},
		f.get(t, port, types.PortAttrEgressBlockPortList).OIDList)

	require.NoError(t, f.ports.SetAttribute(port, types.OIDListAttr(types.PortAttrEgressBlockPortList)))
	assert.False(t, f.ports.Bound(port))
	assert.Equal(t, 2, f.b.Calls(sim.OpPortSet))
}

// ──────────────────────────────────────────────
//  get / stats
// ──────────────────────────────────────────────

func TestGetAttribute_Backend(t *testing.T) {
	f := newFixture(t)
	attrs := []types.Attribute{{ID: types.PortAttrOperStatus}, {ID: types.PortAttrHwLaneList}}
	require.NoError(t, f.ports.GetAttribute(sim.PortID(1), attrs))
	assert.Equal(t, types.PortOperStatusDown, attrs[0].Value.S32)
	assert.Equal(t, 2, f.b.Calls(sim.OpPortGet))
}

func TestGetAttribute_Errors(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(1)

	assert.Equal(t, types.StatusInvalidParameter, f.ports.GetAttribute(port, nil))
	assert.Equal(t, types.UnknownAttribute(1),
		f.ports.GetAttribute(port, []types.Attribute{{ID: types.PortAttrMTU}, {ID: 900}}))

	require.NoError(t, f.ports.SetAttribute(port, types.U32Attr(types.PortAttrMTU, 1500)))
	f.b.FailOn(sim.OpPortGet, types.AttrNotSupported(0))
	err := f.ports.GetAttribute(port, []types.Attribute{{ID: types.PortAttrMTU}, {ID: types.PortAttrOperStatus}})
	assert.Equal(t, types.AttrNotSupported(1), err)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	port := sim.PortID(4)
	f.b.AddStat(port, types.PortStatIfInOctets, 1000)
	f.b.AddStat(port, types.PortStatIfOutErrors, 3)

	ids := []types.PortStat{types.PortStatIfInOctets, types.PortStatIfOutErrors}
	got, err := f.ports.GetStats(port, ids)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1000, 3}, got)

	require.NoError(t, f.ports.ClearStats(port, ids[:1]))
	got, err = f.ports.GetStats(port, ids)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 3}, got)

	_, err = f.ports.GetStats(port, nil)
	assert.Equal(t, types.StatusInvalidParameter, err)
	_, err = f.ports.GetStats(sim.LagID(1), ids)
	assert.Equal(t, types.StatusInvalidObjectType, err)
}

func TestPortsView(t *testing.T) {
	f := newFixture(t)
	id := f.localSession(t)
	require.NoError(t, f.ports.SetAttribute(sim.PortID(2), types.OIDListAttr(types.PortAttrEgressMirrorSession, id)))

	infos := f.ports.Ports()
	require.Len(t, infos, 4)
	assert.Equal(t, sim.PortID(1), infos[0].ID)
	assert.Equal(t, []types.ObjectID{id}, infos[1].EgressMirror)
	assert.Empty(t, infos[0].EgressMirror)
}
