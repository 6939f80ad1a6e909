package adapter

import (
	"fmt"
	"net/netip"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/config"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

const (
	defaultTPID        = 0x8100
	defaultGREProtocol = 0x88be
	defaultIPVersion   = 4
)

// Applied maps configured session names to the ids they were created with.
type Applied struct {
	Mirrors       map[string]types.ObjectID
	Samplepackets map[string]types.ObjectID
}

// Apply creates the configured sessions, then applies port settings and
// ACL sampling bindings. It stops at the first error; whatever was applied
// before it stays in place.
func (s *Switch) Apply(cfg *config.Config) (*Applied, error) {
	out := &Applied{
		Mirrors:       make(map[string]types.ObjectID),
		Samplepackets: make(map[string]types.ObjectID),
	}

	for _, ms := range cfg.MirrorSessions {
		attrs, err := s.mirrorAttrs(ms)
		if err != nil {
			return out, fmt.Errorf("mirror session %s: %w", ms.Name, err)
		}
		id, err := s.Mirror.CreateSession(attrs)
		if err != nil {
			return out, fmt.Errorf("mirror session %s: %w", ms.Name, err)
		}
		out.Mirrors[ms.Name] = id
		log.Infof("Created mirror session %s (%s)", ms.Name, id)
	}

	for _, ss := range cfg.SamplepacketSessions {
		mode, err := types.ParseSamplepacketMode(ss.Mode)
		if err != nil {
			return out, fmt.Errorf("samplepacket session %s: %w", ss.Name, err)
		}
		id, err := s.Samplepacket.CreateSession([]types.Attribute{
			types.U32Attr(types.SamplepacketAttrSampleRate, ss.Rate),
			types.S32Attr(types.SamplepacketAttrType, int32(types.SamplepacketSlowPath)),
			types.S32Attr(types.SamplepacketAttrMode, int32(mode)),
		})
		if err != nil {
			return out, fmt.Errorf("samplepacket session %s: %w", ss.Name, err)
		}
		out.Samplepackets[ss.Name] = id
		log.Infof("Created samplepacket session %s (%s)", ss.Name, id)
	}

	for _, ps := range cfg.Ports {
		if err := s.applyPort(ps, out); err != nil {
			return out, fmt.Errorf("port %s: %w", ps.Port, err)
		}
	}

	for _, as := range cfg.ACLSamples {
		portID, err := s.resolve(as.Port, types.ObjectTypePort, types.ObjectTypeLag)
		if err != nil {
			return out, fmt.Errorf("acl sample on %s: %w", as.Port, err)
		}
		dir, err := types.ParseDirection(as.Direction)
		if err != nil {
			return out, fmt.Errorf("acl sample on %s: %w", as.Port, err)
		}
		id, ok := out.Samplepackets[as.Session]
		if !ok {
			return out, fmt.Errorf("acl sample on %s: unknown session %q", as.Port, as.Session)
		}
		if err := s.Samplepacket.SessionPortAdd(id, portID, dir, types.SampleFlowBased); err != nil {
			return out, fmt.Errorf("acl sample %s on %s: %w", as.Session, as.Port, err)
		}
	}
	return out, nil
}

// resolve returns the id of the inventory object called name.
func (s *Switch) resolve(name string, allowed ...types.ObjectType) (types.ObjectID, error) {
	obj, ok := s.Inventory.Lookup(name)
	if !ok {
		return types.NullObjectID, fmt.Errorf("unknown object %q", name)
	}
	if !slices.Contains(allowed, obj.ID.Type()) {
		return types.NullObjectID, fmt.Errorf("object %q is a %s", name, obj.ID.Type())
	}
	return obj.ID, nil
}

func (s *Switch) mirrorAttrs(ms config.MirrorSession) ([]types.Attribute, error) {
	typ, err := types.ParseMirrorSessionType(ms.Type)
	if err != nil {
		return nil, err
	}
	monitor, err := s.resolve(ms.MonitorPort, types.ObjectTypePort, types.ObjectTypeLag)
	if err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		types.S32Attr(types.MirrorAttrType, int32(typ)),
		types.OIDAttr(types.MirrorAttrMonitorPort, monitor),
	}
	if ms.TruncateSize > 0 {
		attrs = append(attrs, types.U16Attr(types.MirrorAttrTruncateSize, ms.TruncateSize))
	}
	if ms.TC > 0 {
		attrs = append(attrs, types.U8Attr(types.MirrorAttrTC, ms.TC))
	}

	tagged := typ == types.MirrorRemote || (typ == types.MirrorEnhancedRemote && ms.VlanID > 0)
	if typ == types.MirrorEnhancedRemote {
		erspan, err := erspanAttrs(ms)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, erspan...)
		attrs = append(attrs, types.BoolAttr(types.MirrorAttrVlanHeaderValid, tagged))
	}
	if tagged {
		tpid := ms.VlanTPID
		if tpid == 0 {
			tpid = defaultTPID
		}
		attrs = append(attrs,
			types.U16Attr(types.MirrorAttrVlanTPID, tpid),
			types.U16Attr(types.MirrorAttrVlanID, ms.VlanID),
			types.U8Attr(types.MirrorAttrVlanPri, ms.VlanPri),
		)
		if ms.VlanCFI > 0 {
			attrs = append(attrs, types.U8Attr(types.MirrorAttrVlanCFI, ms.VlanCFI))
		}
	}
	return attrs, nil
}

func erspanAttrs(ms config.MirrorSession) ([]types.Attribute, error) {
	src, err := netip.ParseAddr(ms.SrcIP)
	if err != nil {
		return nil, fmt.Errorf("src_ip: %w", err)
	}
	dst, err := netip.ParseAddr(ms.DstIP)
	if err != nil {
		return nil, fmt.Errorf("dst_ip: %w", err)
	}
	srcMAC, err := types.ParseMAC(ms.SrcMAC)
	if err != nil {
		return nil, fmt.Errorf("src_mac: %w", err)
	}
	dstMAC, err := types.ParseMAC(ms.DstMAC)
	if err != nil {
		return nil, fmt.Errorf("dst_mac: %w", err)
	}
	version := ms.IPVersion
	if version == 0 {
		version = defaultIPVersion
	}
	gre := ms.GREProtocol
	if gre == 0 {
		gre = defaultGREProtocol
	}

	attrs := []types.Attribute{
		types.S32Attr(types.MirrorAttrErspanEncapType, int32(types.ErspanEncapL3GRETunnel)),
		types.U8Attr(types.MirrorAttrIPHdrVersion, version),
		types.U8Attr(types.MirrorAttrTOS, ms.TOS),
		types.IPAttr(types.MirrorAttrSrcIP, src),
		types.IPAttr(types.MirrorAttrDstIP, dst),
		types.MACAttr(types.MirrorAttrSrcMAC, srcMAC),
		types.MACAttr(types.MirrorAttrDstMAC, dstMAC),
		types.U16Attr(types.MirrorAttrGREProtocolType, gre),
	}
	if ms.TTL > 0 {
		attrs = append(attrs, types.U8Attr(types.MirrorAttrTTL, ms.TTL))
	}
	return attrs, nil
}

func (s *Switch) applyPort(ps config.PortSettings, applied *Applied) error {
	portID, err := s.resolve(ps.Port, types.ObjectTypePort)
	if err != nil {
		return err
	}

	var attrs []types.Attribute
	if ps.AdminState != nil {
		attrs = append(attrs, types.BoolAttr(types.PortAttrAdminState, *ps.AdminState))
	}
	if ps.MTU > 0 {
		attrs = append(attrs, types.U32Attr(types.PortAttrMTU, ps.MTU))
	}
	if ps.DefaultVlan > 0 {
		attrs = append(attrs, types.U16Attr(types.PortAttrPortVlanID, ps.DefaultVlan))
	}
	if ps.DropUntagged != nil {
		attrs = append(attrs, types.BoolAttr(types.PortAttrDropUntagged, *ps.DropUntagged))
	}
	if ps.DropTagged != nil {
		attrs = append(attrs, types.BoolAttr(types.PortAttrDropTagged, *ps.DropTagged))
	}
	if ps.IngressMirror != nil {
		ids, err := sessionIDs(ps.IngressMirror, applied.Mirrors)
		if err != nil {
			return err
		}
		attrs = append(attrs, types.OIDListAttr(types.PortAttrIngressMirrorSession, ids...))
	}
	if ps.EgressMirror != nil {
		ids, err := sessionIDs(ps.EgressMirror, applied.Mirrors)
		if err != nil {
			return err
		}
		attrs = append(attrs, types.OIDListAttr(types.PortAttrEgressMirrorSession, ids...))
	}
	if ps.IngressSample != "" {
		ids, err := sessionIDs([]string{ps.IngressSample}, applied.Samplepackets)
		if err != nil {
			return err
		}
		attrs = append(attrs, types.OIDAttr(types.PortAttrIngressSamplepacketEnable, ids[0]))
	}
	if ps.EgressSample != "" {
		ids, err := sessionIDs([]string{ps.EgressSample}, applied.Samplepackets)
		if err != nil {
			return err
		}
		attrs = append(attrs, types.OIDAttr(types.PortAttrEgressSamplepacketEnable, ids[0]))
	}
	if ps.EgressBlock != nil {
		var members []types.ObjectID
		for _, name := range ps.EgressBlock {
			id, err := s.resolve(name, types.ObjectTypePort)
			if err != nil {
				return err
			}
			members = append(members, id)
		}
		attrs = append(attrs, types.OIDListAttr(types.PortAttrEgressBlockPortList, members...))
	}
	if ps.Qos != nil {
		qosAttrs, err := s.qosAttrs(ps.Qos)
		if err != nil {
			return err
		}
		attrs = append(attrs, qosAttrs...)
	}

	for _, attr := range attrs {
		if err := s.Port.SetAttribute(portID, attr); err != nil {
			return fmt.Errorf("attribute %d: %w", attr.ID, err)
		}
	}
	log.Debugf("Applied %d attribute(s) to %s", len(attrs), ps.Port)
	return nil
}

func (s *Switch) qosAttrs(q *config.PortQos) ([]types.Attribute, error) {
	var attrs []types.Attribute
	if q.DefaultTC != nil {
		attrs = append(attrs, types.U8Attr(types.PortAttrQosDefaultTC, *q.DefaultTC))
	}
	refs := []struct {
		id   types.AttrID
		name string
		typ  types.ObjectType
	}{
		{types.PortAttrQosDot1pToTCMap, q.Dot1pToTCMap, types.ObjectTypeQosMap},
		{types.PortAttrQosDscpToTCMap, q.DscpToTCMap, types.ObjectTypeQosMap},
		{types.PortAttrQosTCToQueueMap, q.TCToQueueMap, types.ObjectTypeQosMap},
		{types.PortAttrQosSchedulerProfileID, q.Scheduler, types.ObjectTypeScheduler},
		{types.PortAttrQosWredProfileID, q.Wred, types.ObjectTypeWred},
		{types.PortAttrFloodStormControlPolicerID, q.FloodPolicer, types.ObjectTypePolicer},
		{types.PortAttrBroadcastStormControlPolicerID, q.BroadcastPolicer, types.ObjectTypePolicer},
		{types.PortAttrMulticastStormControlPolicerID, q.MulticastPolicer, types.ObjectTypePolicer},
	}
	for _, r := range refs {
		if r.name == "" {
			continue
		}
		id, err := s.resolve(r.name, r.typ)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, types.OIDAttr(r.id, id))
	}
	return attrs, nil
}

func sessionIDs(names []string, known map[string]types.ObjectID) ([]types.ObjectID, error) {
	ids := make([]types.ObjectID, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown session %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
