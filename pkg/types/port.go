package types

// Port attribute ids.
const (
	PortAttrType AttrID = iota
	PortAttrOperStatus
	PortAttrHwLaneList
	PortAttrSupportedSpeed
	PortAttrSpeed
	PortAttrAdminState
	PortAttrMTU
	PortAttrPortVlanID
	PortAttrDefaultVlanPriority
	PortAttrDropUntagged
	PortAttrDropTagged
	PortAttrIngressFiltering
	PortAttrFDBLearningMode
	PortAttrIngressMirrorSession
	PortAttrEgressMirrorSession
	PortAttrIngressSamplepacketEnable
	PortAttrEgressSamplepacketEnable
	PortAttrIngressACL
	PortAttrEgressACL
	PortAttrQosDefaultTC
	PortAttrQosDot1pToTCMap
	PortAttrQosDscpToTCMap
	PortAttrQosTCToQueueMap
	PortAttrQosSchedulerProfileID
	PortAttrFloodStormControlPolicerID
	PortAttrBroadcastStormControlPolicerID
	PortAttrMulticastStormControlPolicerID
	PortAttrQosWredProfileID
	PortAttrEgressBlockPortList
	PortAttrSrcMAC
	portAttrEnd
)

// IsPortAttr reports whether id belongs to the port attribute space.
func IsPortAttr(id AttrID) bool {
	return id >= PortAttrType && id < portAttrEnd
}

// IsPortReadOnlyAttr reports whether id may only be read.
func IsPortReadOnlyAttr(id AttrID) bool {
	switch id {
	case PortAttrType, PortAttrOperStatus, PortAttrHwLaneList, PortAttrSupportedSpeed:
		return true
	}
	return false
}

// Port oper status values.
const (
	PortOperStatusUnknown int32 = iota
	PortOperStatusUp
	PortOperStatusDown
)

// PortStat identifies a port counter.
type PortStat uint32

const (
	PortStatIfInOctets PortStat = iota
	PortStatIfInUcastPkts
	PortStatIfInDiscards
	PortStatIfInErrors
	PortStatIfOutOctets
	PortStatIfOutUcastPkts
	PortStatIfOutDiscards
	PortStatIfOutErrors
	portStatEnd
)

// AllPortStats lists every defined port counter.
func AllPortStats() []PortStat {
	stats := make([]PortStat, 0, portStatEnd)
	for s := PortStatIfInOctets; s < portStatEnd; s++ {
		stats = append(stats, s)
	}
	return stats
}

// IsPortStat reports whether s is a defined counter.
func IsPortStat(s PortStat) bool {
	return s < portStatEnd
}

var portStatNames = [...]string{
	"if_in_octets",
	"if_in_ucast_pkts",
	"if_in_discards",
	"if_in_errors",
	"if_out_octets",
	"if_out_ucast_pkts",
	"if_out_discards",
	"if_out_errors",
}

func (s PortStat) String() string {
	if IsPortStat(s) {
		return portStatNames[s]
	}
	return "unknown"
}
