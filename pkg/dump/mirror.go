package dump

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/Nativu5/sai-adapter/pkg/mirror"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// MirrorSessionJSON is the structured form of a mirror session.
type MirrorSessionJSON struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	MonitorPort  string        `json:"monitor_port"`
	TruncateSize uint16        `json:"truncate_size,omitempty"`
	TC           uint8         `json:"tc,omitempty"`
	Vlan         *VlanJSON     `json:"vlan,omitempty"`
	Erspan       *ErspanJSON   `json:"erspan,omitempty"`
	Ports        []BindingJSON `json:"ports"`
}

type VlanJSON struct {
	TPID uint16 `json:"tpid"`
	ID   uint16 `json:"id"`
	Pri  uint8  `json:"pri"`
	CFI  uint8  `json:"cfi"`
}

type ErspanJSON struct {
	IPVersion   uint8  `json:"ip_version"`
	TOS         uint8  `json:"tos"`
	TTL         uint8  `json:"ttl,omitempty"`
	SrcIP       string `json:"src_ip"`
	DstIP       string `json:"dst_ip"`
	SrcMAC      string `json:"src_mac"`
	DstMAC      string `json:"dst_mac"`
	GREProtocol uint16 `json:"gre_protocol"`
}

// BindingJSON is one port attachment.
type BindingJSON struct {
	Port      string `json:"port"`
	Direction string `json:"direction"`
	Mode      string `json:"mode,omitempty"`
	Refs      uint32 `json:"refs,omitempty"`
}

func hasVlan(s *npu.MirrorSession) bool {
	return s.Type == types.MirrorRemote || (s.Type == types.MirrorEnhancedRemote && s.VlanHeaderValid)
}

func mirrorJSON(v mirror.SessionView) MirrorSessionJSON {
	s := v.Session
	out := MirrorSessionJSON{
		ID:           s.ID.String(),
		Type:         s.Type.String(),
		MonitorPort:  s.MonitorPort.String(),
		TruncateSize: s.TruncateSize,
		TC:           s.TC,
		Ports:        make([]BindingJSON, 0, len(v.Ports)),
	}
	if hasVlan(&s) {
		out.Vlan = &VlanJSON{TPID: s.VlanTPID, ID: s.VlanID, Pri: s.VlanPri, CFI: s.VlanCFI}
	}
	if s.Type == types.MirrorEnhancedRemote {
		out.Erspan = &ErspanJSON{
			IPVersion:   s.IPHdrVersion,
			TOS:         s.TOS,
			TTL:         s.TTL,
			SrcIP:       s.SrcIP.String(),
			DstIP:       s.DstIP.String(),
			SrcMAC:      s.SrcMAC.String(),
			DstMAC:      s.DstMAC.String(),
			GREProtocol: s.GREProtocolType,
		}
	}
	for _, b := range v.Ports {
		out.Ports = append(out.Ports, BindingJSON{Port: b.Port.String(), Direction: b.Dir.String()})
	}
	return out
}

func mirrorDetail(s *npu.MirrorSession) string {
	switch {
	case s.Type == types.MirrorEnhancedRemote:
		d := fmt.Sprintf("%s -> %s gre=%#x", s.SrcIP, s.DstIP, s.GREProtocolType)
		if s.VlanHeaderValid {
			d += fmt.Sprintf(" vlan=%d", s.VlanID)
		}
		return d
	case hasVlan(s):
		return fmt.Sprintf("vlan=%d pri=%d tpid=%#x", s.VlanID, s.VlanPri, s.VlanTPID)
	default:
		return "-"
	}
}

// MirrorSessions renders mirror sessions.
func MirrorSessions(w io.Writer, views []mirror.SessionView, format Format) error {
	if format != Table {
		out := make([]MirrorSessionJSON, 0, len(views))
		for _, v := range views {
			out = append(out, mirrorJSON(v))
		}
		return encode(w, out, format)
	}
	if len(views) == 0 {
		fmt.Fprintln(w, "No mirror sessions.")
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("SESSION", "TYPE", "MONITOR PORT", "DETAIL", "PORTS")
	for _, v := range views {
		s := v.Session
		table.Append(s.ID.String(), s.Type.String(), s.MonitorPort.String(), mirrorDetail(&s), fmt.Sprint(len(v.Ports)))
	}
	return table.Render()
}

// MirrorPorts renders the ports attached to one mirror session.
func MirrorPorts(w io.Writer, v mirror.SessionView, format Format) error {
	if format != Table {
		return encode(w, mirrorJSON(v).Ports, format)
	}
	if len(v.Ports) == 0 {
		fmt.Fprintf(w, "No ports attached to %s.\n", v.Session.ID)
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("PORT", "DIRECTION")
	for _, b := range v.Ports {
		table.Append(b.Port.String(), b.Dir.String())
	}
	return table.Render()
}
