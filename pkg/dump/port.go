package dump

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/Nativu5/sai-adapter/pkg/port"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// PortJSON is the structured form of a port snapshot.
type PortJSON struct {
	ID            string            `json:"id"`
	Name          string            `json:"name,omitempty"`
	IngressMirror []string          `json:"ingress_mirror"`
	EgressMirror  []string          `json:"egress_mirror"`
	IngressSample string            `json:"ingress_sample,omitempty"`
	EgressSample  string            `json:"egress_sample,omitempty"`
	EgressBlock   []string          `json:"egress_block"`
	Attrs         map[string]string `json:"attrs,omitempty"`
}

var portAttrNames = map[types.AttrID]string{
	types.PortAttrSpeed:               "speed",
	types.PortAttrAdminState:          "admin_state",
	types.PortAttrMTU:                 "mtu",
	types.PortAttrPortVlanID:          "port_vlan_id",
	types.PortAttrDefaultVlanPriority: "default_vlan_priority",
	types.PortAttrDropUntagged:        "drop_untagged",
	types.PortAttrDropTagged:          "drop_tagged",
	types.PortAttrIngressFiltering:    "ingress_filtering",
	types.PortAttrQosDefaultTC:        "qos_default_tc",
	types.PortAttrSrcMAC:              "src_mac",
}

// attrValue formats the cached value of the scalar attributes the dump
// knows about.
func attrValue(a types.Attribute) (string, string, bool) {
	name, ok := portAttrNames[a.ID]
	if !ok {
		return "", "", false
	}
	v := a.Value
	switch a.ID {
	case types.PortAttrAdminState, types.PortAttrDropUntagged, types.PortAttrDropTagged, types.PortAttrIngressFiltering:
		return name, fmt.Sprint(v.Bool), true
	case types.PortAttrSpeed, types.PortAttrMTU:
		return name, fmt.Sprint(v.U32), true
	case types.PortAttrPortVlanID:
		return name, fmt.Sprint(v.U16), true
	case types.PortAttrDefaultVlanPriority, types.PortAttrQosDefaultTC:
		return name, fmt.Sprint(v.U8), true
	case types.PortAttrSrcMAC:
		return name, v.MAC.String(), true
	}
	return "", "", false
}

func portJSON(info port.Info) PortJSON {
	out := PortJSON{
		ID:            info.ID.String(),
		Name:          info.Name,
		IngressMirror: ids(info.IngressMirror),
		EgressMirror:  ids(info.EgressMirror),
		EgressBlock:   ids(info.EgressBlock),
	}
	if !info.IngressSample.IsNull() {
		out.IngressSample = info.IngressSample.String()
	}
	if !info.EgressSample.IsNull() {
		out.EgressSample = info.EgressSample.String()
	}
	for _, a := range info.Attrs {
		if name, val, ok := attrValue(a); ok {
			if out.Attrs == nil {
				out.Attrs = make(map[string]string)
			}
			out.Attrs[name] = val
		}
	}
	return out
}

// Ports renders port snapshots.
func Ports(w io.Writer, infos []port.Info, format Format) error {
	if format != Table {
		out := make([]PortJSON, 0, len(infos))
		for _, info := range infos {
			out = append(out, portJSON(info))
		}
		return encode(w, out, format)
	}
	if len(infos) == 0 {
		fmt.Fprintln(w, "No ports.")
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("PORT", "NAME", "INGRESS MIRROR", "EGRESS MIRROR", "INGRESS SAMPLE", "EGRESS SAMPLE", "EGRESS BLOCK")
	for _, info := range infos {
		name := info.Name
		if name == "" {
			name = "(none)"
		}
		table.Append(
			info.ID.String(),
			name,
			joinOrNone(ids(info.IngressMirror)),
			joinOrNone(ids(info.EgressMirror)),
			idOrNone(info.IngressSample),
			idOrNone(info.EgressSample),
			joinOrNone(ids(info.EgressBlock)),
		)
	}
	return table.Render()
}

// StatJSON is one counter reading.
type StatJSON struct {
	Counter string `json:"counter"`
	Value   uint64 `json:"value"`
}

// Stats renders counters read from one port.
func Stats(w io.Writer, stats []types.PortStat, values []uint64, format Format) error {
	out := make([]StatJSON, 0, len(stats))
	for i, s := range stats {
		if i < len(values) {
			out = append(out, StatJSON{Counter: s.String(), Value: values[i]})
		}
	}
	if format != Table {
		return encode(w, out, format)
	}
	table := tablewriter.NewTable(w)
	table.Header("COUNTER", "VALUE")
	for _, s := range out {
		table.Append(s.Counter, fmt.Sprint(s.Value))
	}
	return table.Render()
}
