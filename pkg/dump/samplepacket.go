package dump

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/Nativu5/sai-adapter/pkg/samplepacket"
)

// SamplepacketJSON is the structured form of a samplepacket session.
type SamplepacketJSON struct {
	ID    string        `json:"id"`
	Rate  uint32        `json:"rate"`
	Type  string        `json:"type"`
	Mode  string        `json:"mode"`
	Ports []BindingJSON `json:"ports"`
}

func samplepacketJSON(v samplepacket.SessionView) SamplepacketJSON {
	out := SamplepacketJSON{
		ID:    v.Session.ID.String(),
		Rate:  v.Session.Rate,
		Type:  v.Session.Type.String(),
		Mode:  v.Session.Mode.String(),
		Ports: make([]BindingJSON, 0, len(v.Ports)),
	}
	for _, b := range v.Ports {
		out.Ports = append(out.Ports, BindingJSON{
			Port:      b.Port.String(),
			Direction: b.Dir.String(),
			Mode:      b.Mode.String(),
			Refs:      b.Refs,
		})
	}
	return out
}

// SamplepacketSessions renders samplepacket sessions.
func SamplepacketSessions(w io.Writer, views []samplepacket.SessionView, format Format) error {
	if format != Table {
		out := make([]SamplepacketJSON, 0, len(views))
		for _, v := range views {
			out = append(out, samplepacketJSON(v))
		}
		return encode(w, out, format)
	}
	if len(views) == 0 {
		fmt.Fprintln(w, "No samplepacket sessions.")
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("SESSION", "RATE", "TYPE", "MODE", "PORTS")
	for _, v := range views {
		s := v.Session
		table.Append(s.ID.String(), fmt.Sprint(s.Rate), s.Type.String(), s.Mode.String(), fmt.Sprint(len(v.Ports)))
	}
	return table.Render()
}

// SamplepacketPorts renders the attachments of one samplepacket session.
func SamplepacketPorts(w io.Writer, v samplepacket.SessionView, format Format) error {
	if format != Table {
		return encode(w, samplepacketJSON(v).Ports, format)
	}
	if len(v.Ports) == 0 {
		fmt.Fprintf(w, "No ports attached to %s.\n", v.Session.ID)
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("PORT", "DIRECTION", "MODE", "REFS")
	for _, b := range v.Ports {
		table.Append(b.Port.String(), b.Dir.String(), b.Mode.String(), fmt.Sprint(b.Refs))
	}
	return table.Render()
}
