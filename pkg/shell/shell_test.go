package shell

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nativu5/sai-adapter/pkg/adapter"
	"github.com/Nativu5/sai-adapter/pkg/config"
	"github.com/Nativu5/sai-adapter/pkg/dump"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

func newTestShell(t *testing.T, format dump.Format) (*Shell, *bytes.Buffer, *adapter.Applied) {
	t.Helper()
	cfg := config.Default()
	cfg.MirrorSessions = []config.MirrorSession{{Name: "span0", Type: "local", MonitorPort: "port1"}}
	cfg.SamplepacketSessions = []config.SamplepacketSession{{Name: "sflow", Rate: 100}}
	cfg.Ports = []config.PortSettings{{
		Port:          "port2",
		IngressMirror: []string{"span0"},
		EgressSample:  "sflow",
	}}
	require.NoError(t, cfg.Validate())

	b, err := adapter.NewSimBackend(cfg, nil)
	require.NoError(t, err)
	sw := adapter.New(b)
	require.NoError(t, sw.Init())
	applied, err := sw.Apply(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	return New(sw, &buf, format), &buf, applied
}

func TestExecute(t *testing.T) {
	sh, buf, applied := newTestShell(t, dump.Table)
	mirrorID := applied.Mirrors["span0"]
	sampleID := applied.Samplepackets["sflow"]

	tests := []struct {
		name string
		line string
		want []string
	}{
		{"mirror_all", "debug mirror session", []string{"local", mirrorID.String()}},
		{"mirror_one", "debug mirror session " + mirrorID.String(), []string{"MONITOR PORT"}},
		{"mirror_ports", "debug mirror ports " + mirrorID.String(), []string{"ingress"}},
		{"sample_all", "debug samplepacket session all", []string{"slow_path", "100"}},
		{"sample_ports", fmt.Sprintf("debug samplepacket ports %d", uint64(sampleID)), []string{"egress", "port"}},
		{"port_all", "debug port info all", []string{"port1", "port8"}},
		{"port_by_name", "debug port info port2", []string{mirrorID.String(), sampleID.String()}},
		{"port_stats", "debug port stats port3", []string{"if_in_octets"}},
		{"help", "help", []string{"debug mirror session"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			require.NoError(t, sh.Execute(tc.line))
			for _, want := range tc.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	sh, _, _ := newTestShell(t, dump.Table)

	tests := []struct {
		name   string
		line   string
		usage  bool
		status types.Status
	}{
		{"not_debug", "show mirror", true, 0},
		{"too_short", "debug mirror", true, 0},
		{"unknown", "debug acl table", true, 0},
		{"ports_need_id", "debug mirror ports", true, 0},
		{"bad_id", "debug mirror ports nonsense", true, 0},
		{"wrong_type", "debug mirror session port1", false, types.StatusInvalidObjectType},
		{"missing", "debug samplepacket session 0x500000000000063", false, types.StatusInvalidObjectID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := sh.Execute(tc.line)
			require.Error(t, err)
			if tc.usage {
				assert.True(t, errors.Is(err, ErrUsage))
				return
			}
			assert.Equal(t, tc.status, types.StatusOf(err))
		})
	}
}

func TestExecute_JSON(t *testing.T) {
	sh, buf, _ := newTestShell(t, dump.JSON)
	require.NoError(t, sh.Execute("debug mirror session all"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "["))
}

func TestRun(t *testing.T) {
	sh, buf, _ := newTestShell(t, dump.Table)
	in := strings.NewReader("debug mirror session\n\nbogus\nexit\ndebug port info\n")

	require.NoError(t, sh.Run(in))
	out := buf.String()
	assert.Contains(t, out, "local")
	assert.Contains(t, out, "error: usage")
	// nothing after exit runs
	assert.NotContains(t, out, "EGRESS BLOCK")
	assert.Equal(t, 4, strings.Count(out, Prompt))
}
