// Package config loads the adapter configuration: the simulated device
// layout and the scenario applied to it at start-up (sessions, port
// settings, ACL-driven sampling). Objects are referenced by inventory name.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

// EnvPrefix prefixes environment overrides, e.g. SAI_LOG_LEVEL.
const EnvPrefix = "SAI"

const defaultPortCount = 8

// Config is the full adapter configuration.
type Config struct {
	LogLevel             string                `mapstructure:"log_level"`
	Switch               SwitchConfig          `mapstructure:"switch"`
	MirrorSessions       []MirrorSession       `mapstructure:"mirror_sessions"`
	SamplepacketSessions []SamplepacketSession `mapstructure:"samplepacket_sessions"`
	Ports                []PortSettings        `mapstructure:"port_config"`
	ACLSamples           []ACLSample           `mapstructure:"acl_samples"`
}

// SwitchConfig describes the device.
type SwitchConfig struct {
	Ports      []Port      `mapstructure:"ports"`
	Lags       []Lag       `mapstructure:"lags"`
	Vlans      []uint16    `mapstructure:"vlans"`
	QosObjects []QosObject `mapstructure:"qos_objects"`
}

type Port struct {
	Index  uint32   `mapstructure:"index"`
	IfName string   `mapstructure:"ifname"`
	Lanes  []uint32 `mapstructure:"lanes"`
	Speed  uint32   `mapstructure:"speed"`
}

type Lag struct {
	Index   uint32   `mapstructure:"index"`
	Members []uint32 `mapstructure:"members"`
}

// QosObject is a pre-created QoS map, scheduler, policer or WRED profile.
type QosObject struct {
	Type  string `mapstructure:"type"`
	Index uint64 `mapstructure:"index"`
}

// MirrorSession describes a mirror session to create. Zero values mean
// "not set" except where a default is noted.
type MirrorSession struct {
	Name         string `mapstructure:"name"`
	Type         string `mapstructure:"type"`
	MonitorPort  string `mapstructure:"monitor_port"`
	TC           uint8  `mapstructure:"tc"`
	TruncateSize uint16 `mapstructure:"truncate_size"`
	// VlanTPID defaults to 0x8100 when a VLAN tag is configured.
	VlanTPID uint16 `mapstructure:"vlan_tpid"`
	VlanID   uint16 `mapstructure:"vlan_id"`
	VlanPri  uint8  `mapstructure:"vlan_pri"`
	VlanCFI  uint8  `mapstructure:"vlan_cfi"`
	// EncapType defaults to "gre".
	EncapType string `mapstructure:"encap_type"`
	// IPVersion defaults to 4.
	IPVersion uint8  `mapstructure:"ip_version"`
	TOS       uint8  `mapstructure:"tos"`
	TTL       uint8  `mapstructure:"ttl"`
	SrcIP     string `mapstructure:"src_ip"`
	DstIP     string `mapstructure:"dst_ip"`
	SrcMAC    string `mapstructure:"src_mac"`
	DstMAC    string `mapstructure:"dst_mac"`
	// GREProtocol defaults to 0x88be.
	GREProtocol uint16 `mapstructure:"gre_protocol"`
}

type SamplepacketSession struct {
	Name string `mapstructure:"name"`
	Rate uint32 `mapstructure:"rate"`
	Type string `mapstructure:"type"`
	Mode string `mapstructure:"mode"`
}

// PortSettings is applied to one port after the sessions exist.
type PortSettings struct {
	Port          string   `mapstructure:"port"`
	AdminState    *bool    `mapstructure:"admin_state"`
	MTU           uint32   `mapstructure:"mtu"`
	DefaultVlan   uint16   `mapstructure:"default_vlan"`
	DropUntagged  *bool    `mapstructure:"drop_untagged"`
	DropTagged    *bool    `mapstructure:"drop_tagged"`
	IngressMirror []string `mapstructure:"ingress_mirror"`
	EgressMirror  []string `mapstructure:"egress_mirror"`
	IngressSample string   `mapstructure:"ingress_sample"`
	EgressSample  string   `mapstructure:"egress_sample"`
	EgressBlock   []string `mapstructure:"egress_block"`
	Qos           *PortQos `mapstructure:"qos"`
}

// PortQos names the QoS objects bound to a port.
type PortQos struct {
	DefaultTC        *uint8 `mapstructure:"default_tc"`
	Dot1pToTCMap     string `mapstructure:"dot1p_to_tc_map"`
	DscpToTCMap      string `mapstructure:"dscp_to_tc_map"`
	TCToQueueMap     string `mapstructure:"tc_to_queue_map"`
	Scheduler        string `mapstructure:"scheduler"`
	Wred             string `mapstructure:"wred"`
	FloodPolicer     string `mapstructure:"flood_policer"`
	BroadcastPolicer string `mapstructure:"broadcast_policer"`
	MulticastPolicer string `mapstructure:"multicast_policer"`
}

// ACLSample binds a samplepacket session to a port through an ACL rule.
// Several entries for the same session, port and direction stand for
// several rules sharing the binding.
type ACLSample struct {
	Session   string `mapstructure:"session"`
	Port      string `mapstructure:"port"`
	Direction string `mapstructure:"direction"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
}

// Load reads the configuration at path; an empty path yields the defaults.
// Environment variables prefixed with SAI_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Switch.Ports) == 0 {
		for i := uint32(1); i <= defaultPortCount; i++ {
			c.Switch.Ports = append(c.Switch.Ports, Port{Index: i})
		}
	}
	for i := range c.Switch.Ports {
		p := &c.Switch.Ports[i]
		if len(p.Lanes) == 0 {
			p.Lanes = []uint32{p.Index}
		}
		if p.Speed == 0 {
			p.Speed = 10000
		}
	}
}

// Validate checks the configuration for internal consistency. Object names
// are resolved later against the switch inventory.
func (c *Config) Validate() error {
	ports := make(map[uint32]bool)
	for _, p := range c.Switch.Ports {
		if p.Index == 0 {
			return fmt.Errorf("switch.ports: index must be non-zero")
		}
		if ports[p.Index] {
			return fmt.Errorf("switch.ports: duplicate index %d", p.Index)
		}
		ports[p.Index] = true
	}
	for _, l := range c.Switch.Lags {
		for _, m := range l.Members {
			if !ports[m] {
				return fmt.Errorf("switch.lags[%d]: unknown member port %d", l.Index, m)
			}
		}
	}
	for _, q := range c.Switch.QosObjects {
		t, err := types.ParseObjectType(q.Type)
		if err != nil {
			return fmt.Errorf("switch.qos_objects: %w", err)
		}
		switch t {
		case types.ObjectTypeQosMap, types.ObjectTypeScheduler, types.ObjectTypePolicer, types.ObjectTypeWred:
		default:
			return fmt.Errorf("switch.qos_objects: %s is not a QoS object type", t)
		}
	}

	mirrors := make(map[string]bool)
	for _, m := range c.MirrorSessions {
		if err := uniqueName("mirror_sessions", m.Name, mirrors); err != nil {
			return err
		}
		if _, err := types.ParseMirrorSessionType(m.Type); err != nil {
			return fmt.Errorf("mirror session %s: %w", m.Name, err)
		}
		if m.MonitorPort == "" {
			return fmt.Errorf("mirror session %s: monitor_port is required", m.Name)
		}
		if m.EncapType != "" && m.EncapType != "gre" {
			return fmt.Errorf("mirror session %s: unknown encap_type %q", m.Name, m.EncapType)
		}
	}

	samples := make(map[string]bool)
	for _, s := range c.SamplepacketSessions {
		if err := uniqueName("samplepacket_sessions", s.Name, samples); err != nil {
			return err
		}
		if s.Rate == 0 {
			return fmt.Errorf("samplepacket session %s: rate must be non-zero", s.Name)
		}
		if s.Type != "" && s.Type != "slow_path" {
			return fmt.Errorf("samplepacket session %s: unknown type %q", s.Name, s.Type)
		}
		if _, err := types.ParseSamplepacketMode(s.Mode); err != nil {
			return fmt.Errorf("samplepacket session %s: %w", s.Name, err)
		}
	}

	for _, p := range c.Ports {
		if p.Port == "" {
			return fmt.Errorf("port_config: port is required")
		}
		for _, name := range append(append([]string{}, p.IngressMirror...), p.EgressMirror...) {
			if !mirrors[name] {
				return fmt.Errorf("port_config %s: unknown mirror session %q", p.Port, name)
			}
		}
		for _, name := range []string{p.IngressSample, p.EgressSample} {
			if name != "" && !samples[name] {
				return fmt.Errorf("port_config %s: unknown samplepacket session %q", p.Port, name)
			}
		}
	}

	for _, a := range c.ACLSamples {
		if !samples[a.Session] {
			return fmt.Errorf("acl_samples: unknown samplepacket session %q", a.Session)
		}
		if a.Port == "" {
			return fmt.Errorf("acl_samples: port is required")
		}
		if _, err := types.ParseDirection(a.Direction); err != nil {
			return fmt.Errorf("acl_samples: %w", err)
		}
	}
	return nil
}

func uniqueName(section, name string, seen map[string]bool) error {
	if name == "" {
		return fmt.Errorf("%s: name is required", section)
	}
	if seen[name] {
		return fmt.Errorf("%s: duplicate name %q", section, name)
	}
	seen[name] = true
	return nil
}
