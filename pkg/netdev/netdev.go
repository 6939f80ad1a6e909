// Package netdev resolves the Linux network device a front-panel port is
// mapped to. Backends use it to seed port state (MTU, MAC, oper status)
// from the kernel at start-up.
package netdev

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

// LinkInfo is the subset of link attributes relevant to a switch port.
type LinkInfo struct {
	IfName    string
	Index     int
	MTU       int
	MAC       types.MACAddress
	AdminUp   bool
	OperUp    bool
	EncapType string
}

// Resolver looks up a network device by name.
type Resolver interface {
	Resolve(ifName string) (*LinkInfo, error)
}

// NetlinkResolver implements Resolver with rtnetlink queries.
type NetlinkResolver struct{}

// NewResolver returns a netlink-backed resolver.
func NewResolver() *NetlinkResolver {
	return &NetlinkResolver{}
}

// Resolve returns the state of ifName as reported by the kernel.
func (r *NetlinkResolver) Resolve(ifName string) (*LinkInfo, error) {
	if ifName == "" {
		return nil, fmt.Errorf("empty interface name")
	}
	link, err := netlink.LinkByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("cannot query link %s: %w", ifName, err)
	}
	return fromAttrs(link.Attrs()), nil
}

// fromAttrs converts netlink link attributes into a LinkInfo.
func fromAttrs(attrs *netlink.LinkAttrs) *LinkInfo {
	info := &LinkInfo{
		IfName:    attrs.Name,
		Index:     attrs.Index,
		MTU:       attrs.MTU,
		AdminUp:   attrs.Flags&net.FlagUp != 0,
		OperUp:    attrs.OperState == netlink.OperUp,
		EncapType: attrs.EncapType,
	}
	// Only Ethernet-sized addresses map onto a port MAC
	if len(attrs.HardwareAddr) == len(info.MAC) {
		copy(info.MAC[:], attrs.HardwareAddr)
	}
	return info
}

// StaticResolver serves a fixed table, for tests and for hosts without
// the mapped interfaces.
type StaticResolver map[string]LinkInfo

// Resolve returns the table entry for ifName.
func (r StaticResolver) Resolve(ifName string) (*LinkInfo, error) {
	info, ok := r[ifName]
	if !ok {
		return nil, fmt.Errorf("link %s not found", ifName)
	}
	info.IfName = ifName
	return &info, nil
}
