package sim

import (
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

const defaultMTU = 1514

type switchAPI struct{ b *Backend }

// Init seeds per-port hardware state. Ports mapped to a Linux interface
// take MTU, MAC and link state from the kernel; lookup failures are not
// fatal and leave the defaults in place.
func (s switchAPI) Init() error {
	b := s.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSwitchInit); err != nil {
		return err
	}

	for _, pc := range b.cfg.Ports {
		id := PortID(pc.Index)
		attrs := map[types.AttrID]types.AttrValue{
			types.PortAttrSpeed:      {U32: pc.Speed},
			types.PortAttrAdminState: {Bool: false},
			types.PortAttrMTU:        {U32: defaultMTU},
			types.PortAttrPortVlanID: {U16: 1},
			types.PortAttrOperStatus: {S32: types.PortOperStatusDown},
		}
		if pc.IfName != "" && b.cfg.Resolver != nil {
			link, err := b.cfg.Resolver.Resolve(pc.IfName)
			if err != nil {
				log.Warnf("sim: port %d: %v", pc.Index, err)
			} else {
				attrs[types.PortAttrMTU] = types.AttrValue{U32: uint32(link.MTU)}
				attrs[types.PortAttrSrcMAC] = types.AttrValue{MAC: link.MAC}
				attrs[types.PortAttrAdminState] = types.AttrValue{Bool: link.AdminUp}
				if link.OperUp {
					attrs[types.PortAttrOperStatus] = types.AttrValue{S32: types.PortOperStatusUp}
				}
				log.Debugf("sim: port %d mapped to %s (mtu %d, oper up %v)", pc.Index, link.IfName, link.MTU, link.OperUp)
			}
		}
		b.portAttrs[id] = attrs
	}
	log.Infof("sim: device initialised with %d ports", len(b.cfg.Ports))
	return nil
}

// Objects lists the objects described by the simulator config.
func (s switchAPI) Objects() ([]inventory.Object, error) {
	b := s.b
	b.mu.Lock()
	defer b.mu.Unlock()

	var objs []inventory.Object
	for _, pc := range b.cfg.Ports {
		name := pc.IfName
		if name == "" {
			name = fmt.Sprintf("port%d", pc.Index)
		}
		objs = append(objs, inventory.Object{ID: PortID(pc.Index), Name: name})
	}
	for _, lc := range b.cfg.Lags {
		members := make([]types.ObjectID, 0, len(lc.Members))
		for _, m := range lc.Members {
			members = append(members, PortID(m))
		}
		objs = append(objs, inventory.Object{ID: LagID(lc.Index), Name: fmt.Sprintf("lag%d", lc.Index), Members: members})
	}
	for _, vid := range b.cfg.Vlans {
		objs = append(objs, inventory.Object{ID: VlanID(vid), Name: fmt.Sprintf("vlan%d", vid)})
	}
	for _, oc := range b.cfg.Objects {
		objs = append(objs, inventory.Object{
			ID:   types.NewObjectID(oc.Type, oc.Index),
			Name: fmt.Sprintf("%s%d", oc.Type, oc.Index),
		})
	}
	return objs, nil
}

func (b *Backend) portConfig(id types.ObjectID) (PortConfig, bool) {
	if id.Type() != types.ObjectTypePort {
		return PortConfig{}, false
	}
	i := slices.IndexFunc(b.cfg.Ports, func(pc PortConfig) bool {
		return uint64(pc.Index) == id.Handle()
	})
	if i < 0 {
		return PortConfig{}, false
	}
	return b.cfg.Ports[i], true
}
