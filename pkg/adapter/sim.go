package adapter

import (
	"fmt"

	"github.com/Nativu5/sai-adapter/pkg/config"
	"github.com/Nativu5/sai-adapter/pkg/netdev"
	"github.com/Nativu5/sai-adapter/pkg/npu/sim"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// NewSimBackend returns a simulator shaped like the configured switch.
// resolver may be nil to skip netdev enrichment.
func NewSimBackend(cfg *config.Config, resolver netdev.Resolver) (*sim.Backend, error) {
	sc := sim.Config{
		Vlans:    cfg.Switch.Vlans,
		Resolver: resolver,
	}
	for _, p := range cfg.Switch.Ports {
		sc.Ports = append(sc.Ports, sim.PortConfig{Index: p.Index, IfName: p.IfName, Lanes: p.Lanes, Speed: p.Speed})
	}
	for _, l := range cfg.Switch.Lags {
		sc.Lags = append(sc.Lags, sim.LagConfig{Index: l.Index, Members: l.Members})
	}
	for _, q := range cfg.Switch.QosObjects {
		t, err := types.ParseObjectType(q.Type)
		if err != nil {
			return nil, fmt.Errorf("qos object: %w", err)
		}
		sc.Objects = append(sc.Objects, sim.ObjectConfig{Type: t, Index: q.Index})
	}
	return sim.New(sc), nil
}
