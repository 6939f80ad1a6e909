// Package adapter is the top-level service handle. It owns one instance of
// every feature module, all sharing the same backend and inventory, and
// applies a configured scenario to them.
package adapter

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Nativu5/sai-adapter/pkg/inventory"
	"github.com/Nativu5/sai-adapter/pkg/mirror"
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/port"
	"github.com/Nativu5/sai-adapter/pkg/qos"
	"github.com/Nativu5/sai-adapter/pkg/samplepacket"
)

// Switch wires the feature modules to one backend.
type Switch struct {
	backend npu.Backend

	Inventory    *inventory.DB
	Mirror       *mirror.Module
	Samplepacket *samplepacket.Module
	Qos          *qos.Module
	Port         *port.Module
}

// New builds the modules for backend. The backend is fixed for the life
// of the Switch.
func New(backend npu.Backend) *Switch {
	inv := inventory.New()
	s := &Switch{
		backend:      backend,
		Inventory:    inv,
		Mirror:       mirror.New(backend.Mirror(), inv),
		Samplepacket: samplepacket.New(backend.Samplepacket(), inv),
		Qos:          qos.New(backend.Qos(), inv),
	}
	s.Port = port.New(port.Options{
		Backend:   backend.Port(),
		Inv:       inv,
		Mirrors:   s.Mirror,
		Samplers:  s.Samplepacket,
		QoS:       s.Qos,
		IsQosAttr: qos.IsPortAttr,
	})
	return s
}

// Backend returns the backend name.
func (s *Switch) Backend() string {
	return s.backend.Name()
}

// Init brings up the device, loads the inventory and initialises every
// module.
func (s *Switch) Init() error {
	if err := s.backend.Switch().Init(); err != nil {
		return fmt.Errorf("failed to initialise %s backend: %w", s.backend.Name(), err)
	}
	objs, err := s.backend.Switch().Objects()
	if err != nil {
		return fmt.Errorf("failed to list switch objects: %w", err)
	}
	for _, obj := range objs {
		if err := s.Inventory.Add(obj); err != nil {
			return fmt.Errorf("failed to register object %s: %w", obj.ID, err)
		}
	}

	if err := s.Mirror.Init(); err != nil {
		return fmt.Errorf("failed to initialise mirror module: %w", err)
	}
	if err := s.Samplepacket.Init(); err != nil {
		return fmt.Errorf("failed to initialise samplepacket module: %w", err)
	}
	if err := s.Port.Init(); err != nil {
		return fmt.Errorf("failed to initialise port module: %w", err)
	}

	log.Infof("Switch initialised on %s backend with %d objects", s.backend.Name(), s.Inventory.Len())
	return nil
}
