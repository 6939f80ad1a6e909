package sim

import (
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

type samplepacketAPI struct{ b *Backend }

func (sp samplepacketAPI) Init() error {
	sp.b.mu.Lock()
	defer sp.b.mu.Unlock()
	return sp.b.enter(OpSampleInit)
}

func (sp samplepacketAPI) SessionCreate(s *npu.SamplepacketSession) (uint64, error) {
	b := sp.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSampleCreate); err != nil {
		return 0, err
	}
	handle := b.allocHandle()
	rec := *s
	rec.ID = types.NewObjectID(types.ObjectTypeSamplepacket, handle)
	b.sampleSessions[rec.ID] = rec
	return handle, nil
}

func (sp samplepacketAPI) SessionDestroy(id types.ObjectID) error {
	b := sp.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSampleDestroy); err != nil {
		return err
	}
	if _, ok := b.sampleSessions[id]; !ok {
		return types.StatusItemNotFound
	}
	delete(b.sampleSessions, id)
	return nil
}

func (sp samplepacketAPI) SessionSet(s *npu.SamplepacketSession, _ types.Attribute) error {
	b := sp.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSampleSet); err != nil {
		return err
	}
	if _, ok := b.sampleSessions[s.ID]; !ok {
		return types.StatusItemNotFound
	}
	b.sampleSessions[s.ID] = *s
	return nil
}

func (sp samplepacketAPI) SessionGet(s *npu.SamplepacketSession, attrs []types.Attribute) error {
	b := sp.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpSampleGet); err != nil {
		return err
	}
	for i := range attrs {
		a := &attrs[i]
		switch a.ID {
		case types.SamplepacketAttrSampleRate:
			a.Value.U32 = s.Rate
		case types.SamplepacketAttrType:
			a.Value.S32 = int32(s.Type)
		case types.SamplepacketAttrMode:
			a.Value.S32 = int32(s.Mode)
		default:
			return types.UnknownAttribute(i)
		}
	}
	return nil
}

func (sp samplepacketAPI) attach(op Op, key Attachment) error {
	b := sp.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(op); err != nil {
		return err
	}
	if _, ok := b.attachments[key]; ok {
		return types.StatusItemAlreadyExists
	}
	b.attachments[key] = struct{}{}
	return nil
}

func (sp samplepacketAPI) detach(op Op, key Attachment) error {
	b := sp.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(op); err != nil {
		return err
	}
	if _, ok := b.attachments[key]; !ok {
		return types.StatusItemNotFound
	}
	delete(b.attachments, key)
	return nil
}

func (sp samplepacketAPI) SessionPortAdd(id, port types.ObjectID, dir types.Direction) error {
	return sp.attach(OpSamplePortAdd, Attachment{Session: id, Port: port, Dir: dir})
}

func (sp samplepacketAPI) SessionPortRemove(id, port types.ObjectID, dir types.Direction) error {
	return sp.detach(OpSamplePortRemove, Attachment{Session: id, Port: port, Dir: dir})
}

func (sp samplepacketAPI) SessionACLPortAdd(id, port types.ObjectID, dir types.Direction) error {
	return sp.attach(OpSampleACLPortAdd, Attachment{Session: id, Port: port, Dir: dir, Flow: true})
}

func (sp samplepacketAPI) SessionACLPortRemove(id, port types.ObjectID, dir types.Direction) error {
	return sp.detach(OpSampleACLPortRemove, Attachment{Session: id, Port: port, Dir: dir, Flow: true})
}
