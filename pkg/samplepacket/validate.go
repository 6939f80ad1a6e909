package samplepacket

import (
	"github.com/Nativu5/sai-adapter/pkg/npu"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

var mandatory = types.NewAttrSet(types.SamplepacketAttrSampleRate)

// fill validates one attribute and stores it into s. index is the position
// of attr in the caller's list.
func fill(s *npu.SamplepacketSession, attr types.Attribute, index int) error {
	v := attr.Value
	switch attr.ID {
	case types.SamplepacketAttrSampleRate:
		// one packet in every Rate is sampled, so zero means nothing
		if v.U32 == 0 {
			return types.InvalidAttributeValue(index)
		}
		s.Rate = v.U32
	case types.SamplepacketAttrType:
		if types.SamplepacketType(v.S32) != types.SamplepacketSlowPath {
			return types.InvalidAttributeValue(index)
		}
		s.Type = types.SamplepacketType(v.S32)
	case types.SamplepacketAttrMode:
		m := types.SamplepacketMode(v.S32)
		if m != types.SamplepacketExclusive && m != types.SamplepacketShared {
			return types.InvalidAttributeValue(index)
		}
		s.Mode = m
	default:
		return types.UnknownAttribute(index)
	}
	return nil
}
