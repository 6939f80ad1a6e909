package types

import (
	"errors"
	"fmt"
)

// Status is the result code of every adapter entry point. It follows the SAI
// numbering so values can be passed across the ABI unchanged. Status
// implements error; a nil error is StatusSuccess.
type Status int32

const (
	StatusSuccess                   Status = 0
	StatusFailure                   Status = -1
	StatusNotSupported              Status = -2
	StatusNoMemory                  Status = -3
	StatusInsufficientResources     Status = -4
	StatusInvalidParameter          Status = -5
	StatusItemAlreadyExists         Status = -6
	StatusItemNotFound              Status = -7
	StatusBufferOverflow            Status = -8
	StatusInvalidPortNumber         Status = -9
	StatusInvalidPortMember         Status = -10
	StatusInvalidVlanID             Status = -11
	StatusUninitialized             Status = -12
	StatusTableFull                 Status = -13
	StatusMandatoryAttributeMissing Status = -14
	StatusNotImplemented            Status = -15
	StatusAddrNotFound              Status = -16
	StatusObjectInUse               Status = -17
	StatusInvalidObjectType         Status = -18
	StatusInvalidObjectID           Status = -19
)

// Indexed status ranges. The attribute index is added to the base and the
// sum is negated, so index 0 of InvalidAttribute is -0x10000.
const (
	indexedInvalidAttribute   = 0x00010000
	indexedInvalidAttrValue   = 0x00020000
	indexedAttrNotImplemented = 0x00030000
	indexedUnknownAttribute   = 0x00040000
	indexedAttrNotSupported   = 0x00050000
	indexedRangeSize          = 0x00010000
	indexedRangeEnd           = indexedAttrNotSupported + indexedRangeSize
	maxAttrIndex              = indexedRangeSize - 1
)

func indexed(base, index int) Status {
	if index < 0 {
		index = 0
	}
	if index > maxAttrIndex {
		index = maxAttrIndex
	}
	return Status(-(base + index))
}

// InvalidAttribute reports an attribute that is not valid for the operation,
// for example a create-only attribute passed to Set.
func InvalidAttribute(index int) Status { return indexed(indexedInvalidAttribute, index) }

// InvalidAttributeValue reports a known attribute carrying a bad value.
func InvalidAttributeValue(index int) Status { return indexed(indexedInvalidAttrValue, index) }

// AttrNotImplemented reports an attribute the adapter recognises but does not handle.
func AttrNotImplemented(index int) Status { return indexed(indexedAttrNotImplemented, index) }

// UnknownAttribute reports an attribute id outside the object's attribute space.
func UnknownAttribute(index int) Status { return indexed(indexedUnknownAttribute, index) }

// AttrNotSupported reports an attribute the backend cannot program.
func AttrNotSupported(index int) Status { return indexed(indexedAttrNotSupported, index) }

// Base strips the attribute index from an indexed status. Non-indexed
// statuses are returned unchanged.
func (s Status) Base() Status {
	v := -int(s)
	if v < indexedInvalidAttribute || v >= indexedRangeEnd {
		return s
	}
	return Status(-(v - v%indexedRangeSize))
}

// Index returns the attribute index carried by an indexed status.
func (s Status) Index() (int, bool) {
	v := -int(s)
	if v < indexedInvalidAttribute || v >= indexedRangeEnd {
		return 0, false
	}
	return v % indexedRangeSize, true
}

// WithIndex returns s carrying attribute index i instead of its own.
// Non-indexed statuses are returned unchanged.
func (s Status) WithIndex(i int) Status {
	if _, ok := s.Index(); !ok {
		return s
	}
	return indexed(-int(s.Base()), i)
}

var statusNames = map[Status]string{
	StatusSuccess:                   "success",
	StatusFailure:                   "failure",
	StatusNotSupported:              "not supported",
	StatusNoMemory:                  "no memory",
	StatusInsufficientResources:     "insufficient resources",
	StatusInvalidParameter:          "invalid parameter",
	StatusItemAlreadyExists:         "item already exists",
	StatusItemNotFound:              "item not found",
	StatusBufferOverflow:            "buffer overflow",
	StatusInvalidPortNumber:         "invalid port number",
	StatusInvalidPortMember:         "invalid port member",
	StatusInvalidVlanID:             "invalid vlan id",
	StatusUninitialized:             "uninitialized",
	StatusTableFull:                 "table full",
	StatusMandatoryAttributeMissing: "mandatory attribute missing",
	StatusNotImplemented:            "not implemented",
	StatusAddrNotFound:              "address not found",
	StatusObjectInUse:               "object in use",
	StatusInvalidObjectType:         "invalid object type",
	StatusInvalidObjectID:           "invalid object id",
}

var indexedNames = map[Status]string{
	InvalidAttribute(0):      "invalid attribute",
	InvalidAttributeValue(0): "invalid attribute value",
	AttrNotImplemented(0):    "attribute not implemented",
	UnknownAttribute(0):      "unknown attribute",
	AttrNotSupported(0):      "attribute not supported",
}

func (s Status) Error() string {
	if idx, ok := s.Index(); ok {
		return fmt.Sprintf("%s at index %d", indexedNames[s.Base()], idx)
	}
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status %d", int32(s))
}

// StatusOf maps err onto a Status. Errors that do not wrap a Status are
// reported as StatusFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusFailure
}

// IsStatus reports whether err carries the status want, ignoring the
// attribute index of indexed codes when want is an index-0 code.
func IsStatus(err error, want Status) bool {
	got := StatusOf(err)
	if got == want {
		return true
	}
	if _, ok := want.Index(); ok && want == want.Base() {
		return got.Base() == want
	}
	return false
}
