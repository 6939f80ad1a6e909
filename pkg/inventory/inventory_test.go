package inventory

import (
	"testing"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

func samplePort(n uint64) types.ObjectID {
	return types.NewObjectID(types.ObjectTypePort, n)
}

func TestAdd_Duplicate(t *testing.T) {
	db := New()
	if err := db.Add(Object{ID: samplePort(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.Add(Object{ID: samplePort(1)}); err != types.StatusItemAlreadyExists {
		t.Errorf("expected ItemAlreadyExists, got %v", err)
	}
}

func TestAdd_Null(t *testing.T) {
	db := New()
	if err := db.Add(Object{}); err != types.StatusInvalidObjectID {
		t.Errorf("expected InvalidObjectID, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	db := New()
	port := samplePort(1)
	lag := types.NewObjectID(types.ObjectTypeLag, 1)
	if err := db.Add(Object{ID: port}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      types.ObjectID
		allowed []types.ObjectType
		want    error
	}{
		{"port_ok", port, []types.ObjectType{types.ObjectTypePort}, nil},
		{"port_or_lag_ok", port, []types.ObjectType{types.ObjectTypePort, types.ObjectTypeLag}, nil},
		{"wrong_type", port, []types.ObjectType{types.ObjectTypeVlan}, types.StatusInvalidObjectType},
		{"missing_lag", lag, []types.ObjectType{types.ObjectTypeLag}, types.StatusInvalidObjectID},
		{"missing_port", samplePort(9), []types.ObjectType{types.ObjectTypePort}, types.StatusInvalidObjectID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := db.Check(tc.id, tc.allowed...); got != tc.want {
				t.Errorf("Check() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestListSorted(t *testing.T) {
	db := New()
	for _, n := range []uint64{3, 1, 2} {
		if err := db.Add(Object{ID: samplePort(n)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Add(Object{ID: types.NewObjectID(types.ObjectTypeVlan, 10)}); err != nil {
		t.Fatal(err)
	}

	ports := db.List(types.ObjectTypePort)
	if len(ports) != 3 {
		t.Fatalf("expected 3 ports, got %d", len(ports))
	}
	for i := 1; i < len(ports); i++ {
		if ports[i-1] >= ports[i] {
			t.Errorf("ports not sorted: %v", ports)
		}
	}
	if db.Len() != 4 {
		t.Errorf("Len() = %d, want 4", db.Len())
	}
}

func TestRemove(t *testing.T) {
	db := New()
	port := samplePort(1)
	_ = db.Add(Object{ID: port})
	if err := db.Remove(port); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.Exists(port) {
		t.Error("port should be gone")
	}
	if err := db.Remove(port); err != types.StatusItemNotFound {
		t.Errorf("expected ItemNotFound, got %v", err)
	}
}

func TestMembersCopied(t *testing.T) {
	db := New()
	members := []types.ObjectID{samplePort(1), samplePort(2)}
	lag := types.NewObjectID(types.ObjectTypeLag, 1)
	_ = db.Add(Object{ID: lag, Members: members})
	members[0] = samplePort(9)

	obj, _ := db.Get(lag)
	if obj.Members[0] != samplePort(1) {
		t.Error("inventory must own its copy of the member list")
	}
}

func TestLookup(t *testing.T) {
	db := New()
	_ = db.Add(Object{ID: samplePort(2), Name: "Ethernet0"})
	_ = db.Add(Object{ID: samplePort(1), Name: "Ethernet0"})
	_ = db.Add(Object{ID: samplePort(3)})

	tests := []struct {
		name   string
		lookup string
		want   types.ObjectID
		found  bool
	}{
		{"lowest_id_wins", "Ethernet0", samplePort(1), true},
		{"unknown", "Ethernet9", types.NullObjectID, false},
		{"empty_name", "", types.NullObjectID, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			obj, ok := db.Lookup(tc.lookup)
			if ok != tc.found {
				t.Fatalf("Lookup(%q) found=%v, want %v", tc.lookup, ok, tc.found)
			}
			if obj.ID != tc.want {
				t.Errorf("Lookup(%q) = %s, want %s", tc.lookup, obj.ID, tc.want)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	db := New()
	lag := types.NewObjectID(types.ObjectTypeLag, 7)
	if err := db.Add(Object{ID: lag}); err != nil {
		t.Fatal(err)
	}
	if got, ok := db.TypeOf(lag); !ok || got != types.ObjectTypeLag {
		t.Errorf("TypeOf(lag) = %v, %v", got, ok)
	}
	if _, ok := db.TypeOf(samplePort(7)); ok {
		t.Error("unregistered id should not resolve")
	}
}
