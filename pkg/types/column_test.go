package types

import "testing"

func TestAttributeSetEquals(t *testing.T) {
	a := NewAttributeSet(SystemTime, NodeIO)
	b := NewAttributeSet(NodeIO, SystemTime)
	if !a.Equals(b) {
		t.Errorf("expected sets with same members in different insertion order to be equal")
	}

	c := NewAttributeSet(SystemTime)
	if a.Equals(c) {
		t.Errorf("expected sets with different membership to be unequal")
	}
}

func TestColumnValueEquals(t *testing.T) {
	cv1 := NewColumnValueWithAttrs("ts", SystemTime)
	cv2 := NewColumnValueWithAttrs("ts", SystemTime)
	if !cv1.Equals(cv2) {
		t.Errorf("expected equal name/attrs/no-mapper columns to be equal")
	}

	m := NewMapper()
	cv3 := cv1
	cv3.Mapper = m
	if cv1.Equals(cv3) {
		t.Errorf("expected mapper identity to distinguish otherwise-equal columns")
	}
}

func TestMapperMergeAgrees(t *testing.T) {
	a := NewMapper()
	a.Add(1, "alpha")
	b := NewMapper()
	b.Add(2, "beta")

	merged := a.Merge(b)
	if name, ok := merged.Lookup(1); !ok || name != "alpha" {
		t.Errorf("expected merged mapper to retain left entry")
	}
	if name, ok := merged.Lookup(2); !ok || name != "beta" {
		t.Errorf("expected merged mapper to retain right entry")
	}
}

func TestMapperMergeConflictPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on conflicting mapper entries")
		}
	}()
	a := NewMapper()
	a.Add(1, "alpha")
	b := NewMapper()
	b.Add(1, "not-alpha")
	a.Merge(b)
}

func TestJoinHowValid(t *testing.T) {
	for _, h := range []JoinHow{Inner, Left, Right, Outer} {
		if !h.Valid() {
			t.Errorf("expected %v to be valid", h)
		}
	}
	if JoinHow(99).Valid() {
		t.Errorf("expected out-of-range JoinHow to be invalid")
	}
}

func TestSequentialHowValid(t *testing.T) {
	for _, h := range []SequentialHow{SeqInner, SeqLeft, SeqRight, SeqOuter, SeqLeftUseLatest} {
		if !h.Valid() {
			t.Errorf("expected %v to be valid", h)
		}
	}
}
