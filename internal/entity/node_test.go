package entity

import (
	"reflect"
	"testing"
)

func TestNode_SetLastWriteWins(t *testing.T) {
	n := NewObject(nil, "cfg", "cfg", 0, 1)
	n.Set("a", "1")
	n.Set("b", "2")
	n.Set("a", "3")

	if !reflect.DeepEqual(n.Columns, []string{"a", "b"}) {
		t.Errorf("expected columns [a b], got %v", n.Columns)
	}
	if len(n.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(n.Rows))
	}
	if got := n.Value(0, "a"); got != "3" {
		t.Errorf("expected a=3, got %q", got)
	}
}

func TestNode_AppendRowProjectsDeclaredColumns(t *testing.T) {
	n := NewArray(nil, "users", "users", 0, 1, []string{"id", "name"}, 1)
	n.AppendRow(Row{"id": "1", "extra": "x"})

	if len(n.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(n.Rows))
	}
	want := Row{"id": "1", "name": ""}
	if !reflect.DeepEqual(n.Rows[0], want) {
		t.Errorf("expected %v, got %v", want, n.Rows[0])
	}
}

func TestNode_AddFieldStartsRowOnRepeatedKey(t *testing.T) {
	n := NewArray(nil, "users", "users", 0, 1, []string{"id", "name"}, 2)
	n.AddField("id", "1")
	n.AddField("name", "Alice")
	n.AddField("id", "2")
	n.AddField("name", "Bob")

	if len(n.Rows) != 1 {
		t.Fatalf("expected 1 flushed row before Close, got %d", len(n.Rows))
	}
	n.Close()
	if len(n.Rows) != 2 {
		t.Fatalf("expected 2 rows after Close, got %d", len(n.Rows))
	}
	if n.Value(1, "name") != "Bob" {
		t.Errorf("expected second row name Bob, got %q", n.Value(1, "name"))
	}
}

func TestNode_CloseWithoutFieldsAddsNothing(t *testing.T) {
	n := NewArray(nil, "empty", "empty", 0, 1, []string{"a"}, 0)
	n.Close()
	if len(n.Rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(n.Rows))
	}
}

func TestNewArray_CopiesColumns(t *testing.T) {
	cols := []string{"a", "b"}
	n := NewArray(nil, "t", "t", 0, 1, cols, 0)
	cols[0] = "z"
	if n.Columns[0] != "a" {
		t.Errorf("expected node columns to be independent of caller slice")
	}
}

func TestKind_String(t *testing.T) {
	if Object.String() != "object" || Array.String() != "array" {
		t.Errorf("unexpected kind names %q %q", Object, Array)
	}
}
