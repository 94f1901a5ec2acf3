package sqlbuild

import (
	"reflect"
	"testing"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func TestWhereBuilder_Build_Empty(t *testing.T) {
	wb := NewWhereBuilder(Dollar)
	whereClause, args := wb.Build()

	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}
	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_Add_MultipleConditions(t *testing.T) {
	wb := NewWhereBuilder(Dollar)
	wb.Add("status", "Pending").Add("client", "ACME")

	whereClause, args := wb.Build()

	expectedClause := " WHERE status = $1 AND client = $2"
	if whereClause != expectedClause {
		t.Errorf("expected %q, got %q", expectedClause, whereClause)
	}
	if !reflect.DeepEqual(args, []any{"Pending", "ACME"}) {
		t.Errorf("args = %v", args)
	}
}

func TestWhereBuilder_Add_EmptyValue_Skipped(t *testing.T) {
	wb := NewWhereBuilder(Dollar)
	wb.Add("status", "")
	wb.Add("client", "ACME")

	whereClause, args := wb.Build()

	if whereClause != " WHERE client = $1" {
		t.Errorf("got %q", whereClause)
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
}

func TestWhereBuilder_AddIn(t *testing.T) {
	wb := NewWhereBuilder(Numbered)
	wb.AddIn("id", []string{"a", "b", "c"})
	wb.AddIn("name", nil)

	whereClause, args := wb.Build()

	if whereClause != " WHERE id IN (?1, ?2, ?3)" {
		t.Errorf("got %q", whereClause)
	}
	if len(args) != 3 {
		t.Errorf("args = %v", args)
	}
}

func TestWhereBuilder_NextArgIndex(t *testing.T) {
	wb := NewWhereBuilder(Dollar)

	if wb.NextArgIndex() != 1 {
		t.Errorf("expected initial NextArgIndex to be 1, got %d", wb.NextArgIndex())
	}

	wb.Add("col1", "val1")
	if wb.NextArgIndex() != 2 {
		t.Errorf("expected NextArgIndex after 1 add to be 2, got %d", wb.NextArgIndex())
	}

	wb.AddIn("col2", []string{"x", "y"})
	if wb.NextArgIndex() != 4 {
		t.Errorf("expected NextArgIndex after IN of two to be 4, got %d", wb.NextArgIndex())
	}
}

func TestWhereBuilder_AddTaskFilter(t *testing.T) {
	wb := NewWhereBuilder(Dollar)
	wb.AddTaskFilter(core.TaskFilter{Client: "ACME", PaymentStatus: "Unpaid", Limit: 10})

	whereClause, args := wb.Build()

	if whereClause != " WHERE client = $1 AND payment_status = $2" {
		t.Errorf("got %q", whereClause)
	}
	if !reflect.DeepEqual(args, []any{"ACME", "Unpaid"}) {
		t.Errorf("args = %v", args)
	}

	limit := wb.Placeholder(10)
	if limit != "$3" {
		t.Errorf("limit placeholder = %q, want $3", limit)
	}
}

func TestWhereBuilder_PlaceholderOnly(t *testing.T) {
	wb := NewWhereBuilder(Dollar)
	p := wb.Placeholder(25)

	whereClause, args := wb.Build()
	if p != "$1" || whereClause != "" || len(args) != 1 {
		t.Errorf("p=%q clause=%q args=%v", p, whereClause, args)
	}
}
