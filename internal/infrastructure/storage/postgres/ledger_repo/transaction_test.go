package ledger_repo

import (
	"strings"
	"testing"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/domain/ledger"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	repo := NewTransactionRepo(nil)

	sql, args, err := repo.buildListQuery(ledger.ListFilter{}).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.HasPrefix(sql, "SELECT id, item_id, direction, quantity, date") {
		t.Errorf("unexpected select list: %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY date DESC, created_at DESC") {
		t.Errorf("missing order clause: %s", sql)
	}
	if strings.Contains(sql, "WHERE") {
		t.Errorf("unfiltered query must have no WHERE: %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("want no args, got %v", args)
	}
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	repo := NewTransactionRepo(nil)

	itemID := id.New()
	supplierID := id.New()
	direction := ledger.DirectionOut
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.buildListQuery(ledger.ListFilter{
		ItemID:     &itemID,
		SupplierID: &supplierID,
		Direction:  &direction,
		FromDate:   &from,
		ToDate:     &to,
		Limit:      50,
		Offset:     10,
	}).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	for _, clause := range []string{
		"item_id = $",
		"supplier_id = $",
		"direction = $",
		"date >= $",
		"date < $",
		"LIMIT 50",
		"OFFSET 10",
	} {
		if !strings.Contains(sql, clause) {
			t.Errorf("missing clause %q in: %s", clause, sql)
		}
	}
	if len(args) != 5 {
		t.Errorf("want 5 args, got %d: %v", len(args), args)
	}
}

func TestBuildUpdateQuery_CoversAllMutableColumns(t *testing.T) {
	repo := NewTransactionRepo(nil)

	tr := &ledger.Transaction{ID: id.New(), RecordedBy: "operator"}
	sql, args, err := repo.buildUpdateQuery(tr).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	// Every column the engine mutates in place must be written back;
	// recorded_by in particular changes on edits.
	for _, clause := range []string{
		"item_id = $",
		"direction = $",
		"quantity = $",
		"date = $",
		"reference = $",
		"notes = $",
		"recorded_by = $",
		"supplier_id = $",
		"unit_price = $",
		"total_value = $",
		"reversed = $",
		"updated_at = $",
	} {
		if !strings.Contains(sql, clause) {
			t.Errorf("missing set clause %q in: %s", clause, sql)
		}
	}
	if !strings.Contains(sql, "WHERE id = $13") {
		t.Errorf("missing id predicate in: %s", sql)
	}
	if len(args) != 13 {
		t.Errorf("want 13 args, got %d: %v", len(args), args)
	}
}

func TestBuildListQuery_DollarPlaceholders(t *testing.T) {
	repo := NewTransactionRepo(nil)

	itemID := id.New()
	sql, _, err := repo.buildListQuery(ledger.ListFilter{ItemID: &itemID}).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if strings.Contains(sql, "?") {
		t.Errorf("placeholders must be dollar-style: %s", sql)
	}
	if !strings.Contains(sql, "$1") {
		t.Errorf("missing $1 placeholder: %s", sql)
	}
}
