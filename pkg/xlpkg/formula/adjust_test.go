package formula

import (
	"testing"
)

func TestAdjustInsertRows(t *testing.T) {
	e := Edit{Axis: Rows, At: 3, Count: 2}
	tests := []struct {
		formula  string
		host     string
		expected string
	}{
		{"=Sheet1!A5", "Sheet1", "=Sheet1!A7"},
		{"=Sheet2!A5", "Sheet1", "=Sheet2!A5"},
		{"Sheet1!A5", "Sheet2", "Sheet1!A7"},
		{"A5", "Sheet1", "A7"},
		{"A5", "Sheet2", "A5"},
		{"A2", "Sheet1", "A2"},
		{"A3", "Sheet1", "A5"},
		{"$A$3", "Sheet1", "$A$5"},
		{"SUM(A1:A4)", "Sheet1", "SUM(A1:A6)"},
		{"SUM(B3:C10)*2", "Sheet1", "SUM(B5:C12)*2"},
		{"A:C", "Sheet1", "A:C"},
		{"SUM(3:5)", "Sheet1", "SUM(5:7)"},
		{"sheet1!A5", "Sheet2", "sheet1!A7"},
		{"A1048576", "Sheet1", "#REF!"},
		{"SUM(A5,\nB5)", "Sheet1", "SUM(A7,\nB7)"},
		{"A5\r\n+1", "Sheet1", "A7\r\n+1"},
		{"SUM(A1,\tA2)", "Sheet1", "SUM(A1,\tA2)"},
	}
	for _, tt := range tests {
		result := AdjustInsert(tt.formula, tt.host, "Sheet1", e)
		if result != tt.expected {
			t.Errorf("AdjustInsert(%q, host=%q) = %q, expected %q", tt.formula, tt.host, result, tt.expected)
		}
	}
}

func TestAdjustRemoveRows(t *testing.T) {
	e := Edit{Axis: Rows, At: 3, Count: 2}
	tests := []struct {
		formula  string
		expected string
	}{
		{"=Sheet1!A3", "=Sheet1!#REF!"},
		{"=Sheet1!A6", "=Sheet1!A4"},
		{"=Sheet1!A2", "=Sheet1!A2"},
		{"A4+1", "#REF!+1"},
		{"SUM(A1:A10)", "SUM(A1:A8)"},
		{"SUM(A3:A10)", "SUM(A3:A8)"},
		{"SUM(A1:A4)", "SUM(A1:A2)"},
		{"SUM(A3:A4)", "SUM(#REF!)"},
		{"SUM(2:6)", "SUM(2:4)"},
		{"B:B", "B:B"},
		{"=Sheet2!A6", "=Sheet2!A6"},
		{"SUM(A6,\nA10)", "SUM(A4,\nA8)"},
		{"SUM(A3,\nA7)+A9", "SUM(#REF!,\nA5)+A7"},
		{"A4\r\n+A6", "#REF!\r\n+A4"},
	}
	for _, tt := range tests {
		result := AdjustRemove(tt.formula, "Sheet1", "Sheet1", e)
		if result != tt.expected {
			t.Errorf("AdjustRemove(%q) = %q, expected %q", tt.formula, result, tt.expected)
		}
	}
}

func TestAdjustColumns(t *testing.T) {
	ins := Edit{Axis: Columns, At: 2, Count: 1}
	rem := Edit{Axis: Columns, At: 2, Count: 1}
	tests := []struct {
		formula string
		insert  string
		remove  string
	}{
		{"A1", "A1", "A1"},
		{"B1", "C1", "#REF!"},
		{"$C$1", "$D$1", "$B$1"},
		{"SUM(A1:C1)", "SUM(A1:D1)", "SUM(A1:B1)"},
		{"A:C", "A:D", "A:B"},
		{"5:5", "5:5", "5:5"},
	}
	for _, tt := range tests {
		if got := AdjustInsert(tt.formula, "S", "S", ins); got != tt.insert {
			t.Errorf("AdjustInsert(%q) = %q, expected %q", tt.formula, got, tt.insert)
		}
		if got := AdjustRemove(tt.formula, "S", "S", rem); got != tt.remove {
			t.Errorf("AdjustRemove(%q) = %q, expected %q", tt.formula, got, tt.remove)
		}
	}
}

func TestAdjustKeepsQuotedSheets(t *testing.T) {
	e := Edit{Axis: Rows, At: 1, Count: 1}
	got := AdjustInsert("='My Sheet'!A1+'It''s'!B2", "Other", "My Sheet", e)
	if got != "='My Sheet'!A2+'It''s'!B2" {
		t.Errorf("got %q", got)
	}
	got = AdjustInsert(`IF(A1>0,"say ""hi""",B1)`, "S", "S", e)
	if got != `IF(A2>0,"say ""hi""",B2)` {
		t.Errorf("got %q", got)
	}
}

func TestAdjustUntouchedFormulaIsVerbatim(t *testing.T) {
	e := Edit{Axis: Rows, At: 10, Count: 5}
	for _, f := range []string{
		"=SUM( A1 , B2 )",
		`=CONCAT("a","b")`,
		"=MyName*2",
		"={1,2;3,4}",
	} {
		if got := AdjustInsert(f, "S", "S", e); got != f {
			t.Errorf("AdjustInsert(%q) = %q, expected unchanged", f, got)
		}
	}
}

func TestEditSpans(t *testing.T) {
	e := Edit{Axis: Rows, At: 3, Count: 2}
	tests := []struct {
		lo, hi   int
		elo, ehi int
		ok       bool
	}{
		{1, 2, 1, 2, true},
		{1, 3, 1, 2, true},
		{3, 4, 0, 0, false},
		{4, 8, 3, 6, true},
		{5, 9, 3, 7, true},
	}
	for _, tt := range tests {
		lo, hi, ok := e.RemoveSpan(tt.lo, tt.hi)
		if ok != tt.ok || (ok && (lo != tt.elo || hi != tt.ehi)) {
			t.Errorf("RemoveSpan(%d, %d) = %d, %d, %v; expected %d, %d, %v", tt.lo, tt.hi, lo, hi, ok, tt.elo, tt.ehi, tt.ok)
		}
	}
	if err := (Edit{Axis: Rows, At: 0, Count: 1}).Validate(); err == nil {
		t.Error("expected error for row 0")
	}
	if err := (Edit{Axis: Columns, At: 1, Count: 0}).Validate(); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Sheet1", "Sheet1"},
		{"My Sheet", "'My Sheet'"},
		{"It's", "'It''s'"},
		{"A1", "'A1'"},
		{"2024", "'2024'"},
		{"データ", "'データ'"},
	}
	for _, tt := range tests {
		if got := QuoteSheet(tt.name); got != tt.expected {
			t.Errorf("QuoteSheet(%q) = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}
