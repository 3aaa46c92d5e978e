package validate_test

import (
	"strings"
	"testing"

	"github.com/healthsync-app/healthsync/internal/validate"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"user@example.com", true},
		{"  USER@Example.COM  ", true},
		{"a@b.co", true},
		{"no-at-sign", false},
		{"two@@example.com", false},
		{"user@nodot", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := validate.Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDosage(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"100mg", true},
		{"2.5 ml", true},
		{"50 mcg", true},
		{"10 IU", true},
		{"3 units", true},
		{"1 unit", true},
		{"mg100", false},
		{"100", false},
		{"100 tablets", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := validate.Dosage(tt.in); got != tt.want {
			t.Errorf("Dosage(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClockTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"08:30", true},
		{"8:30", true},
		{"23:59", true},
		{"00:00", true},
		{"24:00", false},
		{"12:60", false},
		{"noon", false},
	}
	for _, tt := range tests {
		if got := validate.ClockTime(tt.in); got != tt.want {
			t.Errorf("ClockTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSeverity(t *testing.T) {
	for n := 1; n <= 5; n++ {
		if !validate.Severity(n) {
			t.Errorf("Severity(%d) should be valid", n)
		}
	}
	for _, n := range []int{0, 6, 10, -1} {
		if validate.Severity(n) {
			t.Errorf("Severity(%d) should be invalid", n)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"(555) 123-4567", true},
		{"5551234567", true},
		{"1-555-123-4567", true},
		{"25551234567", false}, // 11 digits, wrong country code
		{"12345", false},
	}
	for _, tt := range tests {
		if got := validate.Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := validate.SanitizeString("  <b>hello</b>  "); got != "bhello/b" {
		t.Errorf("SanitizeString = %q", got)
	}
	long := strings.Repeat("a", 2000)
	if got := validate.SanitizeString(long); len(got) != 1000 {
		t.Errorf("length cap not applied, got %d", len(got))
	}
}

func TestContainsSQLInjection(t *testing.T) {
	dangerous := []string{
		"1 OR 1=1",
		"x' UNION SELECT password FROM users",
		"; DROP TABLE users",
		"comment -- trailing",
	}
	for _, in := range dangerous {
		if !validate.ContainsSQLInjection(in) {
			t.Errorf("expected SQL pattern detection for %q", in)
		}
	}
	if validate.ContainsSQLInjection("plain headache notes") {
		t.Error("false positive on benign input")
	}
}

func TestContainsXSS(t *testing.T) {
	if !validate.ContainsXSS(`<script>alert(1)</script>`) {
		t.Error("script tag not detected")
	}
	if !validate.ContainsXSS(`<img onerror=hack()>`) {
		t.Error("onerror not detected")
	}
	if validate.ContainsXSS("mild fever after dinner") {
		t.Error("false positive on benign input")
	}
}

func TestSearchQuery(t *testing.T) {
	if _, ok := validate.SearchQuery("a"); ok {
		t.Error("single-char query should be rejected")
	}
	if _, ok := validate.SearchQuery(strings.Repeat("q", 101)); ok {
		t.Error("over-long query should be rejected")
	}
	if _, ok := validate.SearchQuery("'; DROP TABLE meds"); ok {
		t.Error("injection query should be rejected")
	}
	q, ok := validate.SearchQuery("  aspirin  ")
	if !ok || q != "aspirin" {
		t.Errorf("expected trimmed valid query, got %q %v", q, ok)
	}
}

func TestPassword(t *testing.T) {
	weak := validate.Password("abc")
	if weak.Valid {
		t.Error("short password should fail")
	}
	if weak.Strength != validate.StrengthWeak {
		t.Errorf("expected weak, got %s", weak.Strength)
	}

	medium := validate.Password("Abcdefg1")
	if !medium.Valid {
		t.Errorf("expected valid: %v", medium.Violations)
	}
	if medium.Strength != validate.StrengthMedium {
		t.Errorf("expected medium, got %s", medium.Strength)
	}

	strong := validate.Password("Abcdefg1!extra")
	if !strong.Valid || strong.Strength != validate.StrengthStrong {
		t.Errorf("expected valid strong, got %v %s", strong.Valid, strong.Strength)
	}
}

func TestMedicationInputValidate(t *testing.T) {
	in := validate.MedicationInput{
		UserID:    "u1",
		Name:      "Aspirin",
		Dosage:    "100mg",
		Time:      "08:00",
		Frequency: "daily",
	}
	if res := in.Validate(); !res.Valid {
		t.Errorf("expected valid, got %v", res.Violations)
	}

	bad := validate.MedicationInput{
		Name:      "A",
		Dosage:    "lots",
		Time:      "late",
		Frequency: "hourly",
		Color:     "red",
	}
	res := bad.Validate()
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Violations) != 6 {
		t.Errorf("expected 6 violations, got %d: %v", len(res.Violations), res.Violations)
	}
}

func TestSymptomInputValidate(t *testing.T) {
	in := validate.SymptomInput{UserID: "u1", Name: "Headache", Severity: 3}
	if res := in.Validate(); !res.Valid {
		t.Errorf("expected valid, got %v", res.Violations)
	}

	bad := validate.SymptomInput{Name: "x", Severity: 9}
	res := bad.Validate()
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Violations) != 3 {
		t.Errorf("expected 3 violations, got %v", res.Violations)
	}
}

func TestSymptomInputRejectsOverlongNotes(t *testing.T) {
	in := validate.SymptomInput{
		UserID:   "u1",
		Name:     "Headache",
		Severity: 3,
		Notes:    strings.Repeat("a", 1001),
	}
	res := in.Validate()
	if res.Valid {
		t.Fatal("expected invalid for 1001-character notes")
	}
	if len(res.Violations) != 1 || !strings.Contains(res.Violations[0], "notes") {
		t.Errorf("violations = %v, want one notes-length violation", res.Violations)
	}
}

func TestProfileInputValidate(t *testing.T) {
	in := validate.ProfileInput{Name: "Ada Lovelace", Age: 36, Role: "patient"}
	if res := in.Validate(); !res.Valid {
		t.Errorf("expected valid, got %v", res.Violations)
	}

	bad := validate.ProfileInput{Name: "X", Age: 200, Role: "nurse"}
	if res := bad.Validate(); res.Valid || len(res.Violations) != 3 {
		t.Errorf("expected 3 violations, got %+v", res)
	}
}

func TestPagination(t *testing.T) {
	page, res := validate.Pagination(0, 0)
	if !res.Valid || page.Limit != 10 || page.Offset != 0 {
		t.Errorf("defaults wrong: %+v %+v", page, res)
	}

	page, res = validate.Pagination(50, 20)
	if !res.Valid || page.Limit != 50 || page.Offset != 20 {
		t.Errorf("explicit values wrong: %+v", page)
	}

	_, res = validate.Pagination(500, 0)
	if res.Valid {
		t.Error("limit over max should be invalid")
	}

	_, res = validate.Pagination(10, -1)
	if res.Valid {
		t.Error("negative offset should be invalid")
	}
}

func TestBatch(t *testing.T) {
	med := validate.MedicationInput{UserID: "u", Name: "Aspirin", Dosage: "10mg", Time: "09:00", Frequency: "daily"}
	sym := validate.SymptomInput{Name: "y", Severity: 0}

	combined := validate.Batch(med.Validate(), sym.Validate())
	if combined.Valid {
		t.Fatal("expected combined failure")
	}
	if len(combined.Violations) != 3 {
		t.Errorf("expected 3 combined violations, got %v", combined.Violations)
	}
}
