package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00", "2024-01-15T10:30:00.123456Z"}
	invalid := []string{"2024-01-15 10:30:00", "2024-01-15", ""}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidCurrency(t *testing.T) {
	valid := []string{"IDR", "USD", "EUR"}
	invalid := []string{"idr", "US", "USDT", "", "1DR"}
	for _, c := range valid {
		if !IsValidCurrency(c) {
			t.Errorf("IsValidCurrency(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if IsValidCurrency(c) {
			t.Errorf("IsValidCurrency(%q) = true, want false", c)
		}
	}
}

func TestIsValidPeriod(t *testing.T) {
	if !IsValidPeriod(1, 2025) || !IsValidPeriod(12, 2000) {
		t.Errorf("IsValidPeriod rejected a valid period")
	}
	if IsValidPeriod(0, 2025) || IsValidPeriod(13, 2025) || IsValidPeriod(6, 1999) {
		t.Errorf("IsValidPeriod accepted an invalid period")
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "invalid"},
		{Field: "target_hours", Message: "required"},
	}
	got := errs.Error()
	want := "latitude: invalid; target_hours: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "invalid"},
		{Field: "target_hours", Message: "required"},
	}
	m := errs.ToMap()
	if m["latitude"] != "invalid" || m["target_hours"] != "required" || len(m) != 2 {
		t.Errorf("ValidationErrors.ToMap() = %v", m)
	}
}
