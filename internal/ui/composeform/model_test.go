package composeform

import (
	"reflect"
	"testing"
)

func TestSplitRecipients(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a@example.com", []string{"a@example.com"}},
		{"a@example.com, b@example.com", []string{"a@example.com", "b@example.com"}},
		{"  a@example.com ,, b@example.com, ", []string{"a@example.com", "b@example.com"}},
		{"Alice <alice@example.com>, bob@example.net", []string{"Alice <alice@example.com>", "bob@example.net"}},
		{"", nil},
		{" , ,", nil},
	}

	for _, c := range cases {
		if got := splitRecipients(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitRecipients(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidateRecipients(t *testing.T) {
	if err := validateRecipients("a@example.com"); err != nil {
		t.Errorf("valid recipient rejected: %v", err)
	}
	if err := validateRecipients("  ,  "); err == nil {
		t.Error("empty recipient list accepted")
	}
}

func TestValidateRequired(t *testing.T) {
	v := validateRequired("Subject")
	if err := v("hello"); err != nil {
		t.Errorf("non-empty value rejected: %v", err)
	}
	if err := v("   "); err == nil {
		t.Error("blank value accepted")
	}
}
