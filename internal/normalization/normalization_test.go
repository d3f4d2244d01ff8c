package normalization

import "testing"

func TestParseInputString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Foo@Example.COM  ", "foo@example.com"},
		{"already-lower", "already-lower"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseInputString(tc.in); got != tc.want {
			t.Errorf("ParseInputString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseNamePreservesCase(t *testing.T) {
	if got := ParseName("  McAllister "); got != "McAllister" {
		t.Errorf("ParseName = %q, want McAllister", got)
	}
}

func TestParseInputStringPtr(t *testing.T) {
	if got := ParseInputStringPtr(nil); got != nil {
		t.Errorf("nil input = %v, want nil", got)
	}
	in := " MiXeD "
	got := ParseInputStringPtr(&in)
	if got == nil || *got != "mixed" {
		t.Errorf("got = %v, want mixed", got)
	}
	if in != " MiXeD " {
		t.Errorf("input mutated to %q", in)
	}
}
