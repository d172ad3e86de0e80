package label

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		group   string
		art     string
		version string
		wantErr bool
	}{
		{"valid", "org.foo", "bar", "1.0", false},
		{"valid without group", "", "bar", "1.0", false},
		{"valid snapshot", "org.foo", "bar", "1.0-SNAPSHOT", false},
		{"empty name", "org.foo", "", "1.0", true},
		{"empty version", "org.foo", "bar", "", true},
		{"colon in group", "org:foo", "bar", "1.0", true},
		{"colon in name", "org.foo", "b:ar", "1.0", true},
		{"space in version", "org.foo", "bar", "1. 0", true},
		{"tab in name", "org.foo", "bar\t", "1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.group, tt.art, tt.version)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q, %q, %q) expected error, got nil", tt.group, tt.art, tt.version)
				}
				if !errors.Is(err, ErrMalformedCoordinate) {
					t.Errorf("error %v does not wrap ErrMalformedCoordinate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q, %q, %q) unexpected error: %v", tt.group, tt.art, tt.version, err)
			}
			if c.Group != tt.group || c.Name != tt.art || c.Version != tt.version {
				t.Errorf("New() = %+v, fields not preserved", c)
			}
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("org.foo:bar:1.0")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c != Must("org.foo", "bar", "1.0") {
		t.Errorf("Parse() = %+v", c)
	}

	for _, in := range []string{"", "org.foo:bar", "org.foo:bar:jar:1.0", "org.foo::1.0"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedCoordinate) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedCoordinate", in, err)
		}
	}
}

func TestCoordinate_String(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want string
	}{
		{Must("org.foo", "bar", "1.0"), "org.foo:bar:1.0"},
		{Must("", "bar", "1.0"), ":bar:1.0"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCoordinate_EqualityIsCaseSensitive(t *testing.T) {
	a := Must("org.foo", "bar", "1.0")
	b := Must("org.Foo", "bar", "1.0")
	if a == b {
		t.Error("coordinates differing in case should not be equal")
	}
	if a != Must("org.foo", "bar", "1.0") {
		t.Error("identical coordinates should be equal")
	}
}

func TestMust_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Must with empty name should have panicked")
		}
	}()
	Must("org.foo", "", "1.0")
}

func TestCoordinate_IsZero(t *testing.T) {
	if !(Coordinate{}).IsZero() {
		t.Error("zero Coordinate should report IsZero")
	}
	if Must("g", "n", "v").IsZero() {
		t.Error("non-zero Coordinate reported IsZero")
	}
}
