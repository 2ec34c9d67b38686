package secure

import (
	"errors"
	"testing"
)

func TestNamedProtocol(t *testing.T) {
	for _, name := range []string{"ckks", "ckks-light"} {
		p, err := NamedProtocol(name)
		if err != nil {
			t.Fatalf("NamedProtocol(%q) failed: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Name() = %q, want %q", p.Name(), name)
		}
	}
}

func TestNamedProtocolUnknown(t *testing.T) {
	_, err := NamedProtocol("pond")
	if err == nil {
		t.Fatalf("expected error for unknown protocol")
	}
	var unknown *UnknownProtocolError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownProtocolError", err)
	}
	if unknown.Name != "pond" {
		t.Errorf("error names %q, want pond", unknown.Name)
	}
}

func TestDefaultProtocol(t *testing.T) {
	if DefaultProtocol().Name() != "ckks" {
		t.Errorf("default protocol = %q, want ckks", DefaultProtocol().Name())
	}
}
