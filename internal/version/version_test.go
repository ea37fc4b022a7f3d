package version

import "testing"

func TestCurrentReflectsStampedValues(t *testing.T) {
	orig := Version
	Version = "9.9.9"
	defer func() { Version = orig }()

	info := Current()
	if info.Version != "9.9.9" {
		t.Errorf("Version = %q, want 9.9.9", info.Version)
	}
	if info.Commit != Commit || info.BuiltAt != BuiltAt {
		t.Errorf("Current() = %+v, want stamped values", info)
	}
}
