package mode

import "testing"

func TestFlagsAreExclusive(t *testing.T) {
	for _, m := range []Mode{Dev, Build} {
		dev, build := m.Flags()
		if dev == build {
			t.Fatalf("%s: flags dev=%v build=%v must differ", m, dev, build)
		}
		if dev != m.IsDev() || build != m.IsBuild() {
			t.Fatalf("%s: flags disagree with predicates", m)
		}
	}
}

func TestZeroValueIsDev(t *testing.T) {
	var m Mode
	if !m.IsDev() || m.String() != "dev" {
		t.Fatalf("zero Mode = %s, want dev", m)
	}
	if Build.String() != "build" || Mode(7).String() != "unknown" {
		t.Fatal("unexpected String values")
	}
}
