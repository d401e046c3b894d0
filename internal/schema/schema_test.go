package schema

import (
	"testing"
	"time"
)

func TestProfileCollectionClosedTable(t *testing.T) {
	cases := map[Role]string{
		RoleScout:       ColScouts,
		RoleInstitution: ColInstitutions,
		RoleGuardian:    ColGuardians,
	}
	for role, want := range cases {
		got, ok := ProfileCollection(role)
		if !ok || got != want {
			t.Fatalf("ProfileCollection(%s) = %q, %v", role, got, ok)
		}
	}

	if _, ok := ProfileCollection("admin"); ok {
		t.Fatalf("unknown role should not resolve")
	}
	if ValidRole("athlete") {
		t.Fatalf("athlete is not an account role")
	}
}

func TestSlotLockID(t *testing.T) {
	date := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	got := SlotLockID("inst-1", date, "14:00")
	if got != "inst-1_2026-03-02_14:00" {
		t.Fatalf("got %q", got)
	}

	// Only the date part participates; the clock time is irrelevant.
	other := SlotLockID("inst-1", date.Add(5*time.Hour), "14:00")
	if other != got {
		t.Fatalf("same day should collide: %q vs %q", got, other)
	}

	// The slot label participates verbatim.
	if SlotLockID("inst-1", date, "14:00 ") == got {
		t.Fatalf("distinct slot strings must not collide")
	}
}

func TestNewProfileShapes(t *testing.T) {
	scout := NewProfile(RoleScout, "Ana", "11999990000")
	if scout["name"] != "Ana" {
		t.Fatalf("scout name: %v", scout["name"])
	}
	if _, ok := scout["address"]; !ok {
		t.Fatalf("scout profile missing address")
	}

	inst := NewInstitutionProfile("Escola Azul", "12345678000190", "1133330000")
	if inst["schoolName"] != "Escola Azul" || inst["taxId"] != "12345678000190" {
		t.Fatalf("institution profile: %v", inst)
	}
	if _, ok := inst["modalities"]; !ok {
		t.Fatalf("institution profile missing modalities")
	}

	g := NewGuardianProfile("Rita", "", "inst-1")
	if g["institutionId"] != "inst-1" {
		t.Fatalf("guardian profile: %v", g)
	}
}
