package model

import "testing"

func TestDisplayNameAnonymous(t *testing.T) {
	c := Complainant{PublicID: "A1B2C", Anonymous: true}
	if got := c.DisplayName(); got != "Usuario Anónimo (A1B2C)" {
		t.Fatalf("unexpected display name: %q", got)
	}
}

func TestDisplayNameIdentified(t *testing.T) {
	first := "María"
	last := "Pérez Soto"
	c := Complainant{Anonymous: false, FirstName: &first, LastName: &last}
	if got := c.DisplayName(); got != "María Pérez Soto" {
		t.Fatalf("unexpected display name: %q", got)
	}
}

func TestIsOther(t *testing.T) {
	cases := map[string]bool{
		"Otro":      true,
		"otro":      true,
		" OTRO ":    true,
		"Empleado":  false,
		"Contratista": false,
	}
	for role, want := range cases {
		r := CompanyRelation{Role: role}
		if r.IsOther() != want {
			t.Fatalf("IsOther(%q) = %v, want %v", role, !want, want)
		}
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []ComplaintStatus{StatusPendiente, StatusEnRevision, StatusResuelto, StatusEnviadoADT} {
		if !KnownStatus(s) {
			t.Fatalf("expected %q to be known", s)
		}
	}
	if KnownStatus("ARCHIVADO") {
		t.Fatal("expected ARCHIVADO to be unknown")
	}
}
