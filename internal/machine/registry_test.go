package machine

import (
	"testing"
)

func TestRegistryListsBuiltInsAndCustom(t *testing.T) {
	r := NewRegistry()

	builtInCount := len(r.Profiles())
	if builtInCount == 0 {
		t.Fatal("expected built-in profiles")
	}

	if err := r.Add(NewCustomProfile("Workshop Router")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Profiles()) != builtInCount+1 {
		t.Errorf("expected %d profiles with 1 custom, got %d", builtInCount+1, len(r.Profiles()))
	}
}

func TestRegistryLookupFindsCustom(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(NewCustomProfile("MyCustom")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, ok := r.Lookup("MyCustom")
	if !ok {
		t.Fatal("expected to find custom profile")
	}
	if p.Name() != "MyCustom" {
		t.Errorf("expected MyCustom, got %s", p.Name())
	}
	if p.IsBuiltIn {
		t.Error("custom profile should not be built-in")
	}
}

func TestRegistryGetFallsBackToGeneric(t *testing.T) {
	r := NewRegistry()
	p := r.Get("NonExistent")
	if p.Name() != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name())
	}
}

func TestRegistryNamesIncludesCustom(t *testing.T) {
	r := NewRegistry()
	_ = r.Add(NewCustomProfile("CustomA"))
	_ = r.Add(NewCustomProfile("CustomB"))

	found := map[string]bool{}
	for _, n := range r.Names() {
		found[n] = true
	}

	if !found["Shapeoko HDM"] {
		t.Error("missing built-in profile Shapeoko HDM")
	}
	if !found["CustomA"] {
		t.Error("missing custom profile CustomA")
	}
	if !found["CustomB"] {
		t.Error("missing custom profile CustomB")
	}
}

func TestRegistryAddRejectsBuiltInName(t *testing.T) {
	r := NewRegistry()
	p := NewCustomProfile("Generic")
	if err := r.Add(p); err == nil {
		t.Fatal("expected error when adding profile with built-in name")
	}
}

func TestRegistryAddUpdatesExisting(t *testing.T) {
	r := NewRegistry()

	p1 := NewCustomProfile("MyProfile")
	p1.Description = "Version 1"
	_ = r.Add(p1)

	p2 := NewCustomProfile("MyProfile")
	p2.Description = "Version 2"
	_ = r.Add(p2)

	if len(r.Custom()) != 1 {
		t.Fatalf("expected 1 custom profile after update, got %d", len(r.Custom()))
	}
	if r.Custom()[0].Description != "Version 2" {
		t.Errorf("expected updated description, got %s", r.Custom()[0].Description)
	}
}

func TestRegistryAddRejectsInvalidProfile(t *testing.T) {
	r := NewRegistry()
	p := NewCustomProfile("Broken")
	p.Machine.TravelX = 0
	if err := r.Add(p); err == nil {
		t.Fatal("expected validation error for zero travel")
	}

	p = NewCustomProfile("BadRPM")
	p.Machine.MinRPM = 30000 // above MaxRPM
	if err := r.Add(p); err == nil {
		t.Fatal("expected validation error for min rpm above max")
	}

	p = NewCustomProfile("BadUnits")
	p.Machine.Units = "furlongs"
	if err := r.Add(p); err == nil {
		t.Fatal("expected validation error for unknown units")
	}
}

func TestRegistryRemoveCustom(t *testing.T) {
	r := NewRegistry()
	_ = r.Add(NewCustomProfile("ToRemove"))

	if err := r.Remove("ToRemove"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Custom()) != 0 {
		t.Error("profile was not removed")
	}
}

func TestRegistryRemoveRejectsBuiltIn(t *testing.T) {
	r := NewRegistry()
	if err := r.Remove("Generic"); err == nil {
		t.Fatal("expected error when removing built-in profile")
	}
}

func TestRegistryRemoveNotFound(t *testing.T) {
	r := NewRegistry()
	if err := r.Remove("NonExistent"); err == nil {
		t.Fatal("expected error when removing non-existent profile")
	}
}

func TestNewCustomProfileInheritsGeneric(t *testing.T) {
	p := NewCustomProfile("Test Custom")
	if p.Name() != "Test Custom" {
		t.Errorf("expected name 'Test Custom', got %s", p.Name())
	}
	if p.IsBuiltIn {
		t.Error("custom profile should not be built-in")
	}
	if p.Machine.Units != "mm" {
		t.Errorf("expected mm units from Generic, got %s", p.Machine.Units)
	}
	if p.Post.SpindleOn != "M3 S[RPM]" {
		t.Errorf("expected spindle code from Generic, got %s", p.Post.SpindleOn)
	}
}

func TestBuiltInProfilesMarkedAndValid(t *testing.T) {
	r := NewRegistry()
	for _, p := range builtinProfiles() {
		if !p.IsBuiltIn {
			t.Errorf("built-in profile %s should have IsBuiltIn=true", p.Name())
		}
		if err := r.Validate(p); err != nil {
			t.Errorf("built-in profile %s fails validation: %v", p.Name(), err)
		}
	}
}

func TestBuiltInTravelsRealistic(t *testing.T) {
	r := NewRegistry()

	// The flatbed fits a full 1220x2440 sheet, the benchtop does not.
	axyz := r.Get("AXYZ Infinite")
	if axyz.Machine.TravelX < 1220 || axyz.Machine.TravelY < 2440 {
		t.Error("AXYZ Infinite should fit a full sheet")
	}
	if !axyz.Machine.HasATC {
		t.Error("AXYZ Infinite should have a tool changer")
	}

	shapeoko := r.Get("Shapeoko HDM")
	if shapeoko.Machine.TravelX >= 1220 && shapeoko.Machine.TravelY >= 2440 {
		t.Error("benchtop travel should not fit a full sheet")
	}
	if shapeoko.Post.UseCannedCycles {
		t.Error("GRBL controllers have no canned cycle support")
	}
}
