package models

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("s3cret-pw"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.Password == "s3cret-pw" {
		t.Error("password stored in plain text")
	}
	if !u.ComparePassword("s3cret-pw") {
		t.Error("correct password rejected")
	}
	if u.ComparePassword("wrong") {
		t.Error("wrong password accepted")
	}
}

func TestIsStaff(t *testing.T) {
	if !(&User{Role: RoleAdmin}).IsStaff() {
		t.Error("admin should be staff")
	}
	if !(&User{Role: RoleOfficer}).IsStaff() {
		t.Error("officer should be staff")
	}
	if (&User{Role: RoleUser}).IsStaff() {
		t.Error("plain user should not be staff")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleOfficer, RoleUser} {
		if !ValidRole(r) {
			t.Errorf("role %q should be valid", r)
		}
	}
	if ValidRole("superuser") {
		t.Error("unknown role accepted")
	}
}
