package identity

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"student", RoleStudent, true},
		{"Recruiter", RoleRecruiter, true},
		{"  TRAINER  ", RoleTrainer, true},
		{"admin", RoleAdmin, true},
		{"superuser", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDashboardRouting(t *testing.T) {
	cases := []struct {
		role Role
		want string
	}{
		{RoleStudent, "/student/dashboard"},
		{RoleRecruiter, "/recruiter/dashboard"},
		{RoleTrainer, "/trainer/dashboard"},
		{RoleAdmin, "/admin/console"},
		// Unrecognized roles land on the student dashboard rather than nowhere.
		{Role("intern"), "/student/dashboard"},
	}
	for _, tc := range cases {
		if got := tc.role.Dashboard(); got != tc.want {
			t.Errorf("Dashboard(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}
