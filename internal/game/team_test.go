package game

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleTeam() Team {
	return NewTeam(
		Employee{ID: "a", Name: "Aiko", Role: RoleManager, Salary: 800_000},
		Employee{ID: "b", Name: "Ben", Role: RoleEngineer, Salary: 600_000, ManagerID: "a"},
		Employee{ID: "c", Name: "Chie", Role: RoleSales, Salary: 600_000, ManagerID: "b"},
	)
}

func TestTeamManagerCycle(t *testing.T) {
	team := sampleTeam()
	if !team.WouldCreateCycle("a", "c") {
		t.Fatalf("a -> c should close the loop c -> b -> a")
	}
	if team.WouldCreateCycle("c", "a") {
		t.Fatalf("c reporting to a is a valid shortcut")
	}

	tests := []struct {
		employee, manager string
		want              error
	}{
		{"a", "a", ErrSelfManager},
		{"a", "c", ErrManagerCycle},
		{"missing", "a", ErrEmployeeNotFound},
		{"a", "missing", ErrEmployeeNotFound},
		{"c", "a", nil},
		{"b", "", nil},
	}
	for _, tc := range tests {
		clone := team.Clone()
		err := clone.SetManager(tc.employee, tc.manager)
		if !errors.Is(err, tc.want) {
			t.Fatalf("SetManager(%s,%s) err=%v want %v", tc.employee, tc.manager, err, tc.want)
		}
	}
}

func TestTeamRemoveReparentsReports(t *testing.T) {
	team := sampleTeam()
	if _, ok := team.Remove("b"); !ok {
		t.Fatalf("remove b failed")
	}
	c, _ := team.Get("c")
	if c.ManagerID != "" {
		t.Fatalf("c should report to the founder, got %q", c.ManagerID)
	}
	if team.Len() != 2 || team.List()[1].ID != "c" {
		t.Fatalf("order not preserved: %+v", team.List())
	}
	if _, ok := team.Remove("b"); ok {
		t.Fatalf("second remove should miss")
	}
}

func TestTeamCloneIsIndependent(t *testing.T) {
	team := sampleTeam()
	clone := team.Clone()
	clone.Add(Employee{ID: "d", Role: RoleCS})
	_ = clone.SetManager("c", "a")

	if team.Len() != 3 {
		t.Fatalf("original grew to %d", team.Len())
	}
	if c, _ := team.Get("c"); c.ManagerID != "b" {
		t.Fatalf("original mutated: %+v", c)
	}
	if got := team.TotalSalary(); got != 2_000_000 {
		t.Fatalf("TotalSalary = %v", got)
	}
	if team.Count(RoleSales) != 1 || team.Has(RoleCS) {
		t.Fatalf("role counts wrong")
	}
}

func TestTeamSerialisesAsOrderedList(t *testing.T) {
	team := sampleTeam()

	raw, err := json.Marshal(team)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	var fromJSON Team
	if err := json.Unmarshal(raw, &fromJSON); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	out, err := yaml.Marshal(team)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	var fromYAML Team
	if err := yaml.Unmarshal(out, &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}

	for _, got := range []Team{fromJSON, fromYAML} {
		list := got.List()
		if len(list) != 3 || list[0].ID != "a" || list[2].ManagerID != "b" {
			t.Fatalf("round trip lost order or links: %+v", list)
		}
	}
}
