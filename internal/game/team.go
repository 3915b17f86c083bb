package game

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"
)

// Team keeps employees addressable by id while preserving hire order.
type Team struct {
	order []string
	byID  map[string]Employee
}

func NewTeam(members ...Employee) Team {
	t := Team{byID: make(map[string]Employee, len(members))}
	for _, e := range members {
		t.Add(e)
	}
	return t
}

func (t Team) Len() int {
	return len(t.order)
}

func (t Team) Get(id string) (Employee, bool) {
	e, ok := t.byID[id]
	return e, ok
}

func (t Team) List() []Employee {
	out := make([]Employee, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

func (t Team) Count(role Role) int {
	n := 0
	for _, e := range t.byID {
		if e.Role == role {
			n++
		}
	}
	return n
}

func (t Team) Has(role Role) bool {
	return t.Count(role) > 0
}

func (t Team) TotalSalary() float64 {
	total := 0.0
	for _, e := range t.byID {
		total += e.Salary
	}
	return total
}

// Add appends e, replacing an existing member with the same id in place.
func (t *Team) Add(e Employee) {
	if t.byID == nil {
		t.byID = make(map[string]Employee)
	}
	if _, ok := t.byID[e.ID]; !ok {
		t.order = append(t.order, e.ID)
	}
	t.byID[e.ID] = e
}

// Remove drops the employee and moves their direct reports under the founder.
func (t *Team) Remove(id string) (Employee, bool) {
	e, ok := t.byID[id]
	if !ok {
		return Employee{}, false
	}
	delete(t.byID, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	for mid, m := range t.byID {
		if m.ManagerID == id {
			m.ManagerID = ""
			t.byID[mid] = m
		}
	}
	return e, true
}

// WouldCreateCycle walks up from managerID and reports whether it reaches employeeID.
func (t Team) WouldCreateCycle(employeeID, managerID string) bool {
	seen := make(map[string]struct{})
	for cur := managerID; cur != ""; {
		if cur == employeeID {
			return true
		}
		if _, ok := seen[cur]; ok {
			return true
		}
		seen[cur] = struct{}{}
		m, ok := t.byID[cur]
		if !ok {
			return false
		}
		cur = m.ManagerID
	}
	return false
}

func (t *Team) SetManager(employeeID, managerID string) error {
	e, ok := t.byID[employeeID]
	if !ok {
		return ErrEmployeeNotFound
	}
	if employeeID == managerID {
		return ErrSelfManager
	}
	if managerID != "" {
		if _, ok := t.byID[managerID]; !ok {
			return ErrEmployeeNotFound
		}
		if t.WouldCreateCycle(employeeID, managerID) {
			return ErrManagerCycle
		}
	}
	e.ManagerID = managerID
	t.byID[employeeID] = e
	return nil
}

func (t Team) Clone() Team {
	out := Team{
		order: slices.Clone(t.order),
		byID:  make(map[string]Employee, len(t.byID)),
	}
	for id, e := range t.byID {
		out.byID[id] = e
	}
	return out
}

func (t Team) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.List())
}

func (t *Team) UnmarshalJSON(b []byte) error {
	var members []Employee
	if err := json.Unmarshal(b, &members); err != nil {
		return err
	}
	*t = NewTeam(members...)
	return nil
}

func (t Team) MarshalYAML() (any, error) {
	return t.List(), nil
}

func (t *Team) UnmarshalYAML(value *yaml.Node) error {
	var members []Employee
	if err := value.Decode(&members); err != nil {
		return err
	}
	*t = NewTeam(members...)
	return nil
}
