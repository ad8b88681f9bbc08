package domain

// EmployeeRecord is a row from the authoritative HR roster. This subsystem
// only reads it: employment status and personal-data fields are copied into
// a Principal at first login and refreshed by background sync.
type EmployeeRecord struct {
	CID       string `json:"cid"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Position  string `json:"position"`
	IsActive  bool   `json:"isactive"`
}

// DisplayName returns the conventional "First Last" form used to seed a
// new principal's displayname.
func (e *EmployeeRecord) DisplayName() string {
	return e.FirstName + " " + e.LastName
}
