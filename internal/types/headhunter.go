package types

// User is the authenticated account returned by /me.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// Manager is an employer's manager account.
type Manager struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// NamedRef is the {id, name} pair the API uses for dictionaries.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Vacancy is a vacancy as listed or fetched by id. Description is HTML.
type Vacancy struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Area         NamedRef  `json:"area"`
	Experience   *NamedRef `json:"experience,omitempty"`
	Manager      *NamedRef `json:"manager,omitempty"`
	Description  string    `json:"description,omitempty"`
	AlternateURL string    `json:"alternate_url,omitempty"`
}

// ManagerID returns the id of the vacancy's manager, or "".
func (v Vacancy) ManagerID() string {
	if v.Manager == nil {
		return ""
	}
	return v.Manager.ID
}

// ExperienceName returns the required-experience label, or "".
func (v Vacancy) ExperienceName() string {
	if v.Experience == nil {
		return ""
	}
	return v.Experience.Name
}

// PartitionVacancies splits vacancies into those managed by userID and the rest.
// With an empty userID every vacancy lands in others.
func PartitionVacancies(vacancies []Vacancy, userID string) (mine, others []Vacancy) {
	mine = []Vacancy{}
	others = []Vacancy{}
	for _, v := range vacancies {
		if userID != "" && v.ManagerID() == userID {
			mine = append(mine, v)
		} else {
			others = append(others, v)
		}
	}
	return mine, others
}

// AreaNode is one node of the /areas tree.
type AreaNode struct {
	ID       string     `json:"id"`
	ParentID *string    `json:"parent_id"`
	Name     string     `json:"name"`
	Areas    []AreaNode `json:"areas"`
}

// Area is a flattened region dictionary entry.
type Area struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
