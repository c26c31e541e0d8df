package models

// College represents a college of the university
type College struct {
	Code string `json:"college_code" validate:"required"`
	Name string `json:"college_name" validate:"required,letters"`
}

// Program represents a degree program offered by a college.
// CollegeCode is required on submission and nil once its college has been
// deleted in nullify mode.
type Program struct {
	Code        string  `json:"program_code" validate:"required"`
	Name        string  `json:"program_name" validate:"required,letters"`
	CollegeCode *string `json:"college_code" validate:"required"`
}

// Student represents an enrolled student.
// ProgramCode is required on submission and nil once its program has been
// deleted in nullify mode.
type Student struct {
	IDNumber    string  `json:"id_number" validate:"required,idnumber"`
	FirstName   string  `json:"first_name" validate:"required,letters"`
	LastName    string  `json:"last_name" validate:"required,letters"`
	YearLevel   int     `json:"year_level" validate:"required,min=1"`
	Gender      string  `json:"gender" validate:"required"`
	ProgramCode *string `json:"program_code" validate:"required"`
}

// Counts holds the per-entity record totals
type Counts struct {
	Colleges int64 `json:"colleges"`
	Programs int64 `json:"programs"`
	Students int64 `json:"students"`
}
