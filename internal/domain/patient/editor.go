package patient

// Mode distinguishes a registration editor from an edit editor. The mode is
// fixed when the editor opens and determines which payload Build produces.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Form holds the editor's working copy of the patient fields. Every text
// field is always defined; an empty string means "blank", never "untouched".
// The distinction between blank and absent is introduced only at payload
// build time.
type Form struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	PhoneNumber   string `json:"phone_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	DateOfBirth   string `json:"date_of_birth"`
	PatientType   string `json:"patient_type"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
}

func defaultForm() Form {
	return Form{PatientType: TypeAdult}
}

// Editor is a single register-or-edit dialog. It is not safe for concurrent
// use on its own; the service serializes access per session.
type Editor struct {
	mode      Mode
	patientID string
	form      Form
}

// NewEditor opens a registration editor with a blank form.
func NewEditor() *Editor {
	return &Editor{mode: ModeCreate, form: defaultForm()}
}

// NewEditorFor opens an edit editor seeded from an existing record. Every
// field is copied into the form; absent optionals become empty strings.
func NewEditorFor(p *Patient) *Editor {
	e := &Editor{mode: ModeEdit, patientID: p.PatientID}
	e.form = Form{
		FirstName:     p.FirstName,
		LastName:      orEmpty(p.LastName),
		Age:           p.Age,
		Gender:        p.Gender,
		PhoneNumber:   p.PhoneNumber,
		Email:         orEmpty(p.Email),
		Address:       orEmpty(p.Address),
		DateOfBirth:   orEmpty(p.DateOfBirth),
		PatientType:   p.PatientType,
		GuardianName:  orEmpty(p.GuardianName),
		GuardianPhone: orEmpty(p.GuardianPhone),
	}
	if e.form.PatientType == "" {
		e.form.PatientType = TypeAdult
	}
	return e
}

func (e *Editor) Mode() Mode { return e.mode }

// PatientID returns the record under edit, or "" in create mode.
func (e *Editor) PatientID() string { return e.patientID }

func (e *Editor) Form() Form { return e.form }

// SetForm replaces the working copy wholesale. The dashboard posts the full
// form on every change, so there is no field-level merge to do.
func (e *Editor) SetForm(f Form) { e.form = f }

// Reset blanks the form and returns the editor to create mode, matching the
// dashboard's "clear" action which abandons any record under edit.
func (e *Editor) Reset() {
	e.mode = ModeCreate
	e.patientID = ""
	e.form = defaultForm()
}

// Validate checks required fields against the literal form values, before
// any blank-to-null transformation.
func (e *Editor) Validate() *ValidationError {
	f := e.form
	if f.FirstName == "" {
		return &ValidationError{Field: "first_name", Message: "first name is required"}
	}
	if f.Age <= 0 {
		return &ValidationError{Field: "age", Message: "age must be a positive number"}
	}
	if !validGender(f.Gender) {
		return &ValidationError{Field: "gender", Message: "gender must be one of male, female, other"}
	}
	if f.PhoneNumber == "" {
		return &ValidationError{Field: "phone_number", Message: "phone number is required"}
	}
	if !validPatientType(f.PatientType) {
		return &ValidationError{Field: "patient_type", Message: "patient type must be ADULT or CHILD"}
	}
	return nil
}

// BuildCreateRequest converts the form into a registration payload. Blank
// optionals become explicit nulls; the transform is uniform across fields,
// with required fields guaranteed non-blank by Validate.
func (e *Editor) BuildCreateRequest() *CreateRequest {
	f := e.form
	return &CreateRequest{
		FirstName:     f.FirstName,
		LastName:      nullable(f.LastName),
		Age:           f.Age,
		Gender:        f.Gender,
		PhoneNumber:   f.PhoneNumber,
		Email:         nullable(f.Email),
		Address:       nullable(f.Address),
		DateOfBirth:   nullable(f.DateOfBirth),
		PatientType:   f.PatientType,
		GuardianName:  nullable(f.GuardianName),
		GuardianPhone: nullable(f.GuardianPhone),
	}
}

// BuildUpdateRequest converts the form into an edit payload carrying every
// field: blank strings become explicit nulls so the records service clears
// them, and age is always carried as its numeric value.
func (e *Editor) BuildUpdateRequest() *UpdateRequest {
	f := e.form
	age := f.Age
	return &UpdateRequest{
		FirstName:     nullable(f.FirstName),
		LastName:      nullable(f.LastName),
		Age:           &age,
		Gender:        nullable(f.Gender),
		PhoneNumber:   nullable(f.PhoneNumber),
		Email:         nullable(f.Email),
		Address:       nullable(f.Address),
		DateOfBirth:   nullable(f.DateOfBirth),
		PatientType:   nullable(f.PatientType),
		GuardianName:  nullable(f.GuardianName),
		GuardianPhone: nullable(f.GuardianPhone),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
