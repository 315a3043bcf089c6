package patient

import "fmt"

// Gender values accepted by the records service.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Patient type enumeration.
const (
	TypeAdult = "ADULT"
	TypeChild = "CHILD"
)

// Patient is the full roster record as the records service returns it.
// Optional fields are pointers so an absent value survives the round trip.
type Patient struct {
	PatientID     string  `json:"patient_id"`
	FirstName     string  `json:"first_name"`
	LastName      *string `json:"last_name,omitempty"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	PhoneNumber   string  `json:"phone_number"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	DateOfBirth   *string `json:"date_of_birth,omitempty"`
	PatientType   string  `json:"patient_type"`
	GuardianName  *string `json:"guardian_name,omitempty"`
	GuardianPhone *string `json:"guardian_phone,omitempty"`
	IsActive      bool    `json:"is_active"`
	// The records service spells this field without the trailing "d".
	CreatedAt string `json:"create_at"`
	UpdatedAt string `json:"updated_at"`
}

// DisplayName is the patient's full name with a missing last name dropped,
// the form used for the bill's denormalized snapshot.
func (p *Patient) DisplayName() string {
	if p.LastName == nil || *p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + *p.LastName
}

// CreateRequest is the payload for registering a patient. Optional fields
// marshal as explicit null when cleared, matching the records API contract.
type CreateRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      *string `json:"last_name"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	PhoneNumber   string  `json:"phone_number"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	DateOfBirth   *string `json:"date_of_birth"`
	PatientType   string  `json:"patient_type"`
	GuardianName  *string `json:"guardian_name"`
	GuardianPhone *string `json:"guardian_phone"`
}

// UpdateRequest is the edit payload. Every field is a pointer and none carry
// omitempty: a nil field marshals as an explicit JSON null, which the records
// service reads as "clear this field". The editor always sends the full field
// set, so this is a whole-record overwrite with explicit nulls for blanks,
// not a sparse patch.
type UpdateRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Age           *int    `json:"age"`
	Gender        *string `json:"gender"`
	PhoneNumber   *string `json:"phone_number"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	DateOfBirth   *string `json:"date_of_birth"`
	PatientType   *string `json:"patient_type"`
	GuardianName  *string `json:"guardian_name"`
	GuardianPhone *string `json:"guardian_phone"`
}

// ValidationError is a local, pre-submission failure. It blocks the upstream
// call entirely; the records service never sees an invalid payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

func validPatientType(t string) bool {
	return t == TypeAdult || t == TypeChild
}
