package patient

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func validForm() Form {
	return Form{
		FirstName:   "Jane",
		LastName:    "Smith",
		Age:         34,
		Gender:      GenderFemale,
		PhoneNumber: "555-0100",
		PatientType: TypeAdult,
	}
}

func TestNewEditor_BlankFormDefaultsToAdult(t *testing.T) {
	ed := NewEditor()
	if ed.Mode() != ModeCreate {
		t.Fatalf("expected create mode, got %s", ed.Mode())
	}
	f := ed.Form()
	if f.PatientType != TypeAdult {
		t.Errorf("expected default patient type ADULT, got %q", f.PatientType)
	}
	if f.FirstName != "" || f.Email != "" {
		t.Errorf("expected blank form, got %+v", f)
	}
}

func TestNewEditorFor_CopiesEveryField(t *testing.T) {
	p := &Patient{
		PatientID:   "p-1",
		FirstName:   "Jane",
		LastName:    strPtr("Smith"),
		Age:         34,
		Gender:      GenderFemale,
		PhoneNumber: "555-0100",
		Email:       strPtr("jane@example.com"),
		PatientType: TypeAdult,
	}
	ed := NewEditorFor(p)
	if ed.Mode() != ModeEdit {
		t.Fatalf("expected edit mode, got %s", ed.Mode())
	}
	if ed.PatientID() != "p-1" {
		t.Errorf("expected patient id p-1, got %q", ed.PatientID())
	}
	f := ed.Form()
	if f.FirstName != "Jane" || f.LastName != "Smith" || f.Email != "jane@example.com" {
		t.Errorf("form not seeded from record: %+v", f)
	}
	// Absent optionals become empty strings, not some sentinel.
	if f.Address != "" || f.GuardianPhone != "" {
		t.Errorf("expected absent optionals to load as blank, got %+v", f)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Form)
		field  string
	}{
		{"missing first name", func(f *Form) { f.FirstName = "" }, "first_name"},
		{"zero age", func(f *Form) { f.Age = 0 }, "age"},
		{"negative age", func(f *Form) { f.Age = -3 }, "age"},
		{"missing gender", func(f *Form) { f.Gender = "" }, "gender"},
		{"unknown gender", func(f *Form) { f.Gender = "unknown" }, "gender"},
		{"missing phone", func(f *Form) { f.PhoneNumber = "" }, "phone_number"},
		{"bad patient type", func(f *Form) { f.PatientType = "adult" }, "patient_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			ed := NewEditor()
			ed.SetForm(f)
			verr := ed.Validate()
			if verr == nil {
				t.Fatal("expected validation error, got nil")
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}

	ed := NewEditor()
	ed.SetForm(validForm())
	if verr := ed.Validate(); verr != nil {
		t.Fatalf("expected valid form, got %v", verr)
	}
}

func TestBuildUpdateRequest_BlankBecomesExplicitNull(t *testing.T) {
	p := &Patient{
		PatientID:   "p-1",
		FirstName:   "Jane",
		Age:         34,
		Gender:      GenderFemale,
		PhoneNumber: "555-0100",
		Email:       strPtr("jane@example.com"),
		PatientType: TypeAdult,
	}
	ed := NewEditorFor(p)
	f := ed.Form()
	f.Email = ""
	ed.SetForm(f)

	req := ed.BuildUpdateRequest()
	if req.Email != nil {
		t.Errorf("cleared email should be nil, got %q", *req.Email)
	}
	if req.FirstName == nil || *req.FirstName != "Jane" {
		t.Errorf("untouched first name should pass through, got %v", req.FirstName)
	}
	if req.Age == nil || *req.Age != 34 {
		t.Errorf("age should always carry its numeric value, got %v", req.Age)
	}

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	// The wire payload must say "email": null, not omit the key.
	if !strings.Contains(string(body), `"email":null`) {
		t.Errorf("expected explicit null for cleared email, got %s", body)
	}
	if !strings.Contains(string(body), `"last_name":null`) {
		t.Errorf("expected explicit null for never-set last name, got %s", body)
	}
}

func TestBuildUpdateRequest_ClearGuardianPhone(t *testing.T) {
	p := &Patient{
		PatientID:     "p-2",
		FirstName:     "Tom",
		Age:           9,
		Gender:        GenderMale,
		PhoneNumber:   "555-0101",
		PatientType:   TypeChild,
		GuardianName:  strPtr("Ann"),
		GuardianPhone: strPtr("555-0199"),
	}
	ed := NewEditorFor(p)
	f := ed.Form()
	f.GuardianPhone = ""
	ed.SetForm(f)

	req := ed.BuildUpdateRequest()
	if req.GuardianPhone != nil {
		t.Errorf("cleared guardian phone should be nil, got %q", *req.GuardianPhone)
	}
	if req.GuardianName == nil || *req.GuardianName != "Ann" {
		t.Errorf("guardian name should pass through, got %v", req.GuardianName)
	}
}

func TestBuildCreateRequest_UniformTransform(t *testing.T) {
	ed := NewEditor()
	f := validForm()
	f.LastName = ""
	f.Email = "jane@example.com"
	ed.SetForm(f)

	req := ed.BuildCreateRequest()
	if req.FirstName != "Jane" {
		t.Errorf("expected first name Jane, got %q", req.FirstName)
	}
	if req.LastName != nil {
		t.Errorf("blank last name should be nil, got %q", *req.LastName)
	}
	if req.Email == nil || *req.Email != "jane@example.com" {
		t.Errorf("filled email should pass through, got %v", req.Email)
	}

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"last_name":null`) {
		t.Errorf("expected explicit null for blank last name, got %s", body)
	}
}

func TestReset_ReturnsToBlankCreateEditor(t *testing.T) {
	ed := NewEditorFor(&Patient{
		PatientID: "p-1", FirstName: "Jane", Age: 34,
		Gender: GenderFemale, PhoneNumber: "555-0100", PatientType: TypeAdult,
	})
	ed.Reset()
	if ed.Mode() != ModeCreate || ed.PatientID() != "" {
		t.Errorf("reset should drop back to create mode, got %s %q", ed.Mode(), ed.PatientID())
	}
	f := ed.Form()
	if f.FirstName != "" || f.Age != 0 {
		t.Errorf("expected blank form after reset, got %+v", f)
	}
	if f.PatientType != TypeAdult {
		t.Errorf("expected patient type to reset to ADULT, got %q", f.PatientType)
	}
}

func TestDisplayName(t *testing.T) {
	p := &Patient{FirstName: "Jane", LastName: strPtr("Smith")}
	if got := p.DisplayName(); got != "Jane Smith" {
		t.Errorf("expected Jane Smith, got %q", got)
	}
	p.LastName = nil
	if got := p.DisplayName(); got != "Jane" {
		t.Errorf("expected Jane, got %q", got)
	}
}
