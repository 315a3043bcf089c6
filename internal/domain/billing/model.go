package billing

import (
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/domain/medicine"
)

// LineItem is one row of a draft: a catalog medicine and a quantity. A
// MedicineID of zero means the row has no medicine selected yet. This is
// also the per-item shape of the submission payload.
type LineItem struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int   `json:"quantity"`
}

// BillItem is a committed line item as the records service returns it:
// the row keys, the price captured at submission time, and the medicine
// record embedded for display.
type BillItem struct {
	ID           int64              `json:"id"`
	BillID       int64              `json:"bill_id"`
	MedicineID   int64              `json:"medicine_id"`
	Quantity     int                `json:"quantity"`
	PricePerUnit float64            `json:"price_per_unit"`
	Medicine     *medicine.Medicine `json:"medicine"`
}

// Bill is a committed bill as the records service returns it. The patient
// name and age are denormalized at submission time; later edits to the
// patient record do not rewrite past bills. Note the asymmetry with
// CreateRequest: the service accepts "items" but serializes "bill_items".
type Bill struct {
	ID          int64      `json:"id"`
	PatientName string     `json:"patient_name"`
	PatientAge  int        `json:"patient_age"`
	Items       []BillItem `json:"bill_items"`
	TotalAmount float64    `json:"total_amount"`
}

// CreateRequest is the submission payload for the records service.
type CreateRequest struct {
	PatientName string     `json:"patient_name"`
	PatientAge  int        `json:"patient_age"`
	Items       []LineItem `json:"items"`
}

// Validation failure kinds, checked in a fixed order on submit.
type ValidationKind string

const (
	NoPatientSelected ValidationKind = "no_patient_selected"
	EmptyBill         ValidationKind = "empty_bill"
	MissingMedicine   ValidationKind = "missing_medicine"
	InvalidQuantity   ValidationKind = "invalid_quantity"
	PatientNotFound   ValidationKind = "patient_not_found"
)

// ValidationError reports the first rule a draft violates. Position is the
// zero-based offending row for item-level kinds, -1 for draft-level ones.
type ValidationError struct {
	Kind     ValidationKind
	Position int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NoPatientSelected:
		return "no patient selected"
	case EmptyBill:
		return "bill has no items"
	case MissingMedicine:
		return fmt.Sprintf("item %d has no medicine selected", e.Position)
	case InvalidQuantity:
		return fmt.Sprintf("item %d has an invalid quantity", e.Position)
	case PatientNotFound:
		return "selected patient no longer exists"
	}
	return string(e.Kind)
}
