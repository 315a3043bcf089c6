package billing

import (
	"errors"
	"sync"

	"github.com/clinicdesk/clinicdesk/internal/domain/medicine"
)

// Draft lifecycle. A draft is composable until submission starts, and is
// torn down only after the records service acknowledges the bill.
type State string

const (
	StateComposing  State = "composing"
	StateSubmitting State = "submitting"
	StateCommitted  State = "committed"
)

var (
	ErrPositionOutOfRange = errors.New("line item position out of range")
	ErrSubmitInFlight     = errors.New("draft submission already in progress")
	ErrDraftClosed        = errors.New("draft already committed")
)

// Draft is an in-progress bill: a selected patient and an ordered list of
// line items. All methods are safe for concurrent use; the draft serializes
// its own mutations so two dashboard tabs cannot corrupt the item list.
type Draft struct {
	mu        sync.Mutex
	state     State
	patientID string
	items     []LineItem
}

func NewDraft() *Draft {
	return &Draft{state: StateComposing}
}

func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Draft) PatientID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.patientID
}

// Items returns a copy of the line items; callers cannot mutate the draft
// through the returned slice.
func (d *Draft) Items() []LineItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// SelectPatient points the draft at a roster entry. The id is resolved
// against the roster only at submission time.
func (d *Draft) SelectPatient(patientID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.composableLocked(); err != nil {
		return err
	}
	d.patientID = patientID
	return nil
}

// AddItem appends a blank row: no medicine selected, quantity one.
func (d *Draft) AddItem() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.composableLocked(); err != nil {
		return err
	}
	d.items = append(d.items, LineItem{Quantity: 1})
	return nil
}

// RemoveItem deletes the row at pos. Rows after it shift up one position;
// their order is preserved.
func (d *Draft) RemoveItem(pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.composableLocked(); err != nil {
		return err
	}
	if pos < 0 || pos >= len(d.items) {
		return ErrPositionOutOfRange
	}
	d.items = append(d.items[:pos], d.items[pos+1:]...)
	return nil
}

// ItemPatch is a partial row update; nil fields are left untouched.
type ItemPatch struct {
	MedicineID *int64 `json:"medicine_id"`
	Quantity   *int   `json:"quantity"`
}

// UpdateItem applies a patch to the row at pos. Out-of-range quantities are
// accepted here and reported by Validate; the dashboard shows the running
// total even while a row is mid-edit.
func (d *Draft) UpdateItem(pos int, patch ItemPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.composableLocked(); err != nil {
		return err
	}
	if pos < 0 || pos >= len(d.items) {
		return ErrPositionOutOfRange
	}
	if patch.MedicineID != nil {
		d.items[pos].MedicineID = *patch.MedicineID
	}
	if patch.Quantity != nil {
		d.items[pos].Quantity = *patch.Quantity
	}
	return nil
}

// ComputeTotal prices the draft against the catalog. Rows with no medicine
// selected, or whose medicine has vanished from the catalog, contribute
// zero; an empty draft totals zero.
func (d *Draft) ComputeTotal(catalog map[int64]*medicine.Medicine) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var total float64
	for _, it := range d.items {
		m, ok := catalog[it.MedicineID]
		if !ok {
			continue
		}
		total += m.PricePerUnit * float64(it.Quantity)
	}
	return total
}

// Validate checks the draft against the submission rules and reports the
// first violation: patient selected, at least one row, then each row in
// order must name a known medicine and carry a positive quantity.
func (d *Draft) Validate(catalog map[int64]*medicine.Medicine) *ValidationError {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.patientID == "" {
		return &ValidationError{Kind: NoPatientSelected, Position: -1}
	}
	if len(d.items) == 0 {
		return &ValidationError{Kind: EmptyBill, Position: -1}
	}
	for i, it := range d.items {
		if it.MedicineID == 0 {
			return &ValidationError{Kind: MissingMedicine, Position: i}
		}
		if catalog != nil {
			if _, ok := catalog[it.MedicineID]; !ok {
				return &ValidationError{Kind: MissingMedicine, Position: i}
			}
		}
		if it.Quantity < 1 {
			return &ValidationError{Kind: InvalidQuantity, Position: i}
		}
	}
	return nil
}

// buildRequest snapshots the draft into the submission payload.
func (d *Draft) buildRequest(patientName string, patientAge int) *CreateRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make([]LineItem, len(d.items))
	copy(items, d.items)
	return &CreateRequest{
		PatientName: patientName,
		PatientAge:  patientAge,
		Items:       items,
	}
}

// beginSubmit moves the draft into the submitting state, locking out
// mutations and concurrent submits.
func (d *Draft) beginSubmit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateCommitted:
		return ErrDraftClosed
	}
	d.state = StateSubmitting
	return nil
}

// finishSubmit records the outcome: committed on success, back to composing
// with the line items untouched on failure.
func (d *Draft) finishSubmit(ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ok {
		d.state = StateCommitted
	} else {
		d.state = StateComposing
	}
}

func (d *Draft) composableLocked() error {
	switch d.state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateCommitted:
		return ErrDraftClosed
	}
	return nil
}
