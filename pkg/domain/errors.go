package domain

import "fmt"

// ValidationError reports a malformed or missing required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateBarcodeError reports a barcode already bound to an active
// container or group. The conflicting value is surfaced for correction.
type DuplicateBarcodeError struct {
	Barcode string
}

func (e DuplicateBarcodeError) Error() string {
	return fmt.Sprintf("barcode %q is already assigned to an active container", e.Barcode)
}

// ImmutableFieldError reports an attempt to alter an identity field fixed at
// creation time.
type ImmutableFieldError struct {
	Field string
}

func (e ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %s is immutable after creation", e.Field)
}

// NotFoundError reports a missing part, container, group, location, or list.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DeferredDeletionError signals that a deletion was queued for administrator
// review rather than denied or performed.
type DeferredDeletionError struct {
	PartID   string
	Requests int
}

func (e DeferredDeletionError) Error() string {
	return fmt.Sprintf("deletion of part %s queued for administrator review (request #%d)", e.PartID, e.Requests)
}

// UnauthorizedError reports an actor lacking the group membership an
// operation requires.
type UnauthorizedError struct {
	Name      string
	Operation string
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("%s is not authorized to %s", e.Name, e.Operation)
}
