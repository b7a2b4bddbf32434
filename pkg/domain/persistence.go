package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Sequence allocation, uniqueness checks,
// and writes performed through a transaction commit or discard together.
type Transaction interface {
	Snapshot() TransactionView

	// NextSequence atomically increments and returns the named counter.
	// Allocated values are never reused, even after record deletion.
	NextSequence(name string) (int64, error)

	CreatePart(Part) (Part, error)
	UpdatePart(id string, mutator func(*Part) error) (Part, error)
	DeletePart(id string) error
	FindPart(id string) (Part, bool)
	FindPartByBarcode(barcode string) (Part, Container, bool)

	CreateContainerGroup(ContainerGroup) (ContainerGroup, error)
	UpdateContainerGroup(id string, mutator func(*ContainerGroup) error) (ContainerGroup, error)
	DeleteContainerGroup(id string) error
	FindContainerGroup(id string) (ContainerGroup, bool)

	CreateLocation(Location) (Location, error)
	UpdateLocation(id string, mutator func(*Location) error) (Location, error)
	DeleteLocation(id string) error
	FindLocation(id string) (Location, bool)

	CreatePickList(PickList) (PickList, error)
	UpdatePickList(id string, mutator func(*PickList) error) (PickList, error)
	DeletePickList(id string) error
	FindPickList(id string) (PickList, bool)

	// UpsertDeletionRequest creates or amends the pending request for a part.
	UpsertDeletionRequest(partID string, mutator func(*PartDeletionRequest) error) (PartDeletionRequest, error)
	DeleteDeletionRequest(partID string) error
	FindDeletionRequest(partID string) (PartDeletionRequest, bool)

	// AppendPartHistory archives a prior version snapshot of a part and
	// returns the history record identifier.
	AppendPartHistory(partID string, snapshot Part) (string, error)

	// AppendOperationLog and AppendLoginLog are the only write paths into the
	// audit trail; entries are never updated or removed.
	AppendOperationLog(LogOperation) (LogOperation, error)
	AppendLoginLog(LogLogin) (LogLogin, error)
}

// TransactionView provides read-only access to snapshot data for rules and
// queries.
type TransactionView interface {
	ListParts() []Part
	FindPart(id string) (Part, bool)
	FindPartByBarcode(barcode string) (Part, Container, bool)
	ListContainerGroups() []ContainerGroup
	FindContainerGroup(id string) (ContainerGroup, bool)
	ListLocations() []Location
	ListPickLists() []PickList
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error

	GetPart(id string) (Part, bool)
	ListParts() []Part
	ListPartsByOwner(ownerID string) []Part
	ListPartsByType(sampleType SampleType) []Part
	FindPartByBarcode(barcode string) (Part, Container, bool)

	GetContainerGroup(id string) (ContainerGroup, bool)
	ListContainerGroups() []ContainerGroup
	FindContainerGroupByBarcode(barcode string) (ContainerGroup, bool)

	GetLocation(id string) (Location, bool)
	ListLocations() []Location

	GetPickList(id string) (PickList, bool)
	ListPickListsByOwner(ownerID string) []PickList

	GetPartHistory(partID string) (PartHistory, bool)
	ListDeletionRequests() []PartDeletionRequest
	ListOperationLogs() []LogOperation
	ListLoginLogs() []LogLogin
}
