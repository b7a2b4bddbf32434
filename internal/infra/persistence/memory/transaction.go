package memory

import (
	"fmt"
	"sort"
	"time"

	"limscore/pkg/domain"
)

var _ domain.Transaction = (*transaction)(nil)

// transaction is a mutation set applied to a cloned copy of the store state.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state to rules and validation helpers.
func (tx *transaction) Snapshot() TransactionView {
	return &view{state: &tx.state}
}

// NextSequence increments and returns the named counter. The increment commits
// or discards with the rest of the transaction, so concurrent allocations
// against committed state can never observe the same value.
func (tx *transaction) NextSequence(name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("sequence name cannot be empty")
	}
	tx.state.counters[name]++
	return tx.state.counters[name], nil
}

// CreatePart stores a new part within the transaction.
func (tx *transaction) CreatePart(p Part) (Part, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := tx.state.parts[p.ID]; exists {
		return Part{}, fmt.Errorf("part %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Containers == nil {
		p.Containers = []Container{}
	}
	tx.state.parts[p.ID] = clonePart(p)
	tx.recordChange(Change{Entity: domain.EntityPart, Action: domain.ActionCreate, After: clonePart(p)})
	return clonePart(p), nil
}

// UpdatePart mutates a part using the provided mutator function.
func (tx *transaction) UpdatePart(id string, mutator func(*Part) error) (Part, error) {
	current, ok := tx.state.parts[id]
	if !ok {
		return Part{}, domain.NotFoundError{Entity: domain.EntityPart, ID: id}
	}
	before := clonePart(current)
	if err := mutator(&current); err != nil {
		return Part{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.parts[id] = clonePart(current)
	tx.recordChange(Change{Entity: domain.EntityPart, Action: domain.ActionUpdate, Before: before, After: clonePart(current)})
	return clonePart(current), nil
}

// DeletePart removes a part from the transaction state.
func (tx *transaction) DeletePart(id string) error {
	current, ok := tx.state.parts[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityPart, ID: id}
	}
	delete(tx.state.parts, id)
	tx.recordChange(Change{Entity: domain.EntityPart, Action: domain.ActionDelete, Before: clonePart(current)})
	return nil
}

// FindPart retrieves a part by ID from the transaction state.
func (tx *transaction) FindPart(id string) (Part, bool) {
	p, ok := tx.state.parts[id]
	if !ok {
		return Part{}, false
	}
	return clonePart(p), true
}

// FindPartByBarcode locates the part owning the container with the barcode.
func (tx *transaction) FindPartByBarcode(barcode string) (Part, Container, bool) {
	return findPartByBarcode(tx.state.parts, barcode)
}

func findPartByBarcode(parts map[string]Part, barcode string) (Part, Container, bool) {
	for _, p := range parts {
		if c, ok := p.FindContainer(barcode); ok {
			return clonePart(p), cloneContainer(c), true
		}
	}
	return Part{}, Container{}, false
}

// CreateContainerGroup stores a new plate or rack.
func (tx *transaction) CreateContainerGroup(g ContainerGroup) (ContainerGroup, error) {
	if g.ID == "" {
		g.ID = newID()
	}
	if _, exists := tx.state.groups[g.ID]; exists {
		return ContainerGroup{}, fmt.Errorf("container group %q already exists", g.ID)
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.groups[g.ID] = cloneGroup(g)
	tx.recordChange(Change{Entity: domain.EntityContainerGroup, Action: domain.ActionCreate, After: cloneGroup(g)})
	return cloneGroup(g), nil
}

// UpdateContainerGroup mutates an existing group.
func (tx *transaction) UpdateContainerGroup(id string, mutator func(*ContainerGroup) error) (ContainerGroup, error) {
	current, ok := tx.state.groups[id]
	if !ok {
		return ContainerGroup{}, domain.NotFoundError{Entity: domain.EntityContainerGroup, ID: id}
	}
	before := cloneGroup(current)
	if err := mutator(&current); err != nil {
		return ContainerGroup{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.groups[id] = cloneGroup(current)
	tx.recordChange(Change{Entity: domain.EntityContainerGroup, Action: domain.ActionUpdate, Before: before, After: cloneGroup(current)})
	return cloneGroup(current), nil
}

// DeleteContainerGroup removes a group from state.
func (tx *transaction) DeleteContainerGroup(id string) error {
	current, ok := tx.state.groups[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityContainerGroup, ID: id}
	}
	delete(tx.state.groups, id)
	tx.recordChange(Change{Entity: domain.EntityContainerGroup, Action: domain.ActionDelete, Before: cloneGroup(current)})
	return nil
}

// FindContainerGroup retrieves a group by ID.
func (tx *transaction) FindContainerGroup(id string) (ContainerGroup, bool) {
	g, ok := tx.state.groups[id]
	if !ok {
		return ContainerGroup{}, false
	}
	return cloneGroup(g), true
}

// CreateLocation stores a new location record.
func (tx *transaction) CreateLocation(l Location) (Location, error) {
	if l.ID == "" {
		l.ID = newID()
	}
	if _, exists := tx.state.locations[l.ID]; exists {
		return Location{}, fmt.Errorf("location %q already exists", l.ID)
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.locations[l.ID] = l
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionCreate, After: l})
	return l, nil
}

// UpdateLocation mutates an existing location.
func (tx *transaction) UpdateLocation(id string, mutator func(*Location) error) (Location, error) {
	current, ok := tx.state.locations[id]
	if !ok {
		return Location{}, domain.NotFoundError{Entity: domain.EntityLocation, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Location{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.locations[id] = current
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteLocation removes a location record.
func (tx *transaction) DeleteLocation(id string) error {
	current, ok := tx.state.locations[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityLocation, ID: id}
	}
	delete(tx.state.locations, id)
	tx.recordChange(Change{Entity: domain.EntityLocation, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindLocation retrieves a location by ID.
func (tx *transaction) FindLocation(id string) (Location, bool) {
	l, ok := tx.state.locations[id]
	return l, ok
}

// CreatePickList stores a new pick list.
func (tx *transaction) CreatePickList(l PickList) (PickList, error) {
	if l.ID == "" {
		l.ID = newID()
	}
	if _, exists := tx.state.pickLists[l.ID]; exists {
		return PickList{}, fmt.Errorf("pick list %q already exists", l.ID)
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	if l.Parts == nil {
		l.Parts = []string{}
	}
	l.PartsCount = len(l.Parts)
	tx.state.pickLists[l.ID] = clonePickList(l)
	tx.recordChange(Change{Entity: domain.EntityPickList, Action: domain.ActionCreate, After: clonePickList(l)})
	return clonePickList(l), nil
}

// UpdatePickList mutates an existing pick list.
func (tx *transaction) UpdatePickList(id string, mutator func(*PickList) error) (PickList, error) {
	current, ok := tx.state.pickLists[id]
	if !ok {
		return PickList{}, domain.NotFoundError{Entity: domain.EntityPickList, ID: id}
	}
	before := clonePickList(current)
	if err := mutator(&current); err != nil {
		return PickList{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	current.PartsCount = len(current.Parts)
	tx.state.pickLists[id] = clonePickList(current)
	tx.recordChange(Change{Entity: domain.EntityPickList, Action: domain.ActionUpdate, Before: before, After: clonePickList(current)})
	return clonePickList(current), nil
}

// DeletePickList removes a pick list from state.
func (tx *transaction) DeletePickList(id string) error {
	current, ok := tx.state.pickLists[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityPickList, ID: id}
	}
	delete(tx.state.pickLists, id)
	tx.recordChange(Change{Entity: domain.EntityPickList, Action: domain.ActionDelete, Before: clonePickList(current)})
	return nil
}

// FindPickList retrieves a pick list by ID.
func (tx *transaction) FindPickList(id string) (PickList, bool) {
	l, ok := tx.state.pickLists[id]
	if !ok {
		return PickList{}, false
	}
	return clonePickList(l), true
}

// UpsertDeletionRequest creates or amends the pending request for a part.
func (tx *transaction) UpsertDeletionRequest(partID string, mutator func(*PartDeletionRequest) error) (PartDeletionRequest, error) {
	current, ok := tx.state.deletionRequests[partID]
	action := domain.ActionUpdate
	if !ok {
		current = PartDeletionRequest{PartID: partID}
		current.ID = newID()
		current.CreatedAt = tx.now
		action = domain.ActionCreate
	}
	before := cloneDeletionRequest(current)
	if err := mutator(&current); err != nil {
		return PartDeletionRequest{}, err
	}
	current.PartID = partID
	current.UpdatedAt = tx.now
	tx.state.deletionRequests[partID] = cloneDeletionRequest(current)
	change := Change{Entity: domain.EntityDeletionRequest, Action: action, After: cloneDeletionRequest(current)}
	if action == domain.ActionUpdate {
		change.Before = before
	}
	tx.recordChange(change)
	return cloneDeletionRequest(current), nil
}

// DeleteDeletionRequest drops the pending request for a part, if any.
func (tx *transaction) DeleteDeletionRequest(partID string) error {
	current, ok := tx.state.deletionRequests[partID]
	if !ok {
		return nil
	}
	delete(tx.state.deletionRequests, partID)
	tx.recordChange(Change{Entity: domain.EntityDeletionRequest, Action: domain.ActionDelete, Before: cloneDeletionRequest(current)})
	return nil
}

// FindDeletionRequest retrieves the pending request for a part.
func (tx *transaction) FindDeletionRequest(partID string) (PartDeletionRequest, bool) {
	r, ok := tx.state.deletionRequests[partID]
	if !ok {
		return PartDeletionRequest{}, false
	}
	return cloneDeletionRequest(r), true
}

// AppendPartHistory archives a prior version snapshot of a part.
func (tx *transaction) AppendPartHistory(partID string, snapshot Part) (string, error) {
	if partID == "" {
		return "", fmt.Errorf("part id cannot be empty")
	}
	h, ok := tx.state.histories[partID]
	if !ok {
		h = PartHistory{PartID: partID}
	}
	h.Snapshots = append(h.Snapshots, clonePart(snapshot))
	tx.state.histories[partID] = cloneHistory(h)
	return partID, nil
}

// AppendOperationLog appends an audit entry; there is no update or delete path.
func (tx *transaction) AppendOperationLog(l LogOperation) (LogOperation, error) {
	if l.ID == "" {
		l.ID = newID()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = tx.now
	}
	tx.state.operationLogs = append(tx.state.operationLogs, cloneOperationLog(l))
	tx.recordChange(Change{Entity: domain.EntityLogOperation, Action: domain.ActionCreate, After: cloneOperationLog(l)})
	return cloneOperationLog(l), nil
}

// AppendLoginLog appends a login entry; there is no update or delete path.
func (tx *transaction) AppendLoginLog(l LogLogin) (LogLogin, error) {
	if l.ID == "" {
		l.ID = newID()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = tx.now
	}
	tx.state.loginLogs = append(tx.state.loginLogs, l)
	tx.recordChange(Change{Entity: domain.EntityLogLogin, Action: domain.ActionCreate, After: l})
	return l, nil
}

var _ domain.TransactionView = (*view)(nil)

// view exposes a read-only snapshot of a state to rules and queries.
type view struct {
	state *memoryState
}

// ListParts returns all parts within the snapshot, ordered by lab name.
func (v *view) ListParts() []Part {
	out := make([]Part, 0, len(v.state.parts))
	for _, p := range v.state.parts {
		out = append(out, clonePart(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LabName < out[j].LabName })
	return out
}

// FindPart retrieves a part by ID from the snapshot.
func (v *view) FindPart(id string) (Part, bool) {
	p, ok := v.state.parts[id]
	if !ok {
		return Part{}, false
	}
	return clonePart(p), true
}

// FindPartByBarcode locates the part owning the container with the barcode.
func (v *view) FindPartByBarcode(barcode string) (Part, Container, bool) {
	return findPartByBarcode(v.state.parts, barcode)
}

// ListContainerGroups returns all groups within the snapshot.
func (v *view) ListContainerGroups() []ContainerGroup {
	out := make([]ContainerGroup, 0, len(v.state.groups))
	for _, g := range v.state.groups {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

// FindContainerGroup retrieves a group by ID from the snapshot.
func (v *view) FindContainerGroup(id string) (ContainerGroup, bool) {
	g, ok := v.state.groups[id]
	if !ok {
		return ContainerGroup{}, false
	}
	return cloneGroup(g), true
}

// ListLocations returns all locations within the snapshot.
func (v *view) ListLocations() []Location {
	out := make([]Location, 0, len(v.state.locations))
	for _, l := range v.state.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

// ListPickLists returns all pick lists within the snapshot.
func (v *view) ListPickLists() []PickList {
	out := make([]PickList, 0, len(v.state.pickLists))
	for _, l := range v.state.pickLists {
		out = append(out, clonePickList(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
