package memory

import (
	"sort"

	"limscore/pkg/domain"
)

// Read helpers over committed state ------------------------------------------

// GetPart retrieves a part by ID from committed state.
func (s *Store) GetPart(id string) (Part, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.parts[id]
	if !ok {
		return Part{}, false
	}
	return clonePart(p), true
}

// ListParts returns all parts from committed state ordered by lab name.
func (s *Store) ListParts() []Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Part, 0, len(s.state.parts))
	for _, p := range s.state.parts {
		out = append(out, clonePart(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LabName < out[j].LabName })
	return out
}

// ListPartsByOwner returns the parts owned by the given user.
func (s *Store) ListPartsByOwner(ownerID string) []Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Part
	for _, p := range s.state.parts {
		if p.OwnerID == ownerID {
			out = append(out, clonePart(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonalName < out[j].PersonalName })
	return out
}

// ListPartsByType returns the parts of the given sample type.
func (s *Store) ListPartsByType(sampleType domain.SampleType) []Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Part
	for _, p := range s.state.parts {
		if p.SampleType == sampleType {
			out = append(out, clonePart(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LabName < out[j].LabName })
	return out
}

// FindPartByBarcode locates the part owning the container with the barcode.
func (s *Store) FindPartByBarcode(barcode string) (Part, Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findPartByBarcode(s.state.parts, barcode)
}

// GetContainerGroup retrieves a group by ID.
func (s *Store) GetContainerGroup(id string) (ContainerGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.state.groups[id]
	if !ok {
		return ContainerGroup{}, false
	}
	return cloneGroup(g), true
}

// ListContainerGroups returns all container groups.
func (s *Store) ListContainerGroups() []ContainerGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ContainerGroup, 0, len(s.state.groups))
	for _, g := range s.state.groups {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

// FindContainerGroupByBarcode retrieves a group by its barcode.
func (s *Store) FindContainerGroupByBarcode(barcode string) (ContainerGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.state.groups {
		if g.Barcode == barcode {
			return cloneGroup(g), true
		}
	}
	return ContainerGroup{}, false
}

// GetLocation retrieves a location by ID.
func (s *Store) GetLocation(id string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.state.locations[id]
	return l, ok
}

// ListLocations returns all locations ordered by barcode.
func (s *Store) ListLocations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Location, 0, len(s.state.locations))
	for _, l := range s.state.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

// GetPickList retrieves a pick list by ID.
func (s *Store) GetPickList(id string) (PickList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.state.pickLists[id]
	if !ok {
		return PickList{}, false
	}
	return clonePickList(l), true
}

// ListPickListsByOwner returns the pick lists owned by the given user.
func (s *Store) ListPickListsByOwner(ownerID string) []PickList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PickList
	for _, l := range s.state.pickLists {
		if l.OwnerID == ownerID {
			out = append(out, clonePickList(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetPartHistory retrieves the version history of a part.
func (s *Store) GetPartHistory(partID string) (PartHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.state.histories[partID]
	if !ok {
		return PartHistory{}, false
	}
	return cloneHistory(h), true
}

// ListDeletionRequests returns all pending deletion requests.
func (s *Store) ListDeletionRequests() []PartDeletionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PartDeletionRequest, 0, len(s.state.deletionRequests))
	for _, r := range s.state.deletionRequests {
		out = append(out, cloneDeletionRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartID < out[j].PartID })
	return out
}

// ListOperationLogs returns the audit trail in append order.
func (s *Store) ListOperationLogs() []LogOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogOperation, 0, len(s.state.operationLogs))
	for _, l := range s.state.operationLogs {
		out = append(out, cloneOperationLog(l))
	}
	return out
}

// ListLoginLogs returns the login trail in append order.
func (s *Store) ListLoginLogs() []LogLogin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LogLogin(nil), s.state.loginLogs...)
}
