// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"limscore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Part aliases domain.Part for in-memory persistence operations.
	Part = domain.Part
	// Container aliases domain.Container embedded in parts.
	Container = domain.Container
	// ContainerGroup aliases domain.ContainerGroup.
	ContainerGroup = domain.ContainerGroup
	// Location aliases domain.Location.
	Location = domain.Location
	// PickList aliases domain.PickList.
	PickList = domain.PickList
	// PartDeletionRequest aliases domain.PartDeletionRequest.
	PartDeletionRequest = domain.PartDeletionRequest
	// PartHistory aliases domain.PartHistory.
	PartHistory = domain.PartHistory
	// LogOperation aliases domain.LogOperation appended in transactions.
	LogOperation = domain.LogOperation
	// LogLogin aliases domain.LogLogin.
	LogLogin = domain.LogLogin
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	parts            map[string]Part
	groups           map[string]ContainerGroup
	locations        map[string]Location
	pickLists        map[string]PickList
	deletionRequests map[string]PartDeletionRequest
	histories        map[string]PartHistory
	operationLogs    []LogOperation
	loginLogs        []LogLogin
	counters         map[string]int64
}

// Snapshot captures a point-in-time clone of the store state. Counters travel
// with the snapshot so allocated sequence values are never reused.
type Snapshot struct {
	Parts            map[string]Part                `json:"parts"`
	Groups           map[string]ContainerGroup      `json:"container_groups"`
	Locations        map[string]Location            `json:"locations"`
	PickLists        map[string]PickList            `json:"pick_lists"`
	DeletionRequests map[string]PartDeletionRequest `json:"part_deletion_requests"`
	Histories        map[string]PartHistory         `json:"part_histories"`
	OperationLogs    []LogOperation                 `json:"log_operations"`
	LoginLogs        []LogLogin                     `json:"log_logins"`
	Counters         map[string]int64               `json:"counters"`
}

func newMemoryState() memoryState {
	return memoryState{
		parts:            make(map[string]Part),
		groups:           make(map[string]ContainerGroup),
		locations:        make(map[string]Location),
		pickLists:        make(map[string]PickList),
		deletionRequests: make(map[string]PartDeletionRequest),
		histories:        make(map[string]PartHistory),
		counters:         make(map[string]int64),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.parts {
		cloned.parts[k] = clonePart(v)
	}
	for k, v := range s.groups {
		cloned.groups[k] = cloneGroup(v)
	}
	for k, v := range s.locations {
		cloned.locations[k] = v
	}
	for k, v := range s.pickLists {
		cloned.pickLists[k] = clonePickList(v)
	}
	for k, v := range s.deletionRequests {
		cloned.deletionRequests[k] = cloneDeletionRequest(v)
	}
	for k, v := range s.histories {
		cloned.histories[k] = cloneHistory(v)
	}
	cloned.operationLogs = make([]LogOperation, 0, len(s.operationLogs))
	for _, l := range s.operationLogs {
		cloned.operationLogs = append(cloned.operationLogs, cloneOperationLog(l))
	}
	cloned.loginLogs = append([]LogLogin(nil), s.loginLogs...)
	for k, v := range s.counters {
		cloned.counters[k] = v
	}
	return cloned
}

func cloneContainer(c Container) Container {
	cp := c
	cp.LocationHistory = c.LocationHistory.Clone()
	if c.VerifiedAt != nil {
		t := *c.VerifiedAt
		cp.VerifiedAt = &t
	}
	return cp
}

func clonePart(p Part) Part {
	cp := p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Content = p.Content.Clone()
	cp.Attachments = append([]domain.Attachment(nil), p.Attachments...)
	if p.SampleDate != nil {
		t := *p.SampleDate
		cp.SampleDate = &t
	}
	cp.Containers = make([]Container, 0, len(p.Containers))
	for _, c := range p.Containers {
		cp.Containers = append(cp.Containers, cloneContainer(c))
	}
	return cp
}

func cloneGroup(g ContainerGroup) ContainerGroup {
	cp := g
	cp.LocationHistory = g.LocationHistory.Clone()
	if g.VerifiedAt != nil {
		t := *g.VerifiedAt
		cp.VerifiedAt = &t
	}
	return cp
}

func clonePickList(l PickList) PickList {
	cp := l
	cp.Parts = append([]string(nil), l.Parts...)
	return cp
}

func cloneDeletionRequest(r PartDeletionRequest) PartDeletionRequest {
	cp := r
	cp.RequestedAt = append([]time.Time(nil), r.RequestedAt...)
	return cp
}

func cloneHistory(h PartHistory) PartHistory {
	cp := h
	cp.Snapshots = make([]Part, 0, len(h.Snapshots))
	for _, s := range h.Snapshots {
		cp.Snapshots = append(cp.Snapshots, clonePart(s))
	}
	return cp
}

func cloneOperationLog(l LogOperation) LogOperation {
	cp := l
	if l.Data != nil {
		cp.Data = make(map[string]any, len(l.Data))
		for k, v := range l.Data {
			cp.Data[k] = v
		}
	}
	return cp
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// RulesEngine returns the engine evaluated at each transaction boundary.
func (s *Store) RulesEngine() *RulesEngine { return s.engine }

// NowFunc returns the clock used to stamp transactions.
func (s *Store) NowFunc() func() time.Time { return s.nowFn }

// SetNowFunc overrides the transaction clock; nil restores the UTC wall clock.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() time.Time { return time.Now().UTC() }
	}
	s.nowFn = fn
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rule evaluation happens over the recorded change set before the copy is
// swapped in; failures leave committed state untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := &view{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(&view{state: &snapshot})
}

// ExportState returns a deep copy of committed state for durable wrappers.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces committed state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

func snapshotFromState(state memoryState) Snapshot {
	out := Snapshot{
		Parts:            make(map[string]Part, len(state.parts)),
		Groups:           make(map[string]ContainerGroup, len(state.groups)),
		Locations:        make(map[string]Location, len(state.locations)),
		PickLists:        make(map[string]PickList, len(state.pickLists)),
		DeletionRequests: make(map[string]PartDeletionRequest, len(state.deletionRequests)),
		Histories:        make(map[string]PartHistory, len(state.histories)),
		Counters:         make(map[string]int64, len(state.counters)),
	}
	for k, v := range state.parts {
		out.Parts[k] = clonePart(v)
	}
	for k, v := range state.groups {
		out.Groups[k] = cloneGroup(v)
	}
	for k, v := range state.locations {
		out.Locations[k] = v
	}
	for k, v := range state.pickLists {
		out.PickLists[k] = clonePickList(v)
	}
	for k, v := range state.deletionRequests {
		out.DeletionRequests[k] = cloneDeletionRequest(v)
	}
	for k, v := range state.histories {
		out.Histories[k] = cloneHistory(v)
	}
	for _, l := range state.operationLogs {
		out.OperationLogs = append(out.OperationLogs, cloneOperationLog(l))
	}
	out.LoginLogs = append([]LogLogin(nil), state.loginLogs...)
	for k, v := range state.counters {
		out.Counters[k] = v
	}
	return out
}

func stateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range snapshot.Parts {
		state.parts[k] = clonePart(v)
	}
	for k, v := range snapshot.Groups {
		state.groups[k] = cloneGroup(v)
	}
	for k, v := range snapshot.Locations {
		state.locations[k] = v
	}
	for k, v := range snapshot.PickLists {
		state.pickLists[k] = clonePickList(v)
	}
	for k, v := range snapshot.DeletionRequests {
		state.deletionRequests[k] = cloneDeletionRequest(v)
	}
	for k, v := range snapshot.Histories {
		state.histories[k] = cloneHistory(v)
	}
	for _, l := range snapshot.OperationLogs {
		state.operationLogs = append(state.operationLogs, cloneOperationLog(l))
	}
	state.loginLogs = append([]LogLogin(nil), snapshot.LoginLogs...)
	for k, v := range snapshot.Counters {
		state.counters[k] = v
	}
	return state
}
