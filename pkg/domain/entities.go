// Package domain defines the core persistent entities, value types, and
// invariant evaluation primitives of the sample-inventory ledger.
package domain

import (
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPart identifies a registered biological sample record.
	EntityPart EntityType = "part"
	// EntityContainer identifies a physical vessel embedded in a part.
	EntityContainer EntityType = "container"
	// EntityContainerGroup identifies a plate or rack record.
	EntityContainerGroup EntityType = "container_group"
	// EntityLocation identifies a storage location record.
	EntityLocation EntityType = "location"
	// EntityPickList identifies a personal pick list record.
	EntityPickList EntityType = "pick_list"
	// EntityLogOperation identifies an audit log entry.
	EntityLogOperation EntityType = "log_operation"
	// EntityLogLogin identifies a login log entry.
	EntityLogLogin EntityType = "log_login"
	// EntityDeletionRequest identifies a deferred part deletion request.
	EntityDeletionRequest EntityType = "part_deletion_request"
)

// SampleType enumerates the supported biological sample kinds.
type SampleType string

// Canonical sample types accepted by the part registry.
const (
	SampleBacterium SampleType = "bacterium"
	SamplePrimer    SampleType = "primer"
	SampleYeast     SampleType = "yeast"
)

// ContainerType enumerates single-sample vessel kinds.
type ContainerType string

// Canonical container types.
const (
	ContainerTube ContainerType = "tube"
	ContainerWell ContainerType = "well"
)

// GroupType enumerates multi-container holder kinds.
type GroupType string

// Canonical container group types.
const (
	GroupPlate GroupType = "plate"
	GroupRack  GroupType = "rack"
)

// ContainerStatus tracks the physical handling state of a container or group.
type ContainerStatus string

// Container submission lifecycle: pending on assignment, verified on physical
// scan confirmation, deleting while a withdrawal is in flight.
const (
	StatusPending  ContainerStatus = "pending"
	StatusVerified ContainerStatus = "verified"
	StatusDeleting ContainerStatus = "deleting"
)

// LogLevel encodes the severity of an audited operation.
type LogLevel int

// Operation levels, ordered by privilege impact.
const (
	// LevelDebug marks read-only debugging information.
	LevelDebug LogLevel = 0
	// LevelRead marks listing or getting data.
	LevelRead LogLevel = 1
	// LevelExport marks exports and rack or container moves.
	LevelExport LogLevel = 2
	// LevelCreate marks additions of new records.
	LevelCreate LogLevel = 3
	// LevelModify marks updates and deletions.
	LevelModify LogLevel = 4
	// LevelAdmin marks privilege changes and other administrative operations.
	LevelAdmin LogLevel = 5
)

// GroupAdministrators is the directory group granting administrative rights.
const GroupAdministrators = "administrators"

// Actor is the pre-authenticated identity performing an operation. Identity
// resolution happens upstream; the core only consumes it.
type Actor struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

// IsAdmin reports whether the actor belongs to the administrators group.
func (a Actor) IsAdmin() bool {
	for _, g := range a.Groups {
		if g == GroupAdministrators {
			return true
		}
	}
	return false
}

// Base contains common fields for all independently stored domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment holds file metadata stored inline on a part; the bytes live in
// the blob store under FileID.
type Attachment struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	FileID      string `json:"file_id"`
}

// Container is a physical vessel (tube or well) holding exactly one part.
// Containers are embedded in their owning part rather than stored
// independently, so the single-owner invariant is structural.
type Container struct {
	CType           ContainerType   `json:"ctype"`
	Barcode         string          `json:"barcode"`
	CurrentStatus   ContainerStatus `json:"current_status"`
	OperatorID      string          `json:"operator_id,omitempty"`
	ParentGroupID   string          `json:"parent_group_id,omitempty"`
	WellID          int             `json:"well_id,omitempty"`
	WellName        string          `json:"well_name,omitempty"`
	LocationID      string          `json:"location_id,omitempty"`
	AssignedAt      time.Time       `json:"assigned_at"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	LocationHistory LocationTrail   `json:"location_history"`
}

// Part is a registered biological sample. LabName and PersonalName are the two
// parallel human-readable identity schemes; both derive from monotonically
// increasing counters and are immutable after creation.
type Part struct {
	Base
	LabName         string       `json:"lab_name"`
	LabPrefix       string       `json:"lab_prefix"`
	LabID           int64        `json:"lab_id"`
	PersonalName    string       `json:"personal_name"`
	PersonalPrefix  string       `json:"personal_prefix"`
	PersonalID      int64        `json:"personal_id"`
	OwnerID         string       `json:"owner_id"`
	OwnerName       string       `json:"owner_name"`
	SampleType      SampleType   `json:"sample_type"`
	Comment         string       `json:"comment,omitempty"`
	SampleDate      *time.Time   `json:"sample_date,omitempty"`
	Tags            []string     `json:"tags"`
	Content         Content      `json:"content"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Containers      []Container  `json:"containers"`
	HistoryID       string       `json:"history_id,omitempty"`
}

// FindContainer returns the embedded container carrying the barcode.
func (p Part) FindContainer(barcode string) (Container, bool) {
	for _, c := range p.Containers {
		if c.Barcode == barcode {
			return c, true
		}
	}
	return Container{}, false
}

// ContainerGroup is a physical holder (plate or rack) for containers. It
// carries spatial metadata only, never sample content.
type ContainerGroup struct {
	Base
	CType           GroupType       `json:"ctype"`
	Barcode         string          `json:"barcode"`
	CurrentStatus   ContainerStatus `json:"current_status"`
	LocationID      string          `json:"location_id,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	LocationHistory LocationTrail   `json:"location_history"`
}

// Location is a storage position identified by barcode.
type Location struct {
	Base
	Barcode     string `json:"barcode"`
	Description string `json:"description,omitempty"`
}

// PickList is a user's named working collection of part references. At most
// one list per owner carries the default flag. PartsCount caches len(Parts).
type PickList struct {
	Base
	Name       string   `json:"name"`
	OwnerID    string   `json:"owner_id"`
	Parts      []string `json:"parts"`
	PartsCount int      `json:"parts_count"`
	Default    bool     `json:"default"`
}

// Contains reports whether the pick list references the part.
func (l PickList) Contains(partID string) bool {
	for _, id := range l.Parts {
		if id == partID {
			return true
		}
	}
	return false
}

// LogOperation is an append-only audit trail entry. Entries are never updated
// or deleted once written.
type LogOperation struct {
	ID           string         `json:"id"`
	OperatorID   string         `json:"operator_id"`
	OperatorName string         `json:"operator_name"`
	Type         string         `json:"type"`
	Level        LogLevel       `json:"level"`
	SourceIP     string         `json:"source_ip,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Comment      string         `json:"comment,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// LogLogin records an authentication event.
type LogLogin struct {
	ID           string    `json:"id"`
	OperatorID   string    `json:"operator_id"`
	OperatorName string    `json:"operator_name"`
	Type         string    `json:"type"`
	SourceIP     string    `json:"source_ip,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// PartDeletionRequest records a deletion deferred to administrator review.
// RequestedAt grows by one entry per repeated request; the request itself
// never deletes the part.
type PartDeletionRequest struct {
	Base
	SenderID       string      `json:"sender_id"`
	SenderName     string      `json:"sender_name"`
	PartID         string      `json:"part_id"`
	RequestedCount int         `json:"requested_count"`
	RequestedAt    []time.Time `json:"requested_at"`
}

// PartHistory keeps prior version snapshots of a part, newest last.
type PartHistory struct {
	PartID    string `json:"part_id"`
	Snapshots []Part `json:"snapshots"`
}
