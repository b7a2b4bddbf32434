package core

import "limscore/pkg/domain"

type (
	EntityType          = domain.EntityType
	SampleType          = domain.SampleType
	ContainerType       = domain.ContainerType
	GroupType           = domain.GroupType
	ContainerStatus     = domain.ContainerStatus
	LogLevel            = domain.LogLevel
	Actor               = domain.Actor
	Base                = domain.Base
	Part                = domain.Part
	Content             = domain.Content
	Container           = domain.Container
	ContainerGroup      = domain.ContainerGroup
	Location            = domain.Location
	LocationEvent       = domain.LocationEvent
	PickList            = domain.PickList
	Attachment          = domain.Attachment
	LogOperation        = domain.LogOperation
	LogLogin            = domain.LogLogin
	PartDeletionRequest = domain.PartDeletionRequest
	PartHistory         = domain.PartHistory
	Change              = domain.Change
	Action              = domain.Action
	Violation           = domain.Violation
	Result              = domain.Result
	Rule                = domain.Rule
	RulesEngine         = domain.RulesEngine
	RuleViolationError  = domain.RuleViolationError
)

const (
	EntityPart            = domain.EntityPart
	EntityContainer       = domain.EntityContainer
	EntityContainerGroup  = domain.EntityContainerGroup
	EntityLocation        = domain.EntityLocation
	EntityPickList        = domain.EntityPickList
	EntityLogOperation    = domain.EntityLogOperation
	EntityLogLogin        = domain.EntityLogLogin
	EntityDeletionRequest = domain.EntityDeletionRequest
)

const (
	SampleBacterium = domain.SampleBacterium
	SamplePrimer    = domain.SamplePrimer
	SampleYeast     = domain.SampleYeast
)

const (
	ContainerTube = domain.ContainerTube
	ContainerWell = domain.ContainerWell
	GroupPlate    = domain.GroupPlate
	GroupRack     = domain.GroupRack
)

const (
	StatusPending  = domain.StatusPending
	StatusVerified = domain.StatusVerified
	StatusDeleting = domain.StatusDeleting
)

const (
	LevelDebug  = domain.LevelDebug
	LevelRead   = domain.LevelRead
	LevelExport = domain.LevelExport
	LevelCreate = domain.LevelCreate
	LevelModify = domain.LevelModify
	LevelAdmin  = domain.LevelAdmin
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)
