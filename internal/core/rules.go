package core

import "limscore/pkg/domain"

// NewDefaultRulesEngine returns an engine with the standing invariants every
// commit is checked against. The typed errors raised by service operations
// are the primary guard; these rules are the commit-time safety net that
// catches violations introduced by any write path.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(BarcodeUniqueRule{})
	engine.Register(LocationHistoryRule{})
	engine.Register(DefaultPickListRule{})
	engine.Register(PickListCountRule{})
	return engine
}
