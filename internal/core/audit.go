package core

import (
	"context"
	"time"
)

// RecordLogin appends an authentication event to the login log.
func (s *Service) RecordLogin(ctx context.Context, actor Actor, eventType, sourceIP string) (entry LogLogin, err error) {
	defer func(start time.Time) { s.observe(ctx, "login.record", start, err) }(s.now())

	_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		appended, logErr := tx.AppendLoginLog(LogLogin{
			OperatorID:   actor.ID,
			OperatorName: actor.Name,
			Type:         eventType,
			SourceIP:     sourceIP,
		})
		if logErr != nil {
			return logErr
		}
		entry = appended
		return nil
	})
	if err != nil {
		return LogLogin{}, err
	}
	return entry, nil
}

// ListOperationLogs returns the audit trail in append order.
func (s *Service) ListOperationLogs() []LogOperation { return s.store.ListOperationLogs() }

// ListLoginLogs returns recorded authentication events in append order.
func (s *Service) ListLoginLogs() []LogLogin { return s.store.ListLoginLogs() }
