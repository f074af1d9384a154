// Package duty composes the transactional executor with the duty repository
// operations. Every method runs in its own transaction and returns a
// types.Result; none of them returns a Go error.
package duty

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dutyservice/internal/db"
	"dutyservice/internal/types"
)

// Executor runs an operation inside a transaction. *db.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, name string, op db.Operation) types.Result
}

// Service exposes the duty operations used by the HTTP handlers and the CLI.
type Service struct {
	exec   Executor
	logger zerolog.Logger
}

// NewService creates a Service on top of exec.
func NewService(exec Executor, logger zerolog.Logger) *Service {
	return &Service{exec: exec, logger: logger}
}

// List returns every duty.
func (s *Service) List(ctx context.Context) types.Result {
	return s.exec.Execute(ctx, "list_duties", db.ListOp(s.logger))
}

// Get returns the duty with the given id. A missing duty is a NotFoundError.
func (s *Service) Get(ctx context.Context, id string) types.Result {
	res := s.exec.Execute(ctx, "get_duty", db.FetchByIDOp(s.logger, id))
	return requireRow(res, id)
}

// Create inserts a duty and returns it.
func (s *Service) Create(ctx context.Context, name string) types.Result {
	return s.exec.Execute(ctx, "create_duty", db.CreateOp(s.logger, name))
}

// Update renames a duty. A missing duty is a NotFoundError.
func (s *Service) Update(ctx context.Context, d types.Duty) types.Result {
	res := s.exec.Execute(ctx, "update_duty", db.UpdateOp(s.logger, d))
	return requireRow(res, d.ID)
}

// UpdateMany renames every listed duty. Ids that do not exist are skipped.
func (s *Service) UpdateMany(ctx context.Context, duties []types.Duty) types.Result {
	return s.exec.Execute(ctx, "update_duties", db.UpdateManyOp(s.logger, duties))
}

// Upsert inserts provisional duties, updates the rest and returns the full
// list, all in one transaction.
func (s *Service) Upsert(ctx context.Context, duties []types.Duty) types.Result {
	return s.exec.Execute(ctx, "upsert_duties", db.UpsertManyOp(s.logger, duties))
}

// requireRow turns an empty success into a NotFoundError.
func requireRow(res types.Result, id string) types.Result {
	if res.OK() && len(res.Data) == 0 {
		return types.Failure(types.NotFoundError, fmt.Sprintf("duty %q not found", id))
	}
	return res
}
