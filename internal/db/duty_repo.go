package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"dutyservice/internal/types"
)

// DutyRepository provides data access for the duty table. Failures are
// logged and returned unchanged; tagging happens in the Executor.
type DutyRepository struct {
	db     DBTX
	logger zerolog.Logger
}

// NewDutyRepository creates a DutyRepository backed by the given database
// connection (pool or transaction).
func NewDutyRepository(db DBTX, logger zerolog.Logger) *DutyRepository {
	return &DutyRepository{db: db, logger: logger}
}

func scanDuty(row pgx.Row) (types.Duty, error) {
	var d types.Duty
	err := row.Scan(&d.ID, &d.Name)
	return d, err
}

// query runs stmt and collects every returned row.
func (r *DutyRepository) query(ctx context.Context, op string, stmt Statement) ([]types.Duty, error) {
	rows, err := r.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("query failed")
		return nil, err
	}
	defer rows.Close()

	duties := []types.Duty{}
	for rows.Next() {
		d, err := scanDuty(rows)
		if err != nil {
			r.logger.Error().Err(err).Str("op", op).Msg("scan failed")
			return nil, err
		}
		duties = append(duties, d)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("row iteration failed")
		return nil, err
	}

	r.logger.Debug().Str("op", op).Int("rows", len(duties)).Msg("query done")
	return duties, nil
}

// Create inserts one duty and returns the stored row.
func (r *DutyRepository) Create(ctx context.Context, name string) ([]types.Duty, error) {
	return r.query(ctx, "create", BuildInsertOne(name))
}

// List returns every duty.
func (r *DutyRepository) List(ctx context.Context) ([]types.Duty, error) {
	return r.query(ctx, "list", BuildSelect(""))
}

// FetchByID returns the duty with the given id, or no rows. An empty id
// matches nothing.
func (r *DutyRepository) FetchByID(ctx context.Context, id string) ([]types.Duty, error) {
	return r.query(ctx, "fetch_by_id", BuildSelectByID(id))
}

// Update renames the duty identified by d.ID. No rows are returned when the
// id does not exist.
func (r *DutyRepository) Update(ctx context.Context, d types.Duty) ([]types.Duty, error) {
	return r.query(ctx, "update", BuildUpdateMany([]types.Duty{d}))
}

// UpdateMany renames every listed duty in one statement. An empty input
// issues no statement.
func (r *DutyRepository) UpdateMany(ctx context.Context, duties []types.Duty) ([]types.Duty, error) {
	stmt := BuildUpdateMany(duties)
	if stmt.IsEmpty() {
		return []types.Duty{}, nil
	}
	return r.query(ctx, "update_many", stmt)
}

// UpsertMany reconciles a client-side list against the store. Provisional
// duties are inserted, the rest are updated by id, and the full list is
// returned. Both writes and the final read run on r.db, so inside a
// transaction the read observes the writes.
//
// At most three statements run: insert when there is something to insert,
// update when there is something to update, and the final list, which
// always runs. The first failure aborts the sequence.
func (r *DutyRepository) UpsertMany(ctx context.Context, duties []types.Duty) ([]types.Duty, error) {
	toInsert, toUpdate := PartitionDuties(duties)
	insertStmt := BuildInsertMany(toInsert)
	updateStmt := BuildUpdateMany(toUpdate)

	r.logger.Debug().
		Int("insert", len(toInsert)).
		Int("update", len(toUpdate)).
		Msg("upserting duties")

	if !insertStmt.IsEmpty() {
		if _, err := r.query(ctx, "upsert_insert", insertStmt); err != nil {
			return nil, err
		}
	}
	if !updateStmt.IsEmpty() {
		if _, err := r.query(ctx, "upsert_update", updateStmt); err != nil {
			return nil, err
		}
	}
	return r.List(ctx)
}

// PartitionDuties splits duties into provisional ones to insert and
// persisted ones to update. Input order is kept within each partition.
func PartitionDuties(duties []types.Duty) (toInsert, toUpdate []types.Duty) {
	for _, d := range duties {
		if d.IsProvisional() {
			toInsert = append(toInsert, d)
		} else {
			toUpdate = append(toUpdate, d)
		}
	}
	return toInsert, toUpdate
}

// The constructors below bind repository methods to the Operation shape so
// they can be handed to Executor.Execute. Each one builds its repository on
// the transaction the Executor passes in.

// ListOp lists every duty.
func ListOp(logger zerolog.Logger) Operation {
	return func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		return NewDutyRepository(q, logger).List(ctx)
	}
}

// FetchByIDOp fetches one duty by id.
func FetchByIDOp(logger zerolog.Logger, id string) Operation {
	return func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		return NewDutyRepository(q, logger).FetchByID(ctx, id)
	}
}

// CreateOp inserts one duty.
func CreateOp(logger zerolog.Logger, name string) Operation {
	return func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		return NewDutyRepository(q, logger).Create(ctx, name)
	}
}

// UpdateOp renames one duty.
func UpdateOp(logger zerolog.Logger, d types.Duty) Operation {
	return func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		return NewDutyRepository(q, logger).Update(ctx, d)
	}
}

// UpdateManyOp renames many duties.
func UpdateManyOp(logger zerolog.Logger, duties []types.Duty) Operation {
	return func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		return NewDutyRepository(q, logger).UpdateMany(ctx, duties)
	}
}

// UpsertManyOp reconciles duties and returns the full list.
func UpsertManyOp(logger zerolog.Logger, duties []types.Duty) Operation {
	return func(ctx context.Context, q DBTX) ([]types.Duty, error) {
		return NewDutyRepository(q, logger).UpsertMany(ctx, duties)
	}
}
