package duty

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dutyservice/internal/db"
	"dutyservice/internal/types"
)

// fakeExecutor records operation names and runs each operation against a
// canned query function in place of a transaction.
type fakeExecutor struct {
	names []string
	rows  []types.Duty
	err   error
	sqls  []string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, op db.Operation) types.Result {
	f.names = append(f.names, name)
	rows, err := op(ctx, &recordingDB{exec: f})
	if err != nil {
		return types.Failure(types.DatabaseError, err.Error())
	}
	return types.Success(rows)
}

type recordingDB struct {
	exec *fakeExecutor
}

func (r *recordingDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

// Query filters the canned rows on id for lookups by id, like the store.
func (r *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	r.exec.sqls = append(r.exec.sqls, sql)
	if r.exec.err != nil {
		return nil, r.exec.err
	}
	rows := r.exec.rows
	if strings.HasSuffix(sql, "WHERE id = $1") {
		rows = nil
		for _, d := range r.exec.rows {
			if d.ID == args[0] {
				rows = append(rows, d)
			}
		}
	}
	return &sliceRows{rows: rows, idx: -1}, nil
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

type sliceRows struct {
	rows []types.Duty
	idx  int
}

func (s *sliceRows) Next() bool {
	s.idx++
	return s.idx < len(s.rows)
}

func (s *sliceRows) Scan(dest ...any) error {
	*dest[0].(*string) = s.rows[s.idx].ID
	*dest[1].(*string) = s.rows[s.idx].Name
	return nil
}

func (s *sliceRows) Close()                                       {}
func (s *sliceRows) Err() error                                   { return nil }
func (s *sliceRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (s *sliceRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (s *sliceRows) RawValues() [][]byte                          { return nil }
func (s *sliceRows) Values() ([]any, error)                       { return nil, nil }
func (s *sliceRows) Conn() *pgx.Conn                              { return nil }

func newTestService(rows ...types.Duty) (*Service, *fakeExecutor) {
	exec := &fakeExecutor{rows: rows}
	return NewService(exec, zerolog.Nop()), exec
}

func TestService_List(t *testing.T) {
	svc, exec := newTestService(types.Duty{ID: "A", Name: "A1"}, types.Duty{ID: "B", Name: "B1"})

	res := svc.List(context.Background())
	require.True(t, res.OK())
	assert.Len(t, res.Data, 2)
	assert.Equal(t, []string{"list_duties"}, exec.names)
}

func TestService_Get(t *testing.T) {
	svc, _ := newTestService(types.Duty{ID: "A", Name: "A1"})

	res := svc.Get(context.Background(), "A")
	d, ok := res.First()
	require.True(t, ok)
	assert.Equal(t, "A1", d.Name)
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _ := newTestService()

	res := svc.Get(context.Background(), "missing")
	require.False(t, res.OK())
	assert.Equal(t, types.NotFoundError, res.Err.Name)
	assert.Contains(t, res.Err.Description, "missing")
}

func TestService_Get_EmptyIDIsNotFound(t *testing.T) {
	svc, exec := newTestService(types.Duty{ID: "A", Name: "A1"}, types.Duty{ID: "B", Name: "B1"})

	res := svc.Get(context.Background(), "")
	require.False(t, res.OK())
	assert.Equal(t, types.NotFoundError, res.Err.Name)
	assert.Equal(t, []string{"SELECT id, name FROM duty WHERE id = $1"}, exec.sqls)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newTestService()

	res := svc.Update(context.Background(), types.Duty{ID: "missing", Name: "x"})
	require.False(t, res.OK())
	assert.Equal(t, types.NotFoundError, res.Err.Name)
}

func TestService_DatabaseErrorPassesThrough(t *testing.T) {
	svc, exec := newTestService()
	exec.err = assert.AnError

	res := svc.Get(context.Background(), "A")
	require.False(t, res.OK())
	assert.Equal(t, types.DatabaseError, res.Err.Name, "a failed read is not a not-found")
}

func TestService_Create(t *testing.T) {
	svc, exec := newTestService(types.Duty{ID: "u1", Name: "Laundry"})

	res := svc.Create(context.Background(), "Laundry")
	require.True(t, res.OK())
	assert.Equal(t, []string{"create_duty"}, exec.names)
	assert.Equal(t, []string{"INSERT INTO duty (name) VALUES ($1) RETURNING id, name"}, exec.sqls)
}

func TestService_UpdateMany_Empty(t *testing.T) {
	svc, exec := newTestService()

	res := svc.UpdateMany(context.Background(), nil)
	require.True(t, res.OK())
	assert.Empty(t, res.Data)
	assert.Empty(t, exec.sqls)
}

func TestService_Upsert_OneTransaction(t *testing.T) {
	svc, exec := newTestService(types.Duty{ID: "A", Name: "A2"})

	res := svc.Upsert(context.Background(), []types.Duty{
		{ID: "A", Name: "A2"},
		{ID: "temp-1", Name: "C"},
	})
	require.True(t, res.OK())
	assert.Equal(t, []string{"upsert_duties"}, exec.names, "all three statements share one Execute")
	assert.Len(t, exec.sqls, 3)
}
