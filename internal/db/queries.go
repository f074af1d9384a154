package db

import (
	"strconv"
	"strings"

	"dutyservice/internal/types"
)

const dutyTable = "duty"

// dutyColumns is the full column set of the duty table. Every statement
// selects or returns exactly these columns in this order.
const dutyColumns = "id, name"

// Statement is a parameterized SQL statement. Values are never interpolated
// into SQL; each one is bound to a $n placeholder in Args.
//
// The zero Statement is the empty sentinel returned by the bulk builders for
// an empty input. Callers must check IsEmpty before executing.
type Statement struct {
	SQL  string
	Args []any
}

// IsEmpty reports whether s is the empty sentinel.
func (s Statement) IsEmpty() bool {
	return s.SQL == ""
}

// BuildSelect selects every row when id is empty, otherwise the row whose
// id equals it.
func BuildSelect(id string) Statement {
	if id == "" {
		return Statement{SQL: "SELECT " + dutyColumns + " FROM " + dutyTable}
	}
	return BuildSelectByID(id)
}

// BuildSelectByID always filters on id, so an empty id matches no row.
func BuildSelectByID(id string) Statement {
	return Statement{
		SQL:  "SELECT " + dutyColumns + " FROM " + dutyTable + " WHERE id = $1",
		Args: []any{id},
	}
}

// BuildInsertOne inserts a single duty and returns the stored row.
func BuildInsertOne(name string) Statement {
	return Statement{
		SQL:  "INSERT INTO " + dutyTable + " (name) VALUES ($1) RETURNING " + dutyColumns,
		Args: []any{name},
	}
}

// BuildInsertMany inserts one row per duty, in input order. Ids on the input
// are ignored; the store mints new ones.
func BuildInsertMany(duties []types.Duty) Statement {
	if len(duties) == 0 {
		return Statement{}
	}

	var b strings.Builder
	b.WriteString("INSERT INTO " + dutyTable + " (name) VALUES ")
	args := make([]any, 0, len(duties))
	for i, d := range duties {
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, d.Name)
		b.WriteString("(" + placeholder(len(args)) + ")")
	}
	b.WriteString(" RETURNING " + dutyColumns)

	return Statement{SQL: b.String(), Args: args}
}

// BuildUpdateMany sets the name of every duty matched by id from a VALUES
// list. Each matched row is updated once and all updated rows are returned.
func BuildUpdateMany(duties []types.Duty) Statement {
	if len(duties) == 0 {
		return Statement{}
	}

	var b strings.Builder
	b.WriteString("UPDATE " + dutyTable + " AS d SET name = c.name FROM (VALUES ")
	args := make([]any, 0, 2*len(duties))
	for i, d := range duties {
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, d.ID, d.Name)
		b.WriteString("(" + placeholder(len(args)-1) + "::text, " + placeholder(len(args)) + "::text)")
	}
	b.WriteString(") AS c(id, name) WHERE d.id::text = c.id RETURNING d.id, d.name")

	return Statement{SQL: b.String(), Args: args}
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
