package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"moviefetch/internal/models"
)

const sqlNull = "NULL"

// SQLEncoder writes one INSERT statement per entity. Values are inlined as
// literals quoted for the configured dialect so the document runs as is.
type SQLEncoder struct {
	opts Options
}

// Format returns SQL.
func (s *SQLEncoder) Format() Format { return SQL }

// Encode implements Encoder.
func (s *SQLEncoder) Encode(entities []*models.Entity) (*Document, error) {
	views, err := s.opts.projectAll(SQL, entities)
	if err != nil {
		return nil, err
	}

	flavor := s.opts.SQLDialect.flavor()

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "-- %s export: %d row(s) into %s (%s dialect)\n", XMLGenerator, len(views), s.opts.SQLTable, s.opts.SQLDialect)

	if s.opts.SQLIncludeSchema {
		buf.WriteString(SQLSchema(s.opts.SQLTable, s.opts.SQLDialect))
		buf.WriteString(";\n")
	}

	for _, v := range views {
		values, err := s.literals(v)
		if err != nil {
			return nil, err
		}

		ib := flavor.NewInsertBuilder()
		ib.InsertInto(s.opts.SQLTable)
		ib.Cols(SQLColumns...)
		ib.Values(values...)

		query, _ := ib.Build()
		buf.WriteString(query)
		buf.WriteString(";\n")
	}

	return newDocument(SQL, entities, buf.Bytes()), nil
}

// literals renders the row values in SQLColumns order.
func (s *SQLEncoder) literals(v view) ([]any, error) {
	e := v.entity
	d := s.opts.SQLDialect

	date := sqlNull
	if t, ok := e.ReleaseDate.Get(); ok {
		date = d.Quote(t.Format(models.DateLayout))
	}

	rating := sqlNull
	if r, ok := e.Rating.Get(); ok {
		rating = formatRating(r)
	}

	overview := sqlNull
	if o, ok := e.Overview.Get(); ok {
		overview = d.Quote(o)
	}

	cast := make([]string, 0, len(v.cast))
	for _, m := range v.cast {
		if m.Role == "" {
			cast = append(cast, m.Name)
			continue
		}

		cast = append(cast, m.Name+" ("+m.Role+")")
	}

	extra, err := json.Marshal(v.extra())
	if err != nil {
		return nil, &EncodingError{Format: SQL, EntityID: e.ID, Field: "extra", Reason: err.Error()}
	}

	lits := []string{
		strconv.FormatInt(e.ID, 10),
		d.Quote(e.Kind.String()),
		d.Quote(e.Title),
		date,
		rating,
		d.Quote(strings.Join(v.genres, ", ")),
		overview,
		d.Quote(strings.Join(cast, ", ")),
		d.Quote(string(extra)),
	}

	values := make([]any, len(lits))
	for i, l := range lits {
		values[i] = sqlbuilder.Raw(l)
	}

	return values, nil
}

// SQLSchema returns the CREATE TABLE statement for table, without the
// trailing semicolon.
func SQLSchema(table string, d Dialect) string {
	ctb := d.flavor().NewCreateTableBuilder()
	ctb.CreateTable(table).IfNotExists()

	for i, col := range SQLColumns {
		ctb.Define(col, sqlColumnTypes[i])
	}

	query, _ := ctb.Build()

	return query
}

// Quote renders s as a string literal.
func (d Dialect) Quote(s string) string {
	if d == DialectMySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}

	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d Dialect) flavor() sqlbuilder.Flavor {
	if d == DialectMySQL {
		return sqlbuilder.MySQL
	}

	return sqlbuilder.SQLite
}
