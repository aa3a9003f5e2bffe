package sqlxrepos

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core/grade"
)

const (
	// undefined_table
	codeUndefinedTable = "42P01"

	createTableQuery = `CREATE TABLE IF NOT EXISTS grades (
	position     integer PRIMARY KEY,
	id           integer NOT NULL,
	student_name jsonb,
	subject      jsonb,
	grade        jsonb,
	date         text NOT NULL
)`
	existsQuery = `SELECT to_regclass('grades') IS NOT NULL`
	selectQuery = `SELECT position, id, student_name, subject, grade, date FROM grades ORDER BY position`
	lockQuery   = `LOCK TABLE grades IN EXCLUSIVE MODE`
	deleteQuery = `DELETE FROM grades`
	insertQuery = `INSERT INTO grades (position, id, student_name, subject, grade, date) VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6)`
)

// gradeRow is a grade.Grade as stored in the grades table; position keeps the collection order.
// Submitted fields are jsonb, read and written as text.
type gradeRow struct {
	Position    int         `db:"position"`
	ID          int         `db:"id"`
	StudentName null.String `db:"student_name"`
	Subject     null.String `db:"subject"`
	Grade       null.String `db:"grade"`
	Date        string      `db:"date"`
}

func (row gradeRow) toGrade() (grade.Grade, error) {
	g := grade.Grade{ID: row.ID, Date: row.Date}
	for _, col := range []struct {
		name string
		src  null.String
		dst  *grade.Value
	}{
		{"student_name", row.StudentName, &g.StudentName},
		{"subject", row.Subject, &g.Subject},
		{"grade", row.Grade, &g.Score},
	} {
		if !col.src.Valid {
			continue
		}
		if err := col.dst.UnmarshalJSON([]byte(col.src.String)); err != nil {
			return grade.Grade{}, errors.Wrapf(err, "decoding %s at position %d", col.name, row.Position)
		}
	}
	return g, nil
}

// jsonb returns the column text of v; absent values are NULL.
func jsonb(v grade.Value) (null.String, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return null.String{}, err
	}
	return null.NewString(string(raw), v.Valid), nil
}

type gradeRepository struct {
	db *sqlx.DB
	mu sync.Mutex
}

var _ grade.Repository = (*gradeRepository)(nil)

// NewGradeRepository persists the collection as rows of the grades table.
// The table is created by the first Save or Update.
func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, existsQuery); err != nil {
		return false, errors.Wrap(err, "checking grades table")
	}
	return exists, nil
}

func (repo *gradeRepository) Load(ctx context.Context) (grade.Collection, error) {
	return load(ctx, repo.db)
}

func (repo *gradeRepository) Save(ctx context.Context, coll grade.Collection) error {
	return repo.Update(ctx, func(c *grade.Collection) error {
		*c = coll
		return nil
	})
}

func (repo *gradeRepository) Update(ctx context.Context, fn func(coll *grade.Collection) error) (err error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, createTableQuery); err != nil {
		return errors.Wrap(err, "creating grades table")
	}
	if _, err = tx.ExecContext(ctx, lockQuery); err != nil {
		return errors.Wrap(err, "locking grades table")
	}

	coll, err := load(ctx, tx)
	if err != nil {
		return err
	}
	if err = fn(&coll); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, deleteQuery); err != nil {
		return errors.Wrap(err, "clearing grades")
	}
	for i, g := range coll.Grades {
		var cols [3]null.String
		for j, v := range []grade.Value{g.StudentName, g.Subject, g.Score} {
			if cols[j], err = jsonb(v); err != nil {
				return errors.Wrapf(err, "encoding grade %d", g.ID)
			}
		}
		if _, err = tx.ExecContext(ctx, insertQuery, i, g.ID, cols[0], cols[1], cols[2], g.Date); err != nil {
			return errors.Wrapf(err, "inserting grade %d", g.ID)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing grades")
	}
	return nil
}

func load(ctx context.Context, q sqlx.QueryerContext) (grade.Collection, error) {
	var rows []gradeRow
	if err := sqlx.SelectContext(ctx, q, &rows, selectQuery); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == codeUndefinedTable {
			return grade.NewCollection(), nil
		}
		return grade.Collection{}, errors.Wrap(err, "selecting grades")
	}

	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		g, err := row.toGrade()
		if err != nil {
			return grade.Collection{}, err
		}
		grades = append(grades, g)
	}
	return grade.NewCollection(grades...), nil
}
