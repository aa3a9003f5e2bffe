package inmemdb

import (
	"context"

	"github.com/trezcool/gradebook/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

// query returns a copy of the table so callers never alias stored rows.
func (repo *gradeRepository) query() grade.Collection {
	grades := make([]grade.Grade, len(repo.db.table))
	copy(grades, repo.db.table)
	return grade.NewCollection(grades...)
}

func (repo *gradeRepository) store(coll grade.Collection) {
	grades := make([]grade.Grade, len(coll.Grades))
	copy(grades, coll.Grades)
	repo.db.table = grades
	repo.db.saved = true
}

func (repo *gradeRepository) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.saved, nil
}

func (repo *gradeRepository) Load(ctx context.Context) (grade.Collection, error) {
	if err := ctx.Err(); err != nil {
		return grade.Collection{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *gradeRepository) Save(ctx context.Context, coll grade.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.store(coll)
	return nil
}

func (repo *gradeRepository) Update(ctx context.Context, fn func(coll *grade.Collection) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	coll := repo.query()
	if err := fn(&coll); err != nil {
		return err
	}
	repo.store(coll)
	return nil
}
