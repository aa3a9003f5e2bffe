// Package storage opens the grade.Repository selected by the configuration.
package storage

import (
	"io"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/storage/database"
	sqlxrepos "github.com/trezcool/gradebook/storage/database/sqlx"
	jsonstore "github.com/trezcool/gradebook/storage/jsonfile"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured grade.Repository and the io.Closer releasing its resources.
func Open(conf *core.Config) (grade.Repository, io.Closer, error) {
	switch conf.Store.Engine {
	case core.StoreEnginePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return sqlxrepos.NewGradeRepository(db), db, nil
	default:
		return jsonstore.NewStore(conf.Store.Path), nopCloser{}, nil
	}
}
