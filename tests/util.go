package testutil

import (
	"context"
	"testing"
	"time"


	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
)

// NewConfig returns a valid TEST configuration.
func NewConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Gradebook",
		Build:    "test",
		Server: core.ServerConfig{
			Host:               "localhost",
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			DisableRequestLogs: true,
		},
		Store: core.StoreConfig{Engine: core.StoreEngineJSON, Path: "grades.json"},
	}
}

// PrepareRepo returns an empty, never saved in-memory grade.Repository.
func PrepareRepo(t *testing.T) grade.Repository {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("PrepareRepo() failed: %v", err)
	}
	return inmemdb.NewGradeRepository(db)
}

func value(t *testing.T, v interface{}) grade.Value {
	val, err := grade.ValueFrom(v)
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return val
}

// text is absent for an empty s.
func text(t *testing.T, s string) grade.Value {
	if s == "" {
		return grade.Value{}
	}
	return value(t, s)
}

// CreateGrade appends a grade straight to the repository.
// Empty name or subject and a nil score are stored as absent.
func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	name, subject string,
	score interface{},
	date ...string,
) grade.Grade {
	g := grade.Grade{
		StudentName: text(t, name),
		Subject:     text(t, subject),
		Score:       value(t, score),
		Date:        grade.Today(),
	}
	if len(date) > 0 {
		g.Date = date[0]
	}

	err := repo.Update(context.Background(), func(coll *grade.Collection) error {
		g.ID = coll.NextID()
		coll.Append(g)
		return nil
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}
