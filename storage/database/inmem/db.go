package inmemdb

import (
	"sync"

	"github.com/trezcool/gradebook/core/grade"
)

type (
	DB struct {
		grade *gradeTable
	}

	gradeTable struct {
		sync.RWMutex
		table []grade.Grade
		saved bool
	}
)

func Open() (*DB, error) {
	db := &DB{
		grade: &gradeTable{},
	}
	return db, nil
}
