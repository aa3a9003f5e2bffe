package grade

import (
	"context"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNoData = errors.New("no data")
)

type (
	// Repository persists the whole Collection as a single unit.
	Repository interface {
		// Exists reports whether the collection has ever been saved.
		Exists(ctx context.Context) (bool, error)
		// Load returns the stored collection, or an empty one if nothing was saved yet.
		Load(ctx context.Context) (Collection, error)
		// Save overwrites the stored collection.
		Save(ctx context.Context, coll Collection) error
		// Update loads the collection, applies fn and saves the result.
		// Concurrent Updates are serialized: no update is lost.
		Update(ctx context.Context, fn func(coll *Collection) error) error
	}

	ServiceInterface interface {
		List(ctx context.Context) (Collection, error)
		Append(ctx context.Context, ng NewGrade) (Grade, error)
		Stats(ctx context.Context) (Statistics, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SeedGrades are written to a store that does not exist yet.
func SeedGrades() []Grade {
	return []Grade{
		{ID: 1, StudentName: mustValue("Иванов Иван"), Subject: mustValue("Математика"), Score: mustValue(5), Date: "2024-01-15"},
		{ID: 2, StudentName: mustValue("Петрова Анна"), Subject: mustValue("Программирование"), Score: mustValue(4), Date: "2024-01-16"},
		{ID: 3, StudentName: mustValue("Сидоров Алексей"), Subject: mustValue("Базы данных"), Score: mustValue(3), Date: "2024-01-17"},
	}
}

func mustValue(v interface{}) Value {
	s, err := ValueFrom(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Today returns the current local date formatted with DateLayout.
func Today() string {
	return now.New(NowFunc()).BeginningOfDay().Format(DateLayout)
}

// EnsureSeeded saves the seed grades if the store does not exist yet.
// It reports whether the store was seeded.
func (svc *Service) EnsureSeeded(ctx context.Context) (bool, error) {
	exists, err := svc.repo.Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, "checking store")
	}
	if exists {
		return false, nil
	}
	if err = svc.repo.Save(ctx, NewCollection(SeedGrades()...)); err != nil {
		return false, errors.Wrap(err, "saving seed grades")
	}
	return true, nil
}

func (svc *Service) List(ctx context.Context) (Collection, error) {
	coll, err := svc.repo.Load(ctx)
	if err != nil {
		return Collection{}, errors.Wrap(err, "loading grades")
	}
	return coll, nil
}

func (svc *Service) Append(ctx context.Context, ng NewGrade) (Grade, error) {
	var g Grade
	err := svc.repo.Update(ctx, func(coll *Collection) error {
		g = Grade{
			ID:          coll.NextID(),
			StudentName: ng.StudentName,
			Subject:     ng.Subject,
			Score:       ng.Score,
			Date:        Today(),
		}
		coll.Append(g)
		return nil
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "appending grade")
	}
	return g, nil
}

// Stats computes the collection's Statistics. It returns ErrNoData if the collection is empty.
func (svc *Service) Stats(ctx context.Context) (Statistics, error) {
	coll, err := svc.repo.Load(ctx)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "loading grades")
	}
	return ComputeStats(coll)
}
