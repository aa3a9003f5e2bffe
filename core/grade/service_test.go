package grade_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/grade"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
)

func setup(t *testing.T) (*grade.Service, grade.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewGradeRepository(db)
	return grade.NewService(repo), repo
}

func value(t *testing.T, v interface{}) grade.Value {
	val, err := grade.ValueFrom(v)
	require.NoError(t, err)
	return val
}

func values(t *testing.T, vs ...interface{}) []grade.Value {
	vals := make([]grade.Value, 0, len(vs))
	for _, v := range vs {
		vals = append(vals, value(t, v))
	}
	return vals
}

// newGrade builds the submitted fields; a nil field is absent.
func newGrade(t *testing.T, name, subject, score interface{}) grade.NewGrade {
	return grade.NewGrade{StudentName: value(t, name), Subject: value(t, subject), Score: value(t, score)}
}

func seed(t *testing.T, svc *grade.Service, grades ...grade.NewGrade) {
	for _, ng := range grades {
		_, err := svc.Append(context.Background(), ng)
		require.NoError(t, err)
	}
}

func TestService_EnsureSeeded(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	seeded, err := svc.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	coll, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, coll.Grades, 3)
	for i, want := range []float64{5, 4, 3} {
		got, ok := coll.Grades[i].Score.Number()
		assert.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, i+1, coll.Grades[i].ID)
	}

	// an existing store is never re-seeded
	seeded, err = svc.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestService_EnsureSeeded_existingEmptyStore(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	require.NoError(t, repo.Save(ctx, grade.NewCollection()))

	seeded, err := svc.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	coll, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, coll.Grades)
}

func TestService_Append(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	grade.NowFunc = func() time.Time { return time.Date(2026, time.March, 7, 23, 59, 0, 0, time.Local) }
	defer func() { grade.NowFunc = time.Now }()

	g, err := svc.Append(ctx, newGrade(t, "X", "Y", 5))
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)
	assert.Equal(t, "2026-03-07", g.Date)
	assert.Equal(t, value(t, "X"), g.StudentName)
	assert.Equal(t, value(t, "Y"), g.Subject)

	coll, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []grade.Grade{g}, coll.Grades)
}

func TestService_Append_sequentialIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	const n = 10
	for i := 1; i <= n; i++ {
		g, err := svc.Append(ctx, newGrade(t, "Ivan", "Math", i%5+1))
		require.NoError(t, err)
		assert.Equal(t, i, g.ID)
	}

	coll, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, coll.Grades, n)
	for i, g := range coll.Grades {
		assert.Equal(t, i+1, g.ID)
	}
}

func TestService_Append_absentFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	g, err := svc.Append(ctx, grade.NewGrade{})
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)
	assert.False(t, g.StudentName.Valid)
	assert.False(t, g.Subject.Valid)
	assert.False(t, g.Score.Valid)
	assert.Equal(t, grade.Today(), g.Date)
}

func TestService_Stats(t *testing.T) {
	tests := []struct {
		name    string
		grades  []grade.NewGrade
		want    grade.Statistics
		wantErr error
	}{
		{name: "empty collection", wantErr: grade.ErrNoData},
		{
			name: "average of 5, 4, 3",
			grades: []grade.NewGrade{
				newGrade(t, "Иванов Иван", "Математика", 5),
				newGrade(t, "Петрова Анна", "Программирование", 4),
				newGrade(t, "Сидоров Алексей", "Базы данных", 3),
			},
			want: grade.Statistics{
				TotalStudents: 3,
				TotalGrades:   3,
				AverageGrade:  4.0,
				Subjects:      values(t, "Математика", "Программирование", "Базы данных"),
			},
		},
		{
			name: "no numeric grade",
			grades: []grade.NewGrade{
				newGrade(t, "Ivan", "Math", "A"),
				newGrade(t, "Anna", "Math", map[string]interface{}{"value": 5}),
			},
			want: grade.Statistics{TotalStudents: 2, TotalGrades: 2, AverageGrade: 0, Subjects: values(t, "Math")},
		},
		{
			name: "booleans count as 1 and 0",
			grades: []grade.NewGrade{
				newGrade(t, "Ivan", "Math", 5),
				newGrade(t, "Anna", "Math", true),
				newGrade(t, "Anna", "Math", false),
				newGrade(t, "Anna", "Math", "5"),
			},
			want: grade.Statistics{TotalStudents: 2, TotalGrades: 4, AverageGrade: 2, Subjects: values(t, "Math")},
		},
		{
			name: "halves round to even",
			grades: []grade.NewGrade{
				newGrade(t, "Ivan", "Math", 5), newGrade(t, "Ivan", "Math", 5),
				newGrade(t, "Ivan", "Math", 5), newGrade(t, "Ivan", "Math", 5),
				newGrade(t, "Ivan", "Math", 5), newGrade(t, "Ivan", "Math", 5),
				newGrade(t, "Ivan", "Math", 5), newGrade(t, "Ivan", "Math", 2),
			},
			want: grade.Statistics{TotalStudents: 1, TotalGrades: 8, AverageGrade: 4.62, Subjects: values(t, "Math")},
		},
		{
			name: "non-text names & subjects are compared by value",
			grades: []grade.NewGrade{
				newGrade(t, 42, []string{"Math"}, 5),
				newGrade(t, 42.0, []string{"Math"}, 4),
				newGrade(t, "42", map[string]interface{}{"a": 1, "b": 2}, 3),
				newGrade(t, nil, json.RawMessage(`{"b": 2, "a": 1}`), 2),
			},
			want: grade.Statistics{
				TotalStudents: 3,
				TotalGrades:   4,
				AverageGrade:  3.5,
				Subjects:      values(t, []string{"Math"}, map[string]interface{}{"a": 1, "b": 2}),
			},
		},
		{
			name: "same name counted once, case & whitespace differ",
			grades: []grade.NewGrade{
				newGrade(t, "Ivan", "Math", 5),
				newGrade(t, "Ivan", "Math", 4),
				newGrade(t, "ivan", "CS", 4),
				newGrade(t, "Ivan ", "Math", 2),
			},
			want: grade.Statistics{
				TotalStudents: 3,
				TotalGrades:   4,
				AverageGrade:  3.75,
				Subjects:      values(t, "Math", "CS"),
			},
		},
		{
			name: "rounded to 2 decimals, non-numeric excluded from average only",
			grades: []grade.NewGrade{
				newGrade(t, "Ivan", "Math", 5),
				newGrade(t, "Ivan", "Math", 4),
				newGrade(t, "Ivan", "Math", 4),
				newGrade(t, "Anna", "CS", "absent"),
			},
			want: grade.Statistics{
				TotalStudents: 2,
				TotalGrades:   4,
				AverageGrade:  4.33,
				Subjects:      values(t, "Math", "CS"),
			},
		},
		{
			name:   "absent values",
			grades: []grade.NewGrade{{}, newGrade(t, nil, nil, nil), newGrade(t, "Anna", "CS", 4.5)},
			want: grade.Statistics{
				TotalStudents: 2,
				TotalGrades:   3,
				AverageGrade:  4.5,
				Subjects:      []grade.Value{{}, value(t, "CS")},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setup(t)
			seed(t, svc, tt.grades...)

			got, err := svc.Stats(context.Background())
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Stats_subjectsAreASet(t *testing.T) {
	svc, _ := setup(t)
	seed(t, svc,
		newGrade(t, "A", "Math", 5),
		newGrade(t, "B", "Math", 4),
		newGrade(t, "C", "CS", 3),
	)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, values(t, "Math", "CS"), got.Subjects)
}
