package grade

import (
	"strconv"
)

// ComputeStats derives the Statistics of a collection.
//   - students and subjects are distinct by JSON value (5 equals 5.0); an absent value counts once.
//   - every grade counts toward TotalGrades, only numeric ones toward AverageGrade.
func ComputeStats(coll Collection) (Statistics, error) {
	if coll.IsEmpty() {
		return Statistics{}, ErrNoData
	}

	students := make(map[string]struct{}, len(coll.Grades))
	seenSubjects := make(map[string]struct{})
	subjects := make([]Value, 0)

	var (
		sum   float64
		count int
	)
	for _, g := range coll.Grades {
		students[g.StudentName.key()] = struct{}{}

		subj := g.Subject.key()
		if _, ok := seenSubjects[subj]; !ok {
			seenSubjects[subj] = struct{}{}
			if g.Subject.Valid {
				subjects = append(subjects, g.Subject)
			} else {
				subjects = append(subjects, Value{})
			}
		}

		if n, ok := g.Score.Number(); ok {
			sum += n
			count++
		}
	}

	stats := Statistics{
		TotalStudents: len(students),
		TotalGrades:   len(coll.Grades),
		Subjects:      subjects,
	}
	if count > 0 {
		stats.AverageGrade = round(sum/float64(count), 2)
	}
	return stats, nil
}

// round rounds x to the given decimal places, halves to even: 4.625 gives 4.62.
func round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
