package grade

import (
	"bytes"
	"encoding/json"
	
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// DateLayout is the format of Grade.Date.
const DateLayout = "2006-01-02"

var (
	nullLiteral = []byte("null")

	errInvalidValue = errors.New("grade: value is not valid JSON")
)

// Value is a field as submitted: any JSON value, or absent.
// An absent Value is written back as JSON null.
type Value struct {
	null.JSON
}

// ValueFrom returns a Value holding the JSON encoding of v.
func ValueFrom(v interface{}) (Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	var val Value
	if err := val.UnmarshalJSON(b); err != nil {
		return Value{}, err
	}
	return val, nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || len(v.JSON.JSON) == 0 {
		return nullLiteral, nil
	}
	return v.JSON.JSON, nil
}

// UnmarshalJSON keeps the value compacted; JSON null is absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullLiteral) {
		v.JSON = null.JSON{}
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return errInvalidValue
	}
	v.JSON = null.JSON{JSON: buf.Bytes(), Valid: true}
	return nil
}

// Number reports the numeric value of a grade: JSON numbers, and booleans as 1 or 0.
// Strings, objects, arrays and absent values are not numeric.
func (v Value) Number() (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	dec := json.NewDecoder(bytes.NewReader(v.JSON.JSON))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return 0, false
	}
	switch x := x.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// String renders the value for display: JSON strings unquoted, other values as JSON, absent as "".
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	var str string
	if err := json.Unmarshal(v.JSON.JSON, &str); err == nil {
		return str
	}
	return string(v.JSON.JSON)
}

// key identifies equal values: 5 and 5.0 match, as do objects with reordered members.
// Absent values share the key "null".
func (v Value) key() string {
	if !v.Valid {
		return string(nullLiteral)
	}
	var x interface{}
	if err := json.Unmarshal(v.JSON.JSON, &x); err != nil {
		return string(v.JSON.JSON)
	}
	b, err := json.Marshal(x)
	if err != nil {
		return string(v.JSON.JSON)
	}
	return string(b)
}

// Grade is a single student/subject/grade/date entry.
type Grade struct {
	ID          int         `json:"id"`
	StudentName Value  `json:"student_name"`
	Subject     Value  `json:"subject"`
	Score       Value  `json:"grade"`
	Date        string `json:"date"`
}

// Collection is the full ordered set of grades, persisted as one document.
type Collection struct {
	Grades []Grade `json:"students"`
}

// NewCollection returns an empty collection that encodes as `{"students": []}`.
func NewCollection(grades ...Grade) Collection {
	if grades == nil {
		grades = []Grade{}
	}
	return Collection{Grades: grades}
}

func (c *Collection) Len() int { return len(c.Grades) }

func (c *Collection) IsEmpty() bool { return len(c.Grades) == 0 }

// NextID returns the id of the next appended grade: the record count plus one.
func (c *Collection) NextID() int { return len(c.Grades) + 1 }

func (c *Collection) Append(g Grade) {
	c.Grades = append(c.Grades, g)
}

// NewGrade contains the information submitted to record a grade.
// Every field is optional; absent fields are stored as null.
type NewGrade struct {
	StudentName Value `json:"student_name"`
	Subject     Value `json:"subject"`
	Score       Value `json:"grade"`
}

// Statistics is the aggregate derived from a non-empty collection.
type Statistics struct {
	TotalStudents int     `json:"total_students"`
	TotalGrades   int     `json:"total_grades"`
	AverageGrade  float64 `json:"average_grade"`
	Subjects      []Value `json:"subjects"`
}
