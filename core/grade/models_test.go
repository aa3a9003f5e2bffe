package grade_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/grade"
)

func TestValue_Number(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantNum bool
	}{
		{name: "integer", raw: `5`, want: 5, wantNum: true},
		{name: "decimal", raw: `4.5`, want: 4.5, wantNum: true},
		{name: "negative exponent", raw: `-2e1`, want: -20, wantNum: true},
		{name: "numeric string", raw: `"5"`},
		{name: "text", raw: `"excellent"`},
		{name: "true", raw: `true`, want: 1, wantNum: true},
		{name: "false", raw: `false`, want: 0, wantNum: true},
		{name: "object", raw: `{"value": 5}`},
		{name: "array", raw: `[5]`},
		{name: "null", raw: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s grade.Value
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))

			got, ok := s.Number()
			assert.Equal(t, tt.wantNum, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `5`, want: "5"},
		{raw: `4.25`, want: "4.25"},
		{raw: `"A+"`, want: "A+"},
		{raw: `true`, want: "true"},
		{raw: `{"b": 1, "a": [1, 2]}`, want: `{"b":1,"a":[1,2]}`},
		{raw: `null`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s grade.Value
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestNewGrade_absentFields(t *testing.T) {
	var ng grade.NewGrade
	require.NoError(t, json.Unmarshal([]byte(`{"subject": "Math", "student_name": null}`), &ng))

	assert.False(t, ng.StudentName.Valid)
	assert.True(t, ng.Subject.Valid)
	assert.Equal(t, "Math", ng.Subject.String())
	assert.False(t, ng.Score.Valid)

	g := grade.Grade{ID: 1, StudentName: ng.StudentName, Subject: ng.Subject, Score: ng.Score, Date: "2024-01-15"}
	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"student_name":null,"subject":"Math","grade":null,"date":"2024-01-15"}`, string(data))
}

func TestNewGrade_anyValue(t *testing.T) {
	var ng grade.NewGrade
	require.NoError(t, json.Unmarshal([]byte(`{"student_name": 42, "subject": ["Math"], "grade": true}`), &ng))

	assert.Equal(t, "42", ng.StudentName.String())
	assert.Equal(t, `["Math"]`, ng.Subject.String())
	num, ok := ng.Score.Number()
	assert.True(t, ok)
	assert.Equal(t, 1.0, num)

	g := grade.Grade{ID: 1, StudentName: ng.StudentName, Subject: ng.Subject, Score: ng.Score, Date: "2024-01-15"}
	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"student_name":42,"subject":["Math"],"grade":true,"date":"2024-01-15"}`, string(data))
}

func TestValueFrom(t *testing.T) {
	s, err := grade.ValueFrom(map[string]interface{}{"value": 5})
	require.NoError(t, err)
	assert.True(t, s.Valid)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"value":5}`, string(data))

	s, err = grade.ValueFrom(nil)
	require.NoError(t, err)
	assert.False(t, s.Valid)
}

func TestNewCollection(t *testing.T) {
	data, err := json.Marshal(grade.NewCollection())
	require.NoError(t, err)
	assert.Equal(t, `{"students":[]}`, string(data))

	coll := grade.NewCollection()
	assert.True(t, coll.IsEmpty())
	assert.Equal(t, 1, coll.NextID())
	coll.Append(grade.Grade{ID: coll.NextID()})
	assert.Equal(t, 1, coll.Len())
	assert.Equal(t, 2, coll.NextID())
}
