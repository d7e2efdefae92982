package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"rfc3339 string", `"2024-03-01T12:30:00Z"`, &want},
		{"seconds object", `{"seconds":1709296200,"nanoseconds":0}`, &want},
		{"underscored seconds object", `{"_seconds":1709296200,"_nanoseconds":0}`, &want},
		{"unix milliseconds", `1709296200000`, &want},
		{"null", `null`, nil},
		{"garbage string", `"yesterday"`, nil},
		{"object without seconds", `{"foo":1}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			if tt.want == nil {
				assert.Nil(t, ts.Time)
				return
			}
			require.NotNil(t, ts.Time)
			assert.True(t, tt.want.Equal(*ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	b, err := json.Marshal(NewTimestamp(&at))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:30:00Z"`, string(b))

	b, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(b))
}

func TestAmount(t *testing.T) {
	var doc struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.50","b":7.25,"c":"n/a","d":{"x":1}}`), &doc))
	assert.True(t, doc.A.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, doc.B.Equal(decimal.RequireFromString("7.25")))
	assert.True(t, doc.C.IsZero())
	assert.True(t, doc.D.IsZero())
	assert.True(t, doc.A.Valid)
	assert.True(t, doc.B.Valid)
	assert.False(t, doc.C.Valid)
	assert.False(t, doc.D.Valid)

	b, err := json.Marshal(NewAmount(decimal.RequireFromString("19.90")))
	require.NoError(t, err)
	assert.Equal(t, `19.9`, string(b))
}

func TestCountFlagText(t *testing.T) {
	var doc struct {
		Rating  Count `json:"rating"`
		Rating2 Count `json:"rating2"`
		Shown   Flag  `json:"shown"`
		Shown2  Flag  `json:"shown2"`
		Shown3  Flag  `json:"shown3"`
		Phone   Text  `json:"phone"`
		Name    Text  `json:"name"`
	}
	input := `{"rating":"4","rating2":3.0,"shown":"true","shown2":1,"shown3":false,"phone":5551234,"name":"  Ann "}`
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	assert.Equal(t, Count(4), doc.Rating)
	assert.Equal(t, Count(3), doc.Rating2)
	assert.True(t, bool(doc.Shown))
	assert.True(t, bool(doc.Shown2))
	assert.False(t, bool(doc.Shown3))
	assert.Equal(t, "5551234", doc.Phone.String())
	assert.Equal(t, "Ann", doc.Name.String())
}
