package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
		kind  Kind
	}{
		{"null", NullValue(), "", KindNull},
		{"string keeps padding", StringValue("  Alice "), "  Alice ", KindString},
		{"integer number", NumberValue(1500), "1500", KindNumber},
		{"fractional number", NumberValue(12.5), "12.5", KindNumber},
		{"date", DateValue(NewDate(2024, time.March, 5)), "2024-03-05", KindDate},
		{"invalid date is null", DateValue(InvalidDate), "", KindNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Text())
			assert.Equal(t, tt.kind, tt.value.Kind())
		})
	}
}

func TestDate(t *testing.T) {
	d := NewDate(2024, time.February, 30)
	assert.True(t, d.Valid())
	assert.Equal(t, "2024-03-01", d.String())

	assert.False(t, InvalidDate.Valid())
	assert.Equal(t, "", InvalidDate.String())
	assert.True(t, InvalidDate.Time().IsZero())

	assert.Equal(t, NewDate(2023, time.December, 31), DateOf(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.NotEqual(t, InvalidDate, NewDate(1, time.January, 1))
}

func TestAppendRowKeepsWidth(t *testing.T) {
	tbl := NewRawTable("t", []string{"a", "b", "c"})
	tbl.AppendRow([]Value{StringValue("x")})
	tbl.AppendRow([]Value{StringValue("1"), StringValue("2"), StringValue("3"), StringValue("4")})

	require.Equal(t, 2, tbl.Len())
	for _, row := range tbl.Rows {
		assert.Len(t, row, 3)
	}
	assert.True(t, tbl.Rows[0][2].IsNull())
}

func TestConcat(t *testing.T) {
	a := NewRawTable("a.csv", []string{"Name", "Amount"})
	a.AppendRow([]Value{StringValue("Alice"), StringValue("10")})

	b := NewRawTable("b.csv", []string{" amount", "name ", "Department"})
	b.AppendRow([]Value{StringValue("20"), StringValue("Bob"), StringValue("HR")})

	merged := Concat("a.csv, b.csv", []*RawTable{a, b})

	assert.Equal(t, []string{"Name", "Amount", "Department"}, merged.Columns)
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, []string{"Alice", "10", ""}, texts(merged.Rows[0]))
	assert.Equal(t, []string{"Bob", "20", "HR"}, texts(merged.Rows[1]))
	assert.True(t, merged.Rows[0][2].IsNull())
}

func TestConcatKeepsRepeatedHeadersApart(t *testing.T) {
	a := NewRawTable("a", []string{"name", "Name"})
	a.AppendRow([]Value{StringValue("first"), StringValue("second")})

	merged := Concat("a", []*RawTable{a})

	assert.Equal(t, []string{"name", "Name"}, merged.Columns)
	assert.Equal(t, []string{"first", "second"}, texts(merged.Rows[0]))
}

func TestConcatEmpty(t *testing.T) {
	merged := Concat("none", nil)
	assert.Empty(t, merged.Columns)
	assert.Equal(t, 0, merged.Len())
}

func texts(row []Value) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = v.Text()
	}
	return out
}
