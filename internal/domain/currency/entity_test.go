package currency

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "currencies-app/pkg/errors"
)

func validFields() Fields {
	return Fields{
		NumCode:  "840",
		CharCode: "usd",
		Name:     "Dollar",
		Value:    90.5,
		Nominal:  1,
	}
}

func TestNew_Success(t *testing.T) {
	c, err := New(validFields())
	require.NoError(t, err)

	assert.Equal(t, int64(0), c.ID())
	assert.Equal(t, "840", c.NumCode())
	assert.Equal(t, "USD", c.CharCode())
	assert.Equal(t, "Dollar", c.Name())
	assert.Equal(t, 90.5, c.Value())
	assert.Equal(t, 1, c.Nominal())
	assert.Equal(t, "USD (Dollar): 90.5 per 1", c.String())
}

func TestFieldsRoundTrip(t *testing.T) {
	c, err := Restore(7, validFields())
	require.NoError(t, err)

	restored, err := Restore(c.ID(), c.Fields())
	require.NoError(t, err)

	assert.Equal(t, c, restored)
}

func TestNew_InvalidCharCode(t *testing.T) {
	for _, code := range []string{"", "US", "USDT", "U5D", "$$$", "ДОЛ"} {
		t.Run(code, func(t *testing.T) {
			f := validFields()
			f.CharCode = code

			c, err := New(f)
			assert.Nil(t, c)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), "char_code")
		})
	}
}

func TestNew_InvalidNumCode(t *testing.T) {
	for _, code := range []string{"", "84", "8400", "84a", "+84", "-84"} {
		t.Run(code, func(t *testing.T) {
			f := validFields()
			f.NumCode = code

			c, err := New(f)
			assert.Nil(t, c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "num_code")
		})
	}
}

func TestNew_InvalidNameValueNominal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Fields)
		want   string
	}{
		{"short name", func(f *Fields) { f.Name = "D" }, "name must be at least 2 characters"},
		{"negative value", func(f *Fields) { f.Value = -5 }, "value must be greater than or equal to 0"},
		{"nan value", func(f *Fields) { f.Value = math.NaN() }, "value"},
		{"infinite value", func(f *Fields) { f.Value = math.Inf(1) }, "value must be a finite number"},
		{"negative infinite value", func(f *Fields) { f.Value = math.Inf(-1) }, "value must be a finite number"},
		{"zero nominal", func(f *Fields) { f.Nominal = 0 }, "nominal must be greater than 0"},
		{"negative nominal", func(f *Fields) { f.Nominal = -100 }, "nominal must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)

			c, err := New(f)
			assert.Nil(t, c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_ReportsEveryInvalidField(t *testing.T) {
	_, err := New(Fields{NumCode: "x", CharCode: "x", Name: "x", Value: -1, Nominal: 0})
	require.Error(t, err)

	for _, field := range []string{"num_code", "char_code", "name", "value", "nominal"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestSetters_RejectAndKeepState(t *testing.T) {
	c, err := New(validFields())
	require.NoError(t, err)

	assert.Error(t, c.SetNumCode("12"))
	assert.Error(t, c.SetCharCode("EURO"))
	assert.Error(t, c.SetName(""))
	assert.Error(t, c.SetValue(-0.01))
	assert.Error(t, c.SetValue(math.Inf(1)))
	assert.Error(t, c.SetNominal(0))

	assert.Equal(t, validFieldsUpper(), c.Fields())
}

func TestSetters_Apply(t *testing.T) {
	c, err := New(validFields())
	require.NoError(t, err)

	require.NoError(t, c.SetNumCode("978"))
	require.NoError(t, c.SetCharCode("eur"))
	require.NoError(t, c.SetName("Euro"))
	require.NoError(t, c.SetValue(98.2))
	require.NoError(t, c.SetNominal(10))

	assert.Equal(t, Fields{NumCode: "978", CharCode: "EUR", Name: "Euro", Value: 98.2, Nominal: 10}, c.Fields())
}

func TestJSON(t *testing.T) {
	c, err := Restore(3, validFields())
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"num_code":"840","char_code":"USD","name":"Dollar","value":90.5,"nominal":1}`, string(data))

	var decoded Currency
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *c, decoded)

	err = json.Unmarshal([]byte(`{"id":1,"num_code":"84","char_code":"USD","name":"Dollar","value":1,"nominal":1}`), &decoded)
	assert.Error(t, err)
}

func validFieldsUpper() Fields {
	f := validFields()
	f.CharCode = "USD"
	return f
}
