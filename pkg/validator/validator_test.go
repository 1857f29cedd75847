package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createCategory struct {
	Name     string `json:"name" validate:"required,min=2,max=32"`
	ParentID string `json:"parent,omitempty" validate:"omitempty,mongodb"`
	Rank     int    `json:"rank" validate:"gte=0,lte=10"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(createCategory{Name: "Shoes", ParentID: "64b7f0c2a1e3b5d6c7f8a9b0", Rank: 3})
	assert.NoError(t, err)
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(createCategory{ParentID: "nope", Rank: 11})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid object id", fields["parent"])
	assert.Equal(t, "must be less than or equal to 10", fields["rank"])
}

func TestValidate_StringLengthMessage(t *testing.T) {
	err := Validate(createCategory{Name: "x"})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at least 2 characters", valErr.Fields()["name"])
}

func TestFieldErrors(t *testing.T) {
	err := FieldErrors{"price": "must have exactly 2 elements", "brand": "is required"}
	assert.Equal(t, "field 'brand' is required; field 'price' must have exactly 2 elements", err.Error())

	var fr FieldReporter = err
	assert.Len(t, fr.Fields(), 2)
}

func TestDecode_TypeMismatchNamesField(t *testing.T) {
	var dst struct {
		Stars *int `json:"stars"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"stars":"four"}`))

	err := Decode(r, &dst)
	require.Error(t, err)

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "must be an integer", fe["stars"])
}

func TestDecode_EmptyBody(t *testing.T) {
	var dst map[string]any
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := Decode(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty body")
}

func TestDecodeAndValidate_Malformed(t *testing.T) {
	var dst createCategory
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_Valid(t *testing.T) {
	var dst createCategory
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Laptops","rank":1}`))
	require.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "Laptops", dst.Name)
}
