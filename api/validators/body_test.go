package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type goodBody struct {
	Name     string             `json:"name" validate:"required,max=5"`
	Category enums.GoodCategory `json:"category" validate:"required,enum"`
	Count    int                `json:"count" validate:"min=0"`
}

func decode(t *testing.T, body string) (*goodBody, *pkgerrors.Error) {
	t.Helper()
	req := httptest.NewRequest("POST", "/inventory/add", strings.NewReader(body))
	var dest goodBody
	err := DecodeJSONBody(req, &dest)
	if err == nil {
		return &dest, nil
	}
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	return nil, typed
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(t, `{"name":"Apple","category":"food","count":2}`)
	require.Nil(t, err)
	assert.Equal(t, enums.GoodCategoryFood, got.Category)
}

func TestDecodeJSONBodyRejectsEmptyBody(t *testing.T) {
	_, err := decode(t, "")
	assert.Equal(t, "request body is required", err.Message())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	_, err := decode(t, `{"name":"Apple","category":"food","colour":"red"}`)
	assert.Equal(t, "invalid request body", err.Message())
}

func TestDecodeJSONBodyRejectsTrailingObjects(t *testing.T) {
	_, err := decode(t, `{"name":"Apple","category":"food"}{"name":"Pear"}`)
	assert.Contains(t, err.Message(), "single JSON object")
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	_, err := decode(t, `{"name":"Pineapple","category":"toys","count":-1}`)
	details, ok := err.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at most 5 characters", details["name"])
	assert.Equal(t, "is not a recognised value", details["category"])
	assert.Equal(t, "must be at least 0", details["count"])
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	_, err := decode(t, `{"name":"`+strings.Repeat("a", MaxBodyBytes)+`"}`)
	assert.Equal(t, "request body too large", err.Message())
}
