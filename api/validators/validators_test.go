package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
)

type sample struct {
	Dir   string `json:"dir" validate:"omitempty,oneof=asc desc"`
	Limit int    `json:"limit" validate:"min=1,max=10"`
}

func TestValidateStructKeysDetailsByJSONName(t *testing.T) {
	err := ValidateStruct(sample{Dir: "up", Limit: 0})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"dir":   "must be one of: asc desc",
		"limit": "must be at least 1",
	}, typed.Details())

	assert.NoError(t, ValidateStruct(sample{Dir: "asc", Limit: 3}))
}

func TestQueryValuesTrimsAndCaps(t *testing.T) {
	long := strings.Repeat("x", 100)
	req := httptest.NewRequest("GET", "/?sort=%20amount%20&dir=DESC&junk="+long, nil)

	values := QueryValues(req, "sort", "junk", "missing")
	assert.Equal(t, "amount", values["sort"])
	assert.Len(t, values["junk"], maxQueryValueLen)
	assert.Equal(t, "", values["missing"])
	assert.Equal(t, "desc", QueryLower(req, "dir"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
	assert.Equal(t, "amount", SanitizeString("am\x00ou\nnt\t", 0))
	assert.Equal(t, "caf", SanitizeString("café", 4))
	assert.Equal(t, "café", SanitizeString("café", 5))
}
