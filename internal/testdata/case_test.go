package testdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCase_String(t *testing.T) {
	tc := TestCase{
		"case_id": float64(3),
		"text":    "  padded ",
		"ratio":   1.5,
		"flag":    true,
	}

	assert.Equal(t, "3", tc.ID())
	assert.Equal(t, "padded", tc.String("text"))
	assert.Equal(t, "1.5", tc.String("ratio"))
	assert.Equal(t, "true", tc.String("flag"))
	assert.Equal(t, "", tc.String("missing"))
}

func TestTestCase_JSON(t *testing.T) {
	tc := TestCase{
		"case_id":  "c1",
		"params":   `{"page": 1, "tags": ["a"]}`,
		"empty":    "   ",
		"inline":   map[string]any{"k": "v"},
		"broken":   `{"k":`,
		"sequence": `[1, 2]`,
	}

	params, err := tc.JSON("params")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"page": float64(1), "tags": []any{"a"}}, params)

	empty, err := tc.JSON("empty")
	require.NoError(t, err)
	assert.Nil(t, empty)

	inline, err := tc.Mapping("inline")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, inline)

	_, err = tc.JSON("broken")
	assert.ErrorContains(t, err, "c1")

	_, err = tc.Mapping("sequence")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	cases := []TestCase{{"case_id": "1"}, {"case_id": "2"}, {"case_id": "3"}}

	assert.Len(t, Filter(cases), 3)

	filtered := Filter(cases, "3", "1")
	require.Len(t, filtered, 2)
	assert.Equal(t, "1", filtered[0].ID())
	assert.Equal(t, "3", filtered[1].ID())
}
