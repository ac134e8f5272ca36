package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden files live in testdata/golden. Regenerate with:
//
//	go test ./internal/harness -run TestGolden -update
func TestGolden_Scenarios(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestMarshalSnapshot(t *testing.T) {
	result := NewResult()
	result.Queries = append(result.Queries,
		QueryOutcome{Formula: "x. a -> b", Results: []string{"b1"}},
		QueryOutcome{Formula: "x. (", Results: []string{}, Error: ErrorSyntax},
	)

	data, err := MarshalSnapshot("demo", result)
	require.NoError(t, err)

	want := `{
  "scenario": "demo",
  "queries": [
    {
      "formula": "x. a -> b",
      "results": [
        "b1"
      ]
    },
    {
      "formula": "x. (",
      "results": [],
      "error": "syntax"
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}
