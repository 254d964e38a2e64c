package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		in      string
		want    Verdict
		wantErr bool
	}{
		{"passed", Passed, false},
		{"PASS", Passed, false},
		{" fail ", Failed, false},
		{"error", Error, false},
		{"skipped", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVerdict(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCell_ObservedAndDiffers(t *testing.T) {
	plain := Cell{Column: "Total", Value: "42"}
	assert.Equal(t, "42", plain.Observed())
	assert.False(t, plain.Differs())

	same := Cell{Column: "Expected Total", Value: "42", Actual: Str("42")}
	assert.False(t, same.Differs())

	diff := Cell{Column: "Expected Total", Value: "42", Actual: Str("41")}
	assert.Equal(t, "41", diff.Observed())
	assert.True(t, diff.Differs())
}

func TestRow_Validate(t *testing.T) {
	valid := Row{
		Suite: "S1", Scenario: "Login", Table: 0, Index: 0,
		Cells:   []Cell{{Column: "user", Value: "bob"}},
		Verdict: Passed,
	}
	require.NoError(t, valid.Validate())

	noSuite := valid
	noSuite.Suite = ""
	assert.ErrorContains(t, noSuite.Validate(), "missing suite")

	dup := valid
	dup.Cells = []Cell{{Column: "a"}, {Column: "a"}}
	assert.ErrorContains(t, dup.Validate(), "duplicate column")

	badVerdict := valid
	badVerdict.Verdict = "maybe"
	assert.ErrorContains(t, badVerdict.Validate(), "unknown verdict")

	negative := valid
	negative.Index = -1
	assert.Error(t, negative.Validate())
}

func TestRow_CloneIsDeep(t *testing.T) {
	orig := Row{Cells: []Cell{{Column: "x", Value: "1", Actual: Str("2")}}}
	cp := orig.Clone()
	*cp.Cells[0].Actual = "3"
	cp.Cells[0].Value = "9"
	assert.Equal(t, "2", *orig.Cells[0].Actual)
	assert.Equal(t, "1", orig.Cells[0].Value)
}

func TestVerdict_UnmarshalYAMLAcceptsAliases(t *testing.T) {
	var r Row
	require.NoError(t, yaml.Unmarshal([]byte("suite: S\nscenario: X\nverdict: FAIL\n"), &r))
	assert.Equal(t, Failed, r.Verdict)

	err := yaml.Unmarshal([]byte("verdict: flaky\n"), &r)
	assert.ErrorContains(t, err, "unknown verdict")
}
