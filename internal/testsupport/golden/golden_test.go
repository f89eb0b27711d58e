package golden

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoad_ReadsAndUnmarshalsFixture(t *testing.T) {
	var f fixture
	require.NoError(t, Load("testdata/fixture.json", &f))
	assert.Equal(t, "deal-001", f.Name)
	assert.Equal(t, 3, f.Count)
}

func TestLoad_MissingFileIsFailClosed(t *testing.T) {
	var f fixture
	err := Load("testdata/does-not-exist.json", &f)
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoad_InvalidJSONIsFailClosed(t *testing.T) {
	var f fixture
	err := Load("testdata/expected.json", &f) // valid JSON, wrong shape is fine; exercise a real decode error below
	require.NoError(t, err)

	badPath := t.TempDir() + "/bad.json"
	require.NoError(t, writeFile(badPath, []byte("{not json")))
	err = Load(badPath, &f)
	require.Error(t, err)
}

func TestCompare_MatchesGoldenFile(t *testing.T) {
	var f fixture
	require.NoError(t, Load("testdata/fixture.json", &f))
	actual, err := json.Marshal(f)
	require.NoError(t, err)

	Compare(t, "testdata/expected.json", actual)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
