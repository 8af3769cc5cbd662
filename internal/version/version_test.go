package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_DefaultValues(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "dev", Commit)
	assert.Equal(t, "unknown", BuildTime)
}

func TestGet(t *testing.T) {
	info := Get("grova")

	assert.Equal(t, "grova", info.Service)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, BuildTime, info.BuildTime)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestInfo_JSON(t *testing.T) {
	data, err := json.Marshal(Get("grova"))
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "grova", decoded["service"])
	assert.Equal(t, "dev", decoded["version"])
	assert.Equal(t, "unknown", decoded["build_time"])
	assert.Contains(t, decoded, "go_version")
}

func TestInfo_String(t *testing.T) {
	s := Get("grova-adm").String()
	assert.Contains(t, s, "grova-adm dev")
	assert.Contains(t, s, "commit dev")
}
