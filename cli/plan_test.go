package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"mdp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executePlan(t *testing.T, stdin string, args ...string) (models.PathResponse, error) {
	t.Helper()
	planFile, planRandom, planSeed, planPretty = "", 0, 0, true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"plan"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()

	var resp models.PathResponse
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	}
	return resp, err
}

func TestPlanCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	body := `{"obstacles":[{"x":5,"y":5,"d":4,"id":1}],"robot_x":1,"robot_y":1,"robot_dir":0}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	resp, err := executePlan(t, "", "--file", path, "--pretty=false")
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Equal(t, []int{1}, resp.Data.Order)
	assert.Equal(t, "FIN", resp.Data.Commands[len(resp.Data.Commands)-1])
}

func TestPlanCommand_Stdin(t *testing.T) {
	resp, err := executePlan(t, `{"obstacles":[],"robot_x":1,"robot_y":1,"robot_dir":0}`)
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, []string{"FIN"}, resp.Data.Commands)
}

func TestPlanCommand_Random(t *testing.T) {
	a, err := executePlan(t, "", "--random", "3", "--seed", "21")
	require.NoError(t, err)
	require.NotNil(t, a.Data)
	assert.Len(t, a.Data.Order, 3)

	// 같은 시드면 같은 배치와 같은 결과
	b, err := executePlan(t, "", "--random", "3", "--seed", "21")
	require.NoError(t, err)
	assert.Equal(t, a.Data.Commands, b.Data.Commands)
	assert.Equal(t, a.Data.Order, b.Data.Order)

	for seed := 1; seed <= 5; seed++ {
		resp, err := executePlan(t, "", "--random", "8", "--seed", strconv.Itoa(seed), "--pretty=false")
		require.NoError(t, err, "seed %d", seed)
		assert.Nil(t, resp.Error)
	}
}

func TestPlanCommand_PlanError(t *testing.T) {
	resp, err := executePlan(t, `{"obstacles":[{"x":5,"y":18,"d":0,"id":1}],"robot_x":1,"robot_y":1,"robot_dir":0}`)
	require.Error(t, err)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, err.Error(), *resp.Error)
}

func TestPlanCommand_BadInput(t *testing.T) {
	_, err := executePlan(t, `not json`)
	assert.ErrorContains(t, err, "failed to parse request")

	_, err = executePlan(t, "", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to open request")
}
