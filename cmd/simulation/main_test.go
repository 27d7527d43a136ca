package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoAgents = `<scenario>
	<AgentList>
		<Agent x="0" y="0" heading="0" speed="1" drange="5"/>
		<Agent x="3" y="0" heading="0" speed="0" drange="5" variant="plain"/>
	</AgentList>
</scenario>`

func TestRun_PrintsStatePerTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xml")
	require.NoError(t, os.WriteFile(path, []byte(twoAgents), 0644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"--scenario", path, "--duration", "3", "--seed", "7"}, &stdout, &stderr)
	require.NoError(t, err)

	want := strings.Join([]string{
		"----",
		"Time: 0, [Special Agent]1.000,0.000,0.000,1.000,5.000",
		"Time: 0, 3.000,0.000,0.000,0.000,5.000",
		"----",
		"Time: 1, [Special Agent]2.000,0.000,0.000,1.000,5.000",
		"Time: 1, 3.000,0.000,0.000,0.000,5.000",
		"----",
		"Time: 2, [Special Agent]3.000,0.000,0.000,1.000,5.000",
		"Time: 2, 3.000,0.000,0.000,0.000,5.000",
		"",
	}, "\n")
	assert.Equal(t, want, stdout.String())
	assert.Contains(t, stderr.String(), "simulation finished")
	assert.Contains(t, stderr.String(), "ticks=3")
}

func TestRun_LogsMetricTotalsToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.xml")
	require.NoError(t, os.WriteFile(path, []byte(twoAgents), 0644))
	logPath := filepath.Join(dir, "run.log")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--scenario", path, "--duration", "3", "--logFile", logPath}, &stdout, &stderr)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	for _, out := range []string{stderr.String(), string(data)} {
		assert.Contains(t, out, "msg=metrics")
		assert.Contains(t, out, "maneuver.ticks=3")
		assert.Contains(t, out, "maneuver.pairs.evaluated=6")
		assert.Contains(t, out, "maneuver.detections=6")
		assert.Contains(t, out, "maneuver.agents=2")
	}
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run([]string{"--scenario", filepath.Join(t.TempDir(), "missing.xml")}, &stdout, &stderr)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte(`<scenario><AgentList><Agent speed="-1"/></AgentList></scenario>`), 0644))
	err = run([]string{"--scenario", bad}, &stdout, &stderr)
	assert.ErrorContains(t, err, "registering agents")

	err = run([]string{"--no-such-flag"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run([]string{"--scenario", bad, "--logFile", filepath.Join(t.TempDir(), "missing", "run.log")}, &stdout, &stderr)
	assert.ErrorContains(t, err, "opening log file")
}
