package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliLab = `
name: cli-lab
topology:
  nodes:
    r1:
      kind: arista_eos
      mgmt-ipv4: 172.20.20.11/24
    client1:
      kind: linux
`

const cliConfig = `
collection:
  driver: ssh
  workers: 1
logging:
  level: error
`

// execute runs the root command with a fresh flag state
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "labsync.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(cliConfig), 0o600))

	outputFormat, logLevel, driverName, strict = "", "", "", false
	collectRunningConfig, collectShowReport = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--config", cfgFile))

	err := rootCmd.Execute()
	return out.String(), err
}

func writeLab(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.clab.yml")
	require.NoError(t, os.WriteFile(path, []byte(cliLab), 0o644))
	return path
}

func TestTopologyCommand(t *testing.T) {
	lab := writeLab(t)

	out, err := execute(t, "topology", lab, "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Name    string `json:"name"`
		Devices []struct {
			Name   string `json:"name"`
			Driver string `json:"driver"`
			MgmtIP string `json:"mgmt_ip"`
		} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "cli-lab", doc.Name)
	require.Len(t, doc.Devices, 2)
	assert.Equal(t, "r1", doc.Devices[0].Name)
	assert.Equal(t, "arista_eos", doc.Devices[0].Driver)
	assert.Equal(t, "172.20.20.11/24", doc.Devices[0].MgmtIP)
}

func TestTopologyCommandAnsible(t *testing.T) {
	out, err := execute(t, "topology", writeLab(t), "-o", "ansible-inventory")
	require.NoError(t, err)
	assert.Contains(t, out, "ansible_host: 172.20.20.11")
	assert.Contains(t, out, "arista.eos.eos")
	assert.Contains(t, out, "labsync_site: cli-lab")
}

func TestTopologyCommandMissingFile(t *testing.T) {
	_, err := execute(t, "topology", filepath.Join(t.TempDir(), "missing.clab.yml"))
	assert.Error(t, err)
}

func TestCollectCommandReportsSkippedDevices(t *testing.T) {
	lab := writeLab(t)
	// r1 has an address but no credentials; client1 has no address
	out, err := execute(t, "collect", lab, "--report")
	require.NoError(t, err)

	var report struct {
		SiteAction string `json:"site_action"`
		Outcomes   []struct {
			Device string `json:"device"`
			Action string `json:"action"`
			Stage  string `json:"stage"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "skipped", report.SiteAction)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "failed", report.Outcomes[0].Action)
	assert.Equal(t, "credentials", report.Outcomes[0].Stage)
	assert.Equal(t, "skipped", report.Outcomes[1].Action)
	assert.Equal(t, "address", report.Outcomes[1].Stage)

	_, err = execute(t, "collect", lab, "--report", "--strict")
	assert.Error(t, err)
}

func TestUnknownDriverRejected(t *testing.T) {
	_, err := execute(t, "topology", writeLab(t), "--driver", "telnet")
	assert.Error(t, err)
}
