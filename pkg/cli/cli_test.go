package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netblocksCsv = `netblock,base,mask,description
10.0.0.0/8,10.0.0.0,8,Corp
10.1.2.0/24,10.1.2.5,24,Lab
bad,not.an.ip,24,Broken
192.168.0.0/16,192.168.0.0,16,Home
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestLookupCommand(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	stdout, stderr, err := execute(t, "lookup", netblocks, "10.1.2.77", "8.8.8.8", "not.an.ip", "10.9.9.9", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "IPaddr,NetBlock,Description\n"+
		"10.1.2.77,10.1.2.0/24,Lab\n"+
		"8.8.8.8,NotFound,NotFound\n"+
		"not.an.ip,NotFound,NotFound\n"+
		"10.9.9.9,10.0.0.0/8,Corp\n", stdout)
	assert.Contains(t, stderr, "not.an.ip")
}

func TestLookupCommandProbeOrder(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	stdout, _, err := execute(t, "lookup", netblocks, "10.1.2.77", "--masks", "8,24", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "IPaddr,NetBlock,Description\n10.1.2.77,10.0.0.0/8,Corp\n", stdout)

	_, _, err = execute(t, "lookup", netblocks, "10.1.2.77", "--masks", "24,40")
	assert.Error(t, err)
}

func TestLookupCommandAddressFileAndOutput(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)
	addrs := writeFile(t, "addrs.txt", "192.168.4.4\n8.8.8.8\n")
	output := filepath.Join(t.TempDir(), "out.json")

	stdout, _, err := execute(t, "lookup", netblocks, "--addresses", addrs, "--format", "json", "-o", output, "--workers", "2")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var results []map[string]string
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 2)
	assert.Equal(t, "Home", results[0]["Description"])
	assert.Equal(t, "NotFound", results[1]["Description"])
}

func TestLookupCommandOnlyNotFound(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	stdout, _, err := execute(t, "lookup", netblocks, "10.1.2.77", "8.8.8.8", "--only-not-found", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "IPaddr,NetBlock,Description\n8.8.8.8,NotFound,NotFound\n", stdout)
}

func TestLookupCommandWithoutAddresses(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	_, _, err := execute(t, "lookup", netblocks)
	assert.ErrorContains(t, err, "no addresses")
}

func TestDumpCommand(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	stdout, stderr, err := execute(t, "dump", netblocks, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "NetBlock,Base,Mask,BaseInt,Description\n"+
		"10.0.0.0/8,10.0.0.0,8,167772160,Corp\n"+
		"10.1.2.0/24,10.1.2.5,24,167838208,Lab\n"+
		"192.168.0.0/16,192.168.0.0,16,3232235520,Home\n", stdout)
	assert.Contains(t, stderr, "not.an.ip")
}

func TestDumpCommandStrict(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	_, _, err := execute(t, "dump", netblocks, "--strict")
	assert.ErrorContains(t, err, "not.an.ip")
}

func TestAuditCommand(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	stdout, _, err := execute(t, "audit", netblocks, "--masks", "8,24", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Order Not Descending")
	assert.Contains(t, stdout, "Unreachable Mask,16,1")

	stdout, _, err = execute(t, "audit", netblocks, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Kind,Mask,Records,Detail\n", stdout)
}

func TestUnknownLogLevel(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)

	_, _, err := execute(t, "--log-level", "loud", "dump", netblocks)
	assert.Error(t, err)
}

func TestLookupCommandMasksFromEnv(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)
	t.Setenv("NETBLOCKR_MASKS", "8,24")
	t.Setenv("NETBLOCKR_FORMAT", "csv")

	stdout, _, err := execute(t, "lookup", netblocks, "10.1.2.77")
	require.NoError(t, err)
	assert.Equal(t, "IPaddr,NetBlock,Description\n10.1.2.77,10.0.0.0/8,Corp\n", stdout)
}

func TestExecuteReadsConfigFile(t *testing.T) {
	netblocks := writeFile(t, "blocks.csv", netblocksCsv)
	config := writeFile(t, "netblockr.json", `{"format": "csv"}`)
	missing := filepath.Join(t.TempDir(), "missing.json")

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), []string{"lookup", netblocks, "8.8.8.8"}, &stdout, &stderr, missing, config)
	require.NoError(t, err)
	assert.Equal(t, "IPaddr,NetBlock,Description\n8.8.8.8,NotFound,NotFound\n", stdout.String())

	// flags win over the config file
	stdout.Reset()
	err = Execute(context.Background(), []string{"lookup", netblocks, "8.8.8.8", "--format", "json"}, &stdout, &stderr, config)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), `"IPaddr"`)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "NETBLOCKR_DESCRIPTION_KEY"
	_, set := os.LookupEnv(key)
	require.False(t, set)
	t.Cleanup(func() { os.Unsetenv(key) })

	dotenv := writeFile(t, ".env", key+"=owner\n")
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), dotenv))
	assert.Equal(t, "owner", os.Getenv(key))

	netblocks := writeFile(t, "blocks.csv", "netblock,base,mask,owner\n10.0.0.0/8,10.0.0.0,8,Corp\n")
	stdout, _, err := execute(t, "lookup", netblocks, "10.9.9.9", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "IPaddr,NetBlock,Description\n10.9.9.9,10.0.0.0/8,Corp\n", stdout)
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	t.Setenv("NETBLOCKR_FORMAT", "json")

	dotenv := writeFile(t, ".env", "NETBLOCKR_FORMAT=csv\n")
	require.NoError(t, LoadDotEnv(dotenv))
	assert.Equal(t, "json", os.Getenv("NETBLOCKR_FORMAT"))
}
