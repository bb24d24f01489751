package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/apitest"
	"github.com/felixgeelhaar/stockroom/internal/exitcode"
	"github.com/felixgeelhaar/stockroom/internal/storage"
	"github.com/felixgeelhaar/stockroom/internal/tui"
)

type scriptedPrompter struct {
	creds   tui.Credentials
	confirm bool
	err     error
	asked   int
}

func (p *scriptedPrompter) Credentials(initial tui.Credentials) (tui.Credentials, error) {
	p.asked++
	if p.err != nil {
		return initial, p.err
	}
	out := initial
	if out.Username == "" {
		out.Username = p.creds.Username
	}
	if out.Password == "" {
		out.Password = p.creds.Password
	}
	return out, nil
}

func (p *scriptedPrompter) Confirm(string, bool) (bool, error) {
	p.asked++
	return p.confirm, p.err
}

type cli struct {
	srv       *apitest.Server
	tokenFile string
	prompter  *scriptedPrompter
}

// newCLI points the command tree at a fake backend with a file store in a
// temporary directory and an isolated home.
func newCLI(t *testing.T) *cli {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("STOCKROOM_STORAGE_BACKEND", storage.BackendFile)
	t.Setenv("STOCKROOM_STORAGE_PATH", filepath.Join(dir, "token.json"))
	t.Setenv("STOCKROOM_API_URL", "")
	t.Setenv("CI", "true")

	srv := apitest.NewServer(t)
	srv.AddUser("alice", "secret", "abc123")

	c := &cli{
		srv:       srv,
		tokenFile: filepath.Join(dir, "token.json"),
		prompter:  &scriptedPrompter{},
	}

	orig := prompter
	prompter = c.prompter
	t.Cleanup(func() { prompter = orig })
	return c
}

// run executes the root command once and returns stdout, stderr and the
// error, restoring every flag to its default first.
func (c *cli) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--api-url", c.srv.URL}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func (c *cli) login(t *testing.T) {
	t.Helper()
	_, _, err := c.run(t, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)
}

func TestCLI_LoginThenStatus(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Dashboard")

	data, err := os.ReadFile(c.tokenFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc123")

	out, _, err = c.run(t, "status", "-o", "json")
	require.NoError(t, err)
	var status struct {
		Authenticated bool   `json:"authenticated"`
		Storage       string `json:"storage"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Authenticated)
	assert.Equal(t, storage.BackendFile, status.Storage)
}

func TestCLI_LoginSucceedsWhenDashboardFails(t *testing.T) {
	c := newCLI(t)
	c.srv.RespondWith("/api/transactions/", http.StatusInternalServerError)

	_, stderr, err := c.run(t, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, stderr, "failed to navigate to home view")

	data, err := os.ReadFile(c.tokenFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc123")
}

func TestCLI_LoginPromptsForMissingPassword(t *testing.T) {
	c := newCLI(t)
	c.prompter.creds = tui.Credentials{Password: "secret"}

	_, _, err := c.run(t, "login", "--username", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, c.prompter.asked)
}

func TestCLI_LoginWithoutTerminal(t *testing.T) {
	c := newCLI(t)
	c.prompter.err = tui.ErrNotInteractive

	_, _, err := c.run(t, "login")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
	assert.Empty(t, c.srv.Requests())
}

func TestCLI_RejectedLogin(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "login", "-u", "alice", "-p", "wrong")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.NoFileExists(t, c.tokenFile)
}

func TestCLI_ProtectedViewWhenSignedOut(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "inventory")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Contains(t, out, "stockroom login")
	assert.Empty(t, c.srv.Requests())
}

func TestCLI_Inventory(t *testing.T) {
	c := newCLI(t)
	c.srv.AddMaterial(apitest.Material{MaterialID: "V-1", Name: "Valve", Quantity: 3})
	c.srv.AddMaterial(apitest.Material{MaterialID: "B-1", Name: "Bolt", Quantity: 40})
	c.login(t)

	out, _, err := c.run(t, "inventory", "--search", "valve", "-o", "json")
	require.NoError(t, err)

	var page api.Page[api.Material]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Valve", page.Results[0].Name)
}

func TestCLI_RevokedTokenLogsOut(t *testing.T) {
	c := newCLI(t)
	c.login(t)
	c.srv.RevokeToken("abc123")

	_, _, err := c.run(t, "transactions")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))

	data, err := os.ReadFile(c.tokenFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abc123")
}

func TestCLI_Logout(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	out, _, err := c.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "signed out")

	_, _, err = c.run(t, "dashboard")
	require.Error(t, err)
}

func TestCLI_OpenUnknownRoute(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "open", "/settings")
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.DetermineExitCode(err))
}

func TestCLI_MaterialLifecycle(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	out, _, err := c.run(t, "material", "create", "--material-id", "B-7", "--name", "Bearing", "--shelf", "A3", "--quantity", "4", "-o", "json")
	require.NoError(t, err)
	var created api.Material
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotZero(t, created.ID)
	id := created.ID

	out, _, err = c.run(t, "material", "adjust", strconv.Itoa(id), "9", "-o", "json")
	require.NoError(t, err)
	var adjusted api.Material
	require.NoError(t, json.Unmarshal([]byte(out), &adjusted))
	assert.Equal(t, 9, adjusted.Quantity)
	assert.Equal(t, "A3", adjusted.Shelf)

	out, _, err = c.run(t, "material", "get", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Bearing")

	c.prompter.confirm = false
	out, _, err = c.run(t, "material", "delete", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	_, _, err = c.run(t, "material", "delete", strconv.Itoa(id), "--yes")
	require.NoError(t, err)

	_, _, err = c.run(t, "material", "get", strconv.Itoa(id))
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.DetermineExitCode(err))
}

func TestCLI_MaterialUpdate(t *testing.T) {
	c := newCLI(t)
	m := c.srv.AddMaterial(apitest.Material{MaterialID: "B-7", Name: "Bearing", Warehouse: "north", Shelf: "A3", Quantity: 4})
	c.login(t)

	out, _, err := c.run(t, "material", "update", strconv.Itoa(m.ID), "--warehouse", "south", "--quantity", "0", "-o", "json")
	require.NoError(t, err)

	var updated api.Material
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, "south", updated.Warehouse)
	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, "Bearing", updated.Name)
	assert.Equal(t, "A3", updated.Shelf)

	_, _, err = c.run(t, "material", "update", strconv.Itoa(m.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestCLI_MaterialRequiresLogin(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "material", "get", "1")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Empty(t, c.srv.Requests())
}

func TestCLI_MaterialInvalidArgs(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "material", "adjust", "1", "-4")
	require.Error(t, err)

	_, _, err = c.run(t, "material", "create")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestCLI_ConfigInitAndShow(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "stockroom.yaml")

	out, _, err := c.run(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var written map[string]any
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, c.srv.URL, written["api_url"])

	out, _, err = c.run(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "api_url: "+c.srv.URL)

	out, _, err = c.run(t, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestCLI_ConfigShowMissingFile(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.DetermineExitCode(err))
}

func TestCLI_InvalidOutput(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "status", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.DetermineExitCode(err))
}

func TestCLI_Version(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stockroom ")

	out, _, err = c.run(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}
