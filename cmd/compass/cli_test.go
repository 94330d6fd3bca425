package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/RUBESHR7/compass-qa/internal/config"
	"github.com/RUBESHR7/compass-qa/internal/export"
	"github.com/RUBESHR7/compass-qa/internal/generation"
	"github.com/RUBESHR7/compass-qa/internal/perception"
	"github.com/RUBESHR7/compass-qa/internal/perception/perceptiontest"
	"github.com/RUBESHR7/compass-qa/internal/render"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// setup installs a scripted client and fresh globals, returning the temp
// workspace.
func setup(t *testing.T, client *perceptiontest.Client) string {
	t.Helper()
	color.NoColor = true
	logger = zap.NewNop()

	dir := t.TempDir()
	cfg = config.DefaultConfig()
	cfg.Export.OutputDir = dir

	orig := newClient
	newClient = func(ctx context.Context, c *config.Config) (perception.Client, error) {
		return client, nil
	}

	storyFile, caseCount, screenshots = "", 0, nil
	casesOut = filepath.Join(dir, "cases.json")
	casesIn = casesOut
	writeXLSX, outputDir, watchStory = false, "", false
	refinedOut, exportName, exportDir = "", "", ""
	showMarkdown, showStyle, showWidth = false, render.StyleNoTTY, 100

	t.Cleanup(func() { newClient = orig })
	return dir
}

func testCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func saveCases(t *testing.T, path string, n int) *testcase.GenerationResult {
	t.Helper()
	result := &testcase.GenerationResult{SuggestedFilename: "Login_Feature_TestCases.xlsx", TestCases: perceptiontest.Cases(n, 2)}
	testcase.Renumber(result.TestCases)
	require.NoError(t, export.SaveJSON(path, result))
	return result
}

func TestGenerateCmd(t *testing.T) {
	client := perceptiontest.New(perceptiontest.Text(
		perceptiontest.ObjectReply("Login_Feature_TestCases.xlsx", perceptiontest.Cases(3, 2))))
	dir := setup(t, client)
	writeXLSX = true
	caseCount = 3

	cmd, out := testCmd()
	require.NoError(t, runGenerate(cmd, []string{"As a user, I want to log in"}))

	saved, err := export.LoadJSON(casesOut)
	require.NoError(t, err)
	assert.Len(t, saved.TestCases, 3)
	assert.Equal(t, "TC_001", saved.TestCases[0].ID)

	_, err = os.Stat(filepath.Join(dir, "Login_Feature_TestCases.xlsx"))
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Generated 3 test cases")
	assert.Contains(t, out.String(), "TC_003")
	assert.Contains(t, out.String(), "(2 steps)")

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "generate exactly 3")
}

func TestGenerateCmd_StoryFileAndDefaultCount(t *testing.T) {
	client := perceptiontest.New(perceptiontest.Text(
		perceptiontest.ObjectReply("", perceptiontest.Cases(5, 1))))
	dir := setup(t, client)
	storyFile = filepath.Join(dir, "story.txt")
	require.NoError(t, os.WriteFile(storyFile, []byte("As a shopper, I want a cart"), 0644))

	cmd, _ := testCmd()
	require.NoError(t, runGenerate(cmd, nil))

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "As a shopper, I want a cart")
	assert.Contains(t, reqs[0].Prompt, "generate exactly 5")

	saved, err := export.LoadJSON(casesOut)
	require.NoError(t, err)
	assert.Equal(t, "TestCases.xlsx", saved.SuggestedFilename)
}

func TestGenerateCmd_Rejections(t *testing.T) {
	t.Run("no story", func(t *testing.T) {
		client := perceptiontest.New()
		setup(t, client)
		cmd, _ := testCmd()
		assert.ErrorIs(t, runGenerate(cmd, nil), story.ErrEmptyStory)
		assert.Zero(t, client.Calls())
	})

	t.Run("count not offered", func(t *testing.T) {
		client := perceptiontest.New()
		setup(t, client)
		caseCount = 4
		cmd, _ := testCmd()
		assert.ErrorIs(t, runGenerate(cmd, []string{"story"}), story.ErrInvalidCount)
		assert.Zero(t, client.Calls())
	})

	t.Run("watch without file", func(t *testing.T) {
		setup(t, perceptiontest.New())
		watchStory = true
		cmd, _ := testCmd()
		assert.Error(t, runGenerate(cmd, []string{"story"}))
	})

	t.Run("missing credential", func(t *testing.T) {
		setup(t, perceptiontest.New())
		newClient = func(ctx context.Context, c *config.Config) (perception.Client, error) {
			return nil, perception.ErrMissingCredential
		}
		cmd, _ := testCmd()
		err := runGenerate(cmd, []string{"story"})
		assert.ErrorIs(t, err, perception.ErrMissingCredential)
		assert.Contains(t, explain(err), "GEMINI_API_KEY")
	})
}

func TestRefineCmd(t *testing.T) {
	after := perceptiontest.Cases(3, 2)
	after = append(after[:1], after[2:]...)
	client := perceptiontest.New(perceptiontest.Text(perceptiontest.ObjectReply("Login_Trimmed.xlsx", after)))
	dir := setup(t, client)
	saveCases(t, casesIn, 3)
	refinedOut = filepath.Join(dir, "refined.json")

	cmd, out := testCmd()
	require.NoError(t, runRefine(cmd, []string{"Remove", "case", "2"}))

	refined, err := export.LoadJSON(refinedOut)
	require.NoError(t, err)
	assert.Equal(t, "Login_Trimmed.xlsx", refined.SuggestedFilename)
	assert.Equal(t, []string{"Case 1", "Case 3"}, []string{refined.TestCases[0].Summary, refined.TestCases[1].Summary})
	assert.Equal(t, "TC_002", refined.TestCases[1].ID)

	original, err := export.LoadJSON(casesIn)
	require.NoError(t, err)
	assert.Len(t, original.TestCases, 3)

	assert.Contains(t, out.String(), `set the filename to "Login_Trimmed.xlsx"`)
	assert.Contains(t, out.String(), "+0 -1 =2")
	assert.Contains(t, client.Requests()[0].Prompt, `"Remove case 2"`)
}

func TestRefineCmd_FailureLeavesFileUntouched(t *testing.T) {
	client := perceptiontest.New(perceptiontest.Text("I cannot help with that."))
	setup(t, client)
	saveCases(t, casesIn, 4)
	before, err := os.ReadFile(casesIn)
	require.NoError(t, err)

	cmd, _ := testCmd()
	err = runRefine(cmd, []string{"Add a negative case"})
	assert.ErrorIs(t, err, generation.ErrRefinementFailed)
	assert.Contains(t, explain(err), "Please try again")

	after, err := os.ReadFile(casesIn)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExportCmd(t *testing.T) {
	dir := setup(t, perceptiontest.New())
	saveCases(t, casesIn, 2)
	exportName = "Custom Name"

	cmd, out := testCmd()
	require.NoError(t, runExport(cmd, nil))

	path := filepath.Join(dir, "Custom Name.xlsx")
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.DefaultSheetName}, f.GetSheetList())

	rows, err := f.GetRows(export.DefaultSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1+2*2)
	assert.Contains(t, out.String(), "Exported 2 test cases")
}

func TestExportCmd_MissingInput(t *testing.T) {
	dir := setup(t, perceptiontest.New())
	casesIn = filepath.Join(dir, "absent.json")
	cmd, _ := testCmd()
	assert.Error(t, runExport(cmd, nil))
}

func TestShowCmd(t *testing.T) {
	setup(t, perceptiontest.New())
	saveCases(t, casesIn, 2)

	t.Run("markdown", func(t *testing.T) {
		showMarkdown = true
		defer func() { showMarkdown = false }()
		cmd, out := testCmd()
		require.NoError(t, runShow(cmd, nil))
		assert.Contains(t, out.String(), "# Login_Feature_TestCases.xlsx")
		assert.Contains(t, out.String(), "## TC_002: Case 2")
	})

	t.Run("rendered", func(t *testing.T) {
		cmd, out := testCmd()
		require.NoError(t, runShow(cmd, nil))
		assert.Contains(t, out.String(), "TC_001: Case 1")
	})
}

func TestModelsCmd(t *testing.T) {
	client := perceptiontest.New().WithModels(
		perception.ModelInfo{Name: "gemini-flash-latest", DisplayName: "Gemini Flash Latest"},
		perception.ModelInfo{Name: "scripted", DisplayName: "Scripted"},
	)
	setup(t, client)

	cmd, out := testCmd()
	require.NoError(t, runModels(cmd, nil))
	assert.Contains(t, out.String(), "gemini-flash-latest")
	assert.Contains(t, out.String(), "* scripted")
}

func TestConfigCmds(t *testing.T) {
	dir := setup(t, perceptiontest.New())
	orig := configPath
	configPath = filepath.Join(dir, ".compass", "config.yaml")
	defer func() { configPath = orig }()

	cmd, out := testCmd()
	require.NoError(t, configInitCmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), "Wrote")

	loaded, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Generation, loaded.Generation)

	cmd, _ = testCmd()
	assert.Error(t, configInitCmd.RunE(cmd, nil), "existing file needs --force")

	cfg.LLM.APIKey = "secret-key"
	cmd, out = testCmd()
	require.NoError(t, configShowCmd.RunE(cmd, nil))
	assert.NotContains(t, out.String(), "secret-key")
	assert.Contains(t, out.String(), "sheet_name: Test Cases")
	assert.Equal(t, "secret-key", cfg.LLM.APIKey, "show must not mutate the loaded config")
}
