package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/pydup/pydup/mcp"
	"github.com/pydup/pydup/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clonedPair = `def load_users(path):
    users = []
    with open(path) as f:
        for line in f:
            users.append(line.strip())
    return users

def load_groups(path):
    groups = []
    with open(path) as f:
        for line in f:
            groups.append(line.strip())
    return groups
`

type args struct {
	arguments interface{}
	setupFS   func(t *testing.T) string
}

func setupConfig(t *testing.T) string {
	t.Helper()
	configDir := t.TempDir()
	configFile := filepath.Join(configDir, ".pydup.toml")
	err := os.WriteFile(configFile, []byte("[clones]\nmin_lines = 5\n"), 0o644)
	require.NoError(t, err)
	return configFile
}

func setupClonedFile(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "loaders.py")
	require.NoError(t, os.WriteFile(dst, []byte(clonedPair), 0o644))
	return dst
}

func runToolTest(
	t *testing.T,
	setupFS func(t *testing.T) string,
	arguments interface{},
	handlerFunc func(*mcp.HandlerSet, context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error),
) *mcplib.CallToolResult {

	t.Helper()
	configFile := setupConfig(t)
	deps := mcp.NewTestDependencies(service.NewFileReader(), nil, configFile)
	h := mcp.NewHandlerSet(deps)

	var filePath string
	if setupFS != nil {
		filePath = setupFS(t)
	}

	if filePath != "" {
		if m, ok := arguments.(map[string]interface{}); ok {
			m["path"] = filePath
		}
	}

	req := mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Arguments: arguments,
		},
	}

	res, err := handlerFunc(h, context.Background(), req)
	require.NoError(t, err)

	return res
}

func TestHandleDetectClones(t *testing.T) {
	type want struct {
		isError      *bool
		expectPrefix string
		check        func(t *testing.T, res *mcplib.CallToolResult)
	}
	errTrue := true
	errFalse := false
	tests := map[string]struct {
		args args
		want want
	}{
		"invalid_arguments_format": {
			args: args{
				arguments: "not-a-map",
			},
			want: want{
				isError:      &errTrue,
				expectPrefix: "invalid arguments format",
			},
		},
		"path_missing": {
			args: args{
				arguments: map[string]interface{}{},
			},
			want: want{
				isError: &errTrue,
			},
		},
		"path_not_exist": {
			args: args{
				arguments: map[string]interface{}{
					"path": "/non/existing/path",
				},
			},
			want: want{
				isError:      &errTrue,
				expectPrefix: "path does not exist",
			},
		},
		"success_summary": {
			args: args{
				setupFS:   setupClonedFile,
				arguments: map[string]interface{}{},
			},
			want: want{
				isError: &errFalse,
				check: func(t *testing.T, res *mcplib.CallToolResult) {
					require.Greater(t, len(res.Content), 0)
					text := mcplib.GetTextFromContent(res.Content[0])
					require.NotEmpty(t, text)
					var result map[string]interface{}
					require.NoError(t, json.Unmarshal([]byte(text), &result))
					assert.Contains(t, result, "summary")
					assert.Contains(t, result, "issues")

					summary := result["summary"].(map[string]interface{})
					assert.GreaterOrEqual(t, summary["total_clone_groups"].(float64), 1.0)
				},
			},
		},
		"success_full_output": {
			args: args{
				setupFS: setupClonedFile,
				arguments: map[string]interface{}{
					"output_mode": "full",
				},
			},
			want: want{
				isError: &errFalse,
				check: func(t *testing.T, res *mcplib.CallToolResult) {
					text := mcplib.GetTextFromContent(res.Content[0])
					require.NotEmpty(t, text)
					var result map[string]interface{}
					require.NoError(t, json.Unmarshal([]byte(text), &result))
					assert.Contains(t, result, "clone_groups")
				},
			},
		},
		"min_lines_filters_fragments": {
			args: args{
				setupFS: setupClonedFile,
				arguments: map[string]interface{}{
					"min_lines": float64(50),
				},
			},
			want: want{
				isError: &errFalse,
				check: func(t *testing.T, res *mcplib.CallToolResult) {
					text := mcplib.GetTextFromContent(res.Content[0])
					var result map[string]interface{}
					require.NoError(t, json.Unmarshal([]byte(text), &result))
					summary := result["summary"].(map[string]interface{})
					assert.Equal(t, 0.0, summary["total_clone_groups"].(float64))
				},
			},
		},
		"invalid_clone_types": {
			args: args{
				setupFS: setupClonedFile,
				arguments: map[string]interface{}{
					"clone_types": []interface{}{"type9"},
				},
			},
			want: want{
				isError: &errTrue,
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := runToolTest(
				t,
				tc.args.setupFS,
				tc.args.arguments,
				(*mcp.HandlerSet).HandleDetectClones,
			)

			if tc.want.isError != nil && *tc.want.isError != res.IsError {
				t.Fatalf("IsError = %v, want %v", res.IsError, *tc.want.isError)
			}
			if tc.want.expectPrefix != "" && len(res.Content) > 0 {
				text := mcplib.GetTextFromContent(res.Content[0])
				if !strings.HasPrefix(text, tc.want.expectPrefix) {
					t.Fatalf("error text %q does not start with %q", text, tc.want.expectPrefix)
				}
			}
			if tc.want.check != nil && len(res.Content) > 0 {
				tc.want.check(t, res)
			}
		})
	}
}

func TestHandleCompareFragments(t *testing.T) {
	errTrue := true
	errFalse := false

	identical := "def f(x):\n    return x + 1\n"

	tests := map[string]struct {
		args    args
		isError *bool
		check   func(t *testing.T, res *mcplib.CallToolResult)
	}{
		"invalid_arguments": {
			args:    args{arguments: "bad"},
			isError: &errTrue,
		},
		"fragment_a_missing": {
			args: args{
				arguments: map[string]interface{}{
					"fragment_b": identical,
				},
			},
			isError: &errTrue,
		},
		"fragment_b_missing": {
			args: args{
				arguments: map[string]interface{}{
					"fragment_a": identical,
				},
			},
			isError: &errTrue,
		},
		"identical_fragments": {
			args: args{
				arguments: map[string]interface{}{
					"fragment_a": identical,
					"fragment_b": identical,
				},
			},
			isError: &errFalse,
			check: func(t *testing.T, res *mcplib.CallToolResult) {
				text := mcplib.GetTextFromContent(res.Content[0])
				var out map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(text), &out))
				assert.Equal(t, 1.0, out["similarity"].(float64))
				assert.True(t, strings.HasPrefix(out["verdict"].(string), "Type-1 clone"))
			},
		},
		"unrelated_fragments": {
			args: args{
				arguments: map[string]interface{}{
					"fragment_a": "def f(x):\n    return x + 1\n",
					"fragment_b": "class Empty:\n    pass\n",
				},
			},
			isError: &errFalse,
			check: func(t *testing.T, res *mcplib.CallToolResult) {
				text := mcplib.GetTextFromContent(res.Content[0])
				var out map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(text), &out))
				assert.Contains(t, out, "verdict")
				assert.Less(t, out["similarity"].(float64), 1.0)
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := runToolTest(
				t,
				tc.args.setupFS,
				tc.args.arguments,
				(*mcp.HandlerSet).HandleCompareFragments,
			)

			if tc.isError != nil {
				require.Equal(t, *tc.isError, res.IsError)
			}
			if tc.check != nil && len(res.Content) > 0 {
				tc.check(t, res)
			}
		})
	}
}
