package tavily_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bibbit-ltd/tool-use/pkg/llmutils"
	"github.com/bibbit-ltd/tool-use/tools"
	"github.com/bibbit-ltd/tool-use/tools/tavily"
	"github.com/cockroachdb/errors"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)

		assert.Equal(t, "What is capital of France", req.Query)

		resp := tavily.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "Test Result", URL: "https://example.com", Content: "Test content", Score: 0.9},
			},
		}
		if req.IncludeAnswer {
			resp.Answer = "Paris"
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	ctx := context.Background()

	_, err := tavily.New("")
	require.EqualError(t, err, "tavily: API key is required")

	tool, err := tavily.New("testkey")
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, tavily.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "web")

	params := tool.Parameters()
	require.NotNil(t, params)
	assert.Equal(t, "object", params.Type)
	assert.Equal(t, []string{"query"}, params.Required)
	query, ok := params.Properties.Get("query")
	require.True(t, ok)
	assert.Equal(t, "string", query.Type)
	assert.Equal(t, "The query to search web.", query.Description)

	def := tool.Definition()
	require.NoError(t, def.Validate())
	assert.Equal(t, tavily.ToolName, def.Name)

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))

	_, err = tool.Call(ctx, `{"query":""}`)
	assert.True(t, errors.Is(err, tools.ErrInvalidInput))

	input := &tavily.SearchRequest{
		Query: "What is capital of France",
	}

	resp, err := tool.Run(ctx, input)
	require.NoError(t, err)
	exp := `ANSWER: Paris
- URL: https://example.com
  TITLE: Test Result
  SCORE: 0.900000
  CONTENT: Test content
`
	assert.Equal(t, exp, resp.String())

	resp2, err := tool.Call(ctx, llmutils.ToJSON(input))
	require.NoError(t, err)
	exp = `{"results":[{"title":"Test Result","url":"https://example.com","content":"Test content","score":0.9}],"answer":"Paris"}`
	assert.Equal(t, exp, resp2)

	out, err := def.Call(ctx, json.RawMessage(llmutils.ToJSON(input)))
	require.NoError(t, err)
	assert.Equal(t, exp, out)
}

func Test_Tool_Real(t *testing.T) {
	apikey := os.Getenv("TAVILY_API_KEY")
	if apikey == "" {
		t.Skip("TAVILY_API_KEY is not set")
	}

	tool, err := tavily.New(apikey)
	require.NoError(t, err)

	resp, err := tool.Call(context.Background(), `{"query":"What is capital of France"}`)
	require.NoError(t, err)
	assert.Contains(t, resp, "Paris")
}
