package prompts_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/bibbit-ltd/tool-use/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate(t *testing.T) {
	t.Parallel()

	tmpl, err := prompts.New("system", `You are {{ .name | title }}, a {{ .role }}. Use {{ join ", " .tools }}.`)
	require.NoError(t, err)
	assert.Equal(t, "system", tmpl.Name())

	out, err := tmpl.Render(map[string]any{
		"name":  "weather bot",
		"role":  "forecaster",
		"tools": []string{"get_weather", "web_search"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are Weather Bot, a forecaster. Use get_weather, web_search.", out)

	_, err = tmpl.Render(map[string]any{"name": "bot"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to render prompt "system"`)

	_, err = prompts.New("broken", "{{ .name ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to parse prompt "broken"`)

	assert.Panics(t, func() { prompts.Must("broken", "{{ end }}") })
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := prompts.Render("Be brief.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", out)

	out, err = prompts.Render(`Today is {{ now | date "2006" }}.`, nil)
	require.NoError(t, err)
	year := strconv.Itoa(time.Now().Year())
	assert.Contains(t, []string{"Today is " + year + ".", "Today is " + strconv.Itoa(time.Now().Year()-1) + "."}, out)

	out, err = prompts.Render(`Answer in {{ .lang | default "English" }}.`, map[string]any{"lang": ""})
	require.NoError(t, err)
	assert.Equal(t, "Answer in English.", out)
}
