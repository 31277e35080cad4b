package orchestrator_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bibbit-ltd/tool-use/orchestrator"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/bibbit-ltd/tool-use/tools"
)

// scriptedEndpoint replies with the tool invocation first, then with the final answer
type scriptedEndpoint struct {
	calls int
}

func (e *scriptedEndpoint) GetProviderType() llms.ProviderType {
	return llms.ProviderAnthropic
}

func (e *scriptedEndpoint) CreateMessage(_ context.Context, req *llms.Request) (*llms.Response, error) {
	e.calls++
	if e.calls == 1 {
		return toolUseResponse(toolUse("toolu_01", "get_time", `{"city":"Tokyo"}`)), nil
	}
	result := req.Messages[len(req.Messages)-1].ToolResults()[0]
	return textResponse("It is " + result.Content + " in Tokyo."), nil
}

func ExampleOrchestrator_SendMessage() {
	getTime := &tools.Definition{
		Name:        "get_time",
		Description: "Returns the local time in a city",
		InputSchema: emptyObject,
		Handler: func(_ context.Context, input json.RawMessage) (any, error) {
			return "10:30", nil
		},
	}

	o := orchestrator.New(&scriptedEndpoint{}).RegisterTool(getTime)

	resp, err := o.SendMessage(context.Background(), llms.NewUserMessage("What time is it in Tokyo?"))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(resp.StopReason)
	fmt.Println(resp.Text())
	// Output:
	// end_turn
	// It is 10:30 in Tokyo.
}
