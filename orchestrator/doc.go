// Package orchestrator drives a conversation with a model endpoint that can request tools.
//
// An Orchestrator owns the conversation history and the registry of tools.
// SendMessage sends the turns to the endpoint, and while the model stops with `tool_use`
// it runs the requested tools concurrently and sends their results back,
// until the model produces a final answer.
//
//	o := orchestrator.New(endpoint, orchestrator.WithModel("claude-sonnet-4-5")).
//		RegisterTool(weatherTool)
//	resp, err := o.SendMessage(ctx, llms.NewUserMessage("What is the weather in Paris?"))
package orchestrator
