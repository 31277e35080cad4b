package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsEndpointRequests is base for counter metric for total requests sent to the model endpoint
	StatsEndpointRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_requests",
		Help:         "stats_endpoint_requests provides total requests sent to the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsEndpointErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_errors",
		Help:         "stats_endpoint_errors provides total failed requests to the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsEndpointMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_messages_sent",
		Help:         "stats_endpoint_messages_sent provides total messages sent to the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsEndpointBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_bytes_sent",
		Help:         "stats_endpoint_bytes_sent provides total content bytes sent to the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsEndpointBytesReceived = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_bytes_received",
		Help:         "stats_endpoint_bytes_received provides total content bytes received from the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsEndpointInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_input_tokens",
		Help:         "stats_endpoint_input_tokens provides total input tokens reported by the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsEndpointOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_endpoint_output_tokens",
		Help:         "stats_endpoint_output_tokens provides total output tokens reported by the model endpoint",
		RequiredTags: []string{"orchestrator", "model"},
	}

	StatsExchangesSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_exchanges_succeeded",
		Help:         "stats_exchanges_succeeded provides total exchanges completed with a final answer",
		RequiredTags: []string{"orchestrator"},
	}

	StatsExchangesFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_exchanges_failed",
		Help:         "stats_exchanges_failed provides total exchanges failed",
		RequiredTags: []string{"orchestrator"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfExchange = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_exchange",
		Help:         "perf_exchange provides duration of a full exchange, including tool round trips",
		RequiredTags: []string{"orchestrator"},
	}

	PerfEndpointCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_endpoint_call",
		Help:         "perf_endpoint_call provides duration of a single model endpoint call",
		RequiredTags: []string{"orchestrator", "model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfEndpointCall,
	&PerfExchange,
	&PerfToolCall,
	&StatsEndpointBytesReceived,
	&StatsEndpointBytesSent,
	&StatsEndpointErrors,
	&StatsEndpointInputTokens,
	&StatsEndpointMessagesSent,
	&StatsEndpointOutputTokens,
	&StatsEndpointRequests,
	&StatsExchangesFailed,
	&StatsExchangesSucceeded,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
