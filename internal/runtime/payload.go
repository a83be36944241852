package runtime

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/velora-app/flowengine/pkg/domain"
)

// Typed payloads for each node variant. Node data arrives as loosely-typed
// maps from the authoring tool; decoding into these structs keeps
// missing-field bugs at the boundary instead of surfacing as empty text
// mid-conversation.

type messageData struct {
	Message string `mapstructure:"message"`
}

type aiResponseData struct {
	Prompt           string `mapstructure:"prompt"`
	ResponseVariable string `mapstructure:"responseVariableName"`
}

type inputData struct {
	Question string `mapstructure:"question"`
	Variable string `mapstructure:"variableName"`
}

type conditionData struct {
	Condition string   `mapstructure:"condition"`
	Options   []string `mapstructure:"options"`
}

type ttsData struct {
	Text         string `mapstructure:"text"`
	TextVariable string `mapstructure:"textVariableName"`
}

type sttData struct {
	Prompt   string `mapstructure:"prompt"`
	Variable string `mapstructure:"variableName"`
}

type endData struct {
	Message string `mapstructure:"message"`
}

type actionData struct {
	Action        string `mapstructure:"action"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	RequireReason bool   `mapstructure:"require_reason"`

	// Variable names for the attempt counter and the user-provided reason.
	// Default to "<action>Count" and "<action>Reason".
	CounterVariable string `mapstructure:"attempt_counter"`
	ReasonVariable  string `mapstructure:"reason_variable"`

	// Legacy alias kept for graphs authored before max_attempts was
	// generalized across action types.
	MaxRescheduleAttempts int `mapstructure:"max_reschedule_attempts"`
}

func (d actionData) limit() int {
	if d.MaxAttempts > 0 {
		return d.MaxAttempts
	}
	return d.MaxRescheduleAttempts
}

func (d actionData) counterVar() string {
	if d.CounterVariable != "" {
		return d.CounterVariable
	}
	return d.Action + "Count"
}

func (d actionData) reasonVar() string {
	if d.ReasonVariable != "" {
		return d.ReasonVariable
	}
	return d.Action + "Reason"
}

type pacingData struct {
	DelayMillis int `mapstructure:"delay"`
}

// decodeData fills out from the node's raw data map. Unknown keys are
// ignored and missing keys leave zero values; callers apply documented
// defaults instead of failing the session.
func decodeData(node domain.Node, out any) error {
	if node.Data == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(node.Data)
}

// stripDollar removes the leading "$" some authoring tools prefix variable
// references with.
func stripDollar(name string) string {
	return strings.TrimPrefix(name, "$")
}
