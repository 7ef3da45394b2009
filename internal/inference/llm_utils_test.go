package inference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeport/internal/model"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around", `Sure! Here is the result: {"a": {"b": 2}} Hope that helps.`, `{"a": {"b": 2}}`},
		{"braces in strings", `{"msg": "use { and } carefully"}`, `{"msg": "use { and } carefully"}`},
		{"escaped quotes", `{"msg": "say \"hi\" {now}"}`, `{"msg": "say \"hi\" {now}"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractJSON_Errors(t *testing.T) {
	_, err := extractJSON("no json here")
	assert.Error(t, err)

	_, err = extractJSON(`{"unclosed": 1`)
	assert.Error(t, err)
}

func TestDecodeFileAnalysis(t *testing.T) {
	raw := "```json\n" + `{
  "functions": [{"name": "main", "return_type": "None", "arguments": [{"name": "args", "type": "list"}], "is_static": true}],
  "classes": [{"name": "Worker", "kind": "singleton"}]
}` + "\n```"

	sk, err := decodeFileAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, sk.Functions, 1)
	assert.Equal(t, "main", sk.Functions[0].Name)
	assert.True(t, sk.Functions[0].IsStatic)
	require.Len(t, sk.Classes, 1)
	assert.Equal(t, "singleton", sk.Classes[0].Kind)
}

func TestDecodeClassification(t *testing.T) {
	ct, err := decodeClassification(`{"component_type": "UI"}`)
	require.NoError(t, err)
	assert.Equal(t, model.ComponentUI, ct)

	ct, err = decodeClassification(`The file is clearly data access. {"component_type": "data"}`)
	require.NoError(t, err)
	assert.Equal(t, model.ComponentData, ct)

	_, err = decodeClassification(`{"component_type": "spaghetti"}`)
	assert.Error(t, err)
}

func TestPrompts_TruncateLargeSource(t *testing.T) {
	pb := &PromptBuilder{}
	source := []byte(strings.Repeat("x", maxSourceChars+100))

	prompt := pb.BuildFileAnalysisPrompt("big.py", "python", source)
	assert.Contains(t, prompt, "(truncated)")
	assert.Less(t, len(prompt), maxSourceChars+2000)
}

func TestFactory(t *testing.T) {
	inf, err := NewInferencer(t.Context(), Options{Provider: "none"})
	require.NoError(t, err)
	assert.Equal(t, "none", inf.Name())

	_, err = NewInferencer(t.Context(), Options{Provider: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = NewInferencer(t.Context(), Options{Provider: "openai"})
	assert.Error(t, err, "openai requires an api key")
}
