package protocol

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/outflow-labs/pysandbox/internal/pyerr"
)

func TestEncodeExecutionStringifiesInputs(t *testing.T) {
	t.Parallel()

	c := NewCodec()
	payload, err := c.EncodeExecution("script_ab12", map[string]any{
		"host":    "db01",
		"port":    5432,
		"verbose": true,
	})
	if err != nil {
		t.Fatalf("EncodeExecution: %v", err)
	}

	var got struct {
		ScriptName string            `json:"script_name"`
		Inputs     map[string]string `json:"inputs"`
	}
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.ScriptName != "script_ab12" {
		t.Fatalf("script_name = %q", got.ScriptName)
	}
	want := map[string]string{"host": "db01", "port": "5432", "verbose": "true"}
	if diff := cmp.Diff(want, got.Inputs); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEvaluationCarriesContext(t *testing.T) {
	t.Parallel()

	c := NewCodec()
	payload, err := c.EncodeEvaluation("x + 1", "x = 2", map[string]any{"y": "z"})
	if err != nil {
		t.Fatalf("EncodeEvaluation: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got["expression"] != "x + 1" {
		t.Fatalf("expression = %v", got["expression"])
	}
	if got["envSetup"] != "x = 2" {
		t.Fatalf("envSetup = %v", got["envSetup"])
	}
	ctx, ok := got["context"].(map[string]any)
	if !ok || ctx["y"] != "z" {
		t.Fatalf("context = %v", got["context"])
	}
}

func TestDecodeStrictJSON(t *testing.T) {
	t.Parallel()

	var got map[string]any
	if err := NewCodec().Decode([]byte(`{"a": 1}`), &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["a"] != float64(1) {
		t.Fatalf("a = %v", got["a"])
	}
}

func TestDecodeToleratesSingleQuotes(t *testing.T) {
	t.Parallel()

	var got struct {
		Exception string `json:"exception"`
	}
	if err := NewCodec().Decode([]byte(`{'exception': 'name \'x\' is not defined'}`), &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Exception != "name 'x' is not defined" {
		t.Fatalf("exception = %q", got.Exception)
	}
}

func TestDecodeToleratesTrailingComma(t *testing.T) {
	t.Parallel()

	var got map[string]any
	if err := NewCodec().Decode([]byte(`{"a": "b",}`), &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["a"] != "b" {
		t.Fatalf("a = %v", got["a"])
	}
}

func TestDecodeGarbageIsProtocolError(t *testing.T) {
	t.Parallel()

	var got map[string]any
	err := NewCodec().Decode([]byte("Traceback (most recent call last):"), &got)
	if !pyerr.IsKind(err, pyerr.KindProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestNormalizeSingleQuotes(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{`{'a': 'b'}`, `{"a": "b"}`},
		{`{"keep 'these' quotes": 1}`, `{"keep 'these' quotes": 1}`},
		{`{'say': 'he said "hi"'}`, `{"say": "he said \"hi\""}`},
		{`{'esc': 'it\'s'}`, `{"esc": "it's"}`},
		{`[1, 2, 3]`, `[1, 2, 3]`},
	}
	for _, tc := range cases {
		if got := string(normalizeSingleQuotes([]byte(tc.in))); got != tc.want {
			t.Fatalf("normalizeSingleQuotes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
