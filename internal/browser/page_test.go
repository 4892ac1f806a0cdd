package browser

import (
	"encoding/json"
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestEvalPayload(t *testing.T) {
	if _, err := evalPayload(nil); err == nil {
		t.Fatal("expected error for a nil evaluate result")
	}

	var res proto.RuntimeRemoteObject
	if err := json.Unmarshal([]byte(`{"type":"object","value":[{"column":"wed_3"}]}`), &res); err != nil {
		t.Fatalf("build remote object: %v", err)
	}

	raw, err := evalPayload(&res)
	if err != nil {
		t.Fatalf("evalPayload: %v", err)
	}
	if string(raw) != `[{"column":"wed_3"}]` {
		t.Errorf("unexpected payload %s", raw)
	}
}
