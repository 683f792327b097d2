package ollama

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOptions_NilFieldsOmitted(t *testing.T) {
	temp := 0.0 // explicit zero is a real setting, not an absence
	req := ChatRequest{
		Model:   "m",
		Options: &Options{Temperature: &temp},
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)

	if !strings.Contains(body, `"temperature":0`) {
		t.Errorf("explicit zero temperature dropped: %s", body)
	}
	for _, absent := range []string{"seed", "top_p", "num_ctx"} {
		if strings.Contains(body, absent) {
			t.Errorf("unset option %q serialized: %s", absent, body)
		}
	}
}

func TestOptions_IsZero(t *testing.T) {
	var o *Options
	if !o.IsZero() {
		t.Error("nil options should be zero")
	}
	if !(&Options{}).IsZero() {
		t.Error("empty options should be zero")
	}
	n := 0
	if (&Options{Seed: &n}).IsZero() {
		t.Error("explicit seed 0 is a setting, not zero")
	}
}
