package gstd

import (
	"encoding/json"
	"testing"
)

func TestResponseCode_Strings(t *testing.T) {
	tests := []struct {
		code ResponseCode
		name string
	}{
		{CodeSuccess, "success"},
		{CodeExistingName, "existing-name"},
		{CodeNoPipeline, "no-pipeline"},
		{CodeMissingName, "missing-name"},
		{ResponseCode(19), "code(19)"},
		{ResponseCode(-1), "code(-1)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.name {
			t.Errorf("%d.String() = %q, want %q", int(tt.code), got, tt.name)
		}
	}
	if CodeStateError.Description() != "Failed to change state of a pipeline" {
		t.Errorf("description = %q", CodeStateError.Description())
	}
}

func TestResponseCode_JSONIsInteger(t *testing.T) {
	b, err := json.Marshal(CodeBadValue)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "13" {
		t.Errorf("marshal = %s, want 13", b)
	}
	var c ResponseCode
	if err := json.Unmarshal([]byte("18"), &c); err != nil || c != CodeMissingName {
		t.Errorf("unmarshal 18 = %v, %v", c, err)
	}
	if err := json.Unmarshal([]byte("19"), &c); err == nil {
		t.Error("19 should be rejected")
	}
}

func TestPropertyValue_DecodeOrder(t *testing.T) {
	tests := []struct {
		raw  string
		kind ValueKind
		text string
	}{
		{`"true"`, ValueString, "true"},
		{`"42"`, ValueString, "42"},
		{`42`, ValueInt, "42"},
		{`-9223372036854775808`, ValueInt, "-9223372036854775808"},
		{`true`, ValueBool, "true"},
		{`false`, ValueBool, "false"},
	}
	for _, tt := range tests {
		var v PropertyValue
		if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if v.Kind() != tt.kind || v.String() != tt.text {
			t.Errorf("%s -> %s %q, want %s %q", tt.raw, v.Kind(), v.String(), tt.kind, tt.text)
		}
	}
	for _, raw := range []string{`1.5`, `null`, `{}`, `[]`, `1e3`} {
		var v PropertyValue
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			t.Errorf("%s should not decode, got %s", raw, v.Kind())
		}
	}
}

func TestPropertyValue_MarshalKeepsKind(t *testing.T) {
	tests := []struct {
		v    PropertyValue
		want string
	}{
		{StringValue("ball"), `"ball"`},
		{IntValue(7), `7`},
		{BoolValue(true), `true`},
		{PropertyValue{}, `null`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.v)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != tt.want {
			t.Errorf("marshal = %s, want %s", b, tt.want)
		}
	}
}

func TestParsePropertyValue(t *testing.T) {
	tests := []struct {
		in   string
		kind ValueKind
	}{
		{"true", ValueBool},
		{"false", ValueBool},
		{"True", ValueString},
		{"12", ValueInt},
		{"-3", ValueInt},
		{"1.5", ValueString},
		{"ball", ValueString},
		{"", ValueString},
	}
	for _, tt := range tests {
		if got := ParsePropertyValue(tt.in).Kind(); got != tt.kind {
			t.Errorf("ParsePropertyValue(%q) = %s, want %s", tt.in, got, tt.kind)
		}
	}
}

func TestEnvelope_JSONRoundTripKeepsVariant(t *testing.T) {
	in := `{"code":0,"description":"Success","response":{"properties":[],"nodes":[{"name":"p"}]}}`
	var env Envelope
	if err := json.Unmarshal([]byte(in), &env); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var again Envelope
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-decode %s: %v", out, err)
	}
	if again.Response.Kind != PayloadProperties || again.Response.Properties.Names()[0] != "p" {
		t.Errorf("round trip = %+v", again.Response)
	}
}

func TestSeekEvent_String(t *testing.T) {
	tests := []struct {
		seek SeekEvent
		want string
	}{
		{SeekTo(5_000_000_000), "1 3 5 1 5000000000 0 -1"},
		{SeekEvent{Rate: 2.5, Format: FormatBytes, Flags: SeekFlagAccurate | SeekFlagSegment, StartType: SeekTypeRelative, Start: 10, StopType: SeekTypeAbsolute, Stop: 20}, "2.5 2 10 2 10 1 20"},
		{SeekEvent{Rate: -1}, "-1 0 0 0 0 0 0"},
	}
	for _, tt := range tests {
		if got := tt.seek.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseSeekFlags(t *testing.T) {
	flags, err := ParseSeekFlags("flush", " Key-Unit ", "")
	if err != nil {
		t.Fatal(err)
	}
	if flags != SeekFlagFlush|SeekFlagKeyUnit {
		t.Errorf("flags = %d", flags)
	}
	if !flags.Has(SeekFlagFlush) || flags.Has(SeekFlagAccurate) {
		t.Errorf("Has mismatch for %d", flags)
	}
	if SeekFlagSnapNearest != SeekFlagSnapBefore|SeekFlagSnapAfter {
		t.Error("snap-nearest should combine before and after")
	}
	if _, err := ParseSeekFlags("sideways"); err == nil {
		t.Error("expected error for unknown flag")
	}
}
