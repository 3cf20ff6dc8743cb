package gstd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ResponseCode is the daemon's status code for a request. It is plain data;
// failures carry it inside *Error.
type ResponseCode int

const (
	CodeSuccess ResponseCode = iota
	CodeNullArgument
	CodeBadDescription
	CodeExistingName
	CodeMissingInitialization
	CodeNoPipeline
	CodeNoResource
	CodeNoCreate
	CodeExistingResource
	CodeNoUpdate
	CodeBadCommand
	CodeNoRead
	CodeNoConnection
	CodeBadValue
	CodeStateError
	CodeIpcError
	CodeEventError
	CodeMissingArgument
	CodeMissingName
)

var codeInfo = [...]struct{ name, description string }{
	CodeSuccess:               {"success", "Everything went OK"},
	CodeNullArgument:          {"null-argument", "A mandatory argument was passed NULL"},
	CodeBadDescription:        {"bad-description", "A bad pipeline description was provided"},
	CodeExistingName:          {"existing-name", "The name trying to be used already exists"},
	CodeMissingInitialization: {"missing-initialization", "Missing initialization"},
	CodeNoPipeline:            {"no-pipeline", "The requested pipeline was not found"},
	CodeNoResource:            {"no-resource", "The requested resource was not found"},
	CodeNoCreate:              {"no-create", "Cannot create a resource in the given property"},
	CodeExistingResource:      {"existing-resource", "The resource to create already exists"},
	CodeNoUpdate:              {"no-update", "Cannot update the given property"},
	CodeBadCommand:            {"bad-command", "Unknown command"},
	CodeNoRead:                {"no-read", "Cannot read the given resource"},
	CodeNoConnection:          {"no-connection", "Cannot connect"},
	CodeBadValue:              {"bad-value", "The given value is incorrect"},
	CodeStateError:            {"state-error", "Failed to change state of a pipeline"},
	CodeIpcError:              {"ipc-error", "Failed to start IPC"},
	CodeEventError:            {"event-error", "Unknown event"},
	CodeMissingArgument:       {"missing-argument", "Incomplete arguments in user input"},
	CodeMissingName:           {"missing-name", "Missing name of the pipeline"},
}

// Valid reports whether c is one of the known codes.
func (c ResponseCode) Valid() bool {
	return c >= CodeSuccess && int(c) < len(codeInfo)
}

func (c ResponseCode) String() string {
	if !c.Valid() {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeInfo[c].name
}

// Description returns the human-readable meaning of the code.
func (c ResponseCode) Description() string {
	if !c.Valid() {
		return "Unknown response code"
	}
	return codeInfo[c].description
}

// UnmarshalJSON accepts only the integer form of a known code.
func (c *ResponseCode) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("response code: %w", err)
	}
	code := ResponseCode(n)
	if !code.Valid() {
		return fmt.Errorf("response code %d out of range", n)
	}
	*c = code
	return nil
}

// Envelope is the uniform reply of every daemon endpoint.
type Envelope struct {
	Code        ResponseCode `json:"code"`
	Description string       `json:"description"`
	Response    Payload      `json:"response"`
}

// UnmarshalJSON parses and resolves the payload the same way replies are
// decoded.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	env, err := parseEnvelope(data)
	if err != nil {
		return err
	}
	*e = *env
	return nil
}

// PayloadKind tags which variant a Payload holds.
type PayloadKind int

const (
	PayloadBus PayloadKind = iota + 1
	PayloadProperties
	PayloadProperty
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBus:
		return "bus"
	case PayloadProperties:
		return "properties"
	case PayloadProperty:
		return "property"
	default:
		return "unknown"
	}
}

// Payload is the resolved response body. Exactly one of the pointer fields
// matches Kind; for PayloadBus a nil Bus means no message was available.
type Payload struct {
	Kind       PayloadKind
	Bus        *BusMessage
	Properties *Properties
	Property   *Property
}

func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadProperties:
		return json.Marshal(p.Properties)
	case PayloadProperty:
		return json.Marshal(p.Property)
	default:
		return json.Marshal(p.Bus)
	}
}

// BusMessage is a message popped from a pipeline bus.
type BusMessage struct {
	Type      string `json:"type"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Seqnum    int64  `json:"seqnum"`
	Message   string `json:"message"`
	Debug     string `json:"debug"`
}

var busFields = []string{"type", "source", "timestamp", "seqnum", "message", "debug"}

// Properties is a collection of properties and child nodes. It is the shape
// returned for pipeline listings, graphs, elements and property lists.
type Properties struct {
	Properties []Property `json:"properties"`
	Nodes      []Node     `json:"nodes"`
}

// Node names a child resource such as a pipeline or an element.
type Node struct {
	Name string `json:"name"`
}

// Names returns the node names in order.
func (p *Properties) Names() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name)
	}
	return names
}

// Property is a single named, typed value with its metadata.
type Property struct {
	Name  string        `json:"name"`
	Value PropertyValue `json:"value"`
	Param Param         `json:"param"`
}

// UnmarshalJSON requires name, value and param to be present.
func (p *Property) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("property: %w", err)
	}
	for _, key := range []string{"name", "value", "param"} {
		if _, ok := fields[key]; !ok {
			return fmt.Errorf("property: missing %q", key)
		}
	}
	type plain Property
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("property: %w", err)
	}
	*p = Property(out)
	return nil
}

// Param describes a property.
type Param struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Access      string `json:"access"`
}

// ValueKind tags a PropertyValue.
type ValueKind int

const (
	ValueString ValueKind = iota + 1
	ValueInt
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	default:
		return "none"
	}
}

// PropertyValue holds a string, a 64-bit integer or a boolean.
// Floating point values are not representable.
type PropertyValue struct {
	kind ValueKind
	s    string
	i    int64
	b    bool
}

func StringValue(s string) PropertyValue { return PropertyValue{kind: ValueString, s: s} }
func IntValue(i int64) PropertyValue     { return PropertyValue{kind: ValueInt, i: i} }
func BoolValue(b bool) PropertyValue     { return PropertyValue{kind: ValueBool, b: b} }

// ParsePropertyValue types free text: "true" and "false" become booleans,
// base-10 integers become integers, anything else stays a string.
func ParsePropertyValue(text string) PropertyValue {
	switch text {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return IntValue(i)
	}
	return StringValue(text)
}

func (v PropertyValue) Kind() ValueKind { return v.kind }

func (v PropertyValue) AsString() (string, bool) { return v.s, v.kind == ValueString }
func (v PropertyValue) AsInt() (int64, bool)     { return v.i, v.kind == ValueInt }
func (v PropertyValue) AsBool() (bool, bool)     { return v.b, v.kind == ValueBool }

// String renders the value the way the daemon expects it in a query.
func (v PropertyValue) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

func (v PropertyValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.s)
	case ValueInt:
		return json.Marshal(v.i)
	case ValueBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON tries string, then integer, then boolean.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return errors.New("property value is null")
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*v = IntValue(i)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	return fmt.Errorf("property value %s is not a string, integer or boolean", data)
}

// SeekType selects how a seek position is interpreted.
type SeekType int

const (
	SeekTypeNone SeekType = iota
	SeekTypeAbsolute
	SeekTypeRelative
)

// Format is the unit of seek positions.
type Format int

const (
	FormatUndefined Format = iota
	FormatDefault
	FormatBytes
	FormatTime
	FormatBuffers
	FormatPercent
)

// SeekFlags is a bitmask of seek options.
type SeekFlags int

const (
	SeekFlagNone                      SeekFlags = 0
	SeekFlagFlush                     SeekFlags = 1
	SeekFlagAccurate                  SeekFlags = 2
	SeekFlagKeyUnit                   SeekFlags = 4
	SeekFlagSegment                   SeekFlags = 8
	SeekFlagTrickMode                 SeekFlags = 16
	SeekFlagSnapBefore                SeekFlags = 32
	SeekFlagSnapAfter                 SeekFlags = 64
	SeekFlagSnapNearest               SeekFlags = 96
	SeekFlagTrickModeKeyUnits         SeekFlags = 128
	SeekFlagTrickModeNoAudio          SeekFlags = 256
	SeekFlagTrickModeForwardPredicted SeekFlags = 512
	SeekFlagInstantRateChange         SeekFlags = 1024
)

var seekFlagNames = map[string]SeekFlags{
	"none":                        SeekFlagNone,
	"flush":                       SeekFlagFlush,
	"accurate":                    SeekFlagAccurate,
	"key-unit":                    SeekFlagKeyUnit,
	"segment":                     SeekFlagSegment,
	"trickmode":                   SeekFlagTrickMode,
	"snap-before":                 SeekFlagSnapBefore,
	"snap-after":                  SeekFlagSnapAfter,
	"snap-nearest":                SeekFlagSnapNearest,
	"trickmode-key-units":         SeekFlagTrickModeKeyUnits,
	"trickmode-no-audio":          SeekFlagTrickModeNoAudio,
	"trickmode-forward-predicted": SeekFlagTrickModeForwardPredicted,
	"instant-rate-change":         SeekFlagInstantRateChange,
}

// ParseSeekFlags combines named flags such as "flush" and "key-unit".
func ParseSeekFlags(names ...string) (SeekFlags, error) {
	var flags SeekFlags
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		f, ok := seekFlagNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown seek flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// Has reports whether every bit of f is set.
func (s SeekFlags) Has(f SeekFlags) bool { return s&f == f }

// SeekEvent is the argument of a seek event.
type SeekEvent struct {
	Rate      float64
	Format    Format
	Flags     SeekFlags
	StartType SeekType
	Start     int64
	StopType  SeekType
	Stop      int64
}

// SeekTo returns a flushing, key-unit time seek to position ns at normal
// rate, leaving the stop position unchanged.
func SeekTo(ns int64) SeekEvent {
	return SeekEvent{
		Rate:      1,
		Format:    FormatTime,
		Flags:     SeekFlagFlush | SeekFlagKeyUnit,
		StartType: SeekTypeAbsolute,
		Start:     ns,
		StopType:  SeekTypeNone,
		Stop:      -1,
	}
}

// String renders "rate format flags start_type start stop_type stop".
func (s SeekEvent) String() string {
	return fmt.Sprintf("%s %d %d %d %d %d %d",
		strconv.FormatFloat(s.Rate, 'f', -1, 64),
		int(s.Format), int(s.Flags), int(s.StartType), s.Start, int(s.StopType), s.Stop)
}
