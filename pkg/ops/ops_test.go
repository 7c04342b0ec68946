package ops

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/flowgraphs/flowir/pkg/flow"
)

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		op   flow.Op
	}{
		{"Module", Module{}},
		{"Input", Input{Types: Vals("bit", "qubit")}},
		{"Output", Output{Types: Vals("bit")}},
		{"DFG", DFG{Sig: Sig(Vals("qubit"), Vals("qubit", "bit"))}},
		{"Noop", Noop{Ty: Val("angle")}},
		{"Custom", Custom{
			OpName:    "H",
			Extension: "quantum",
			Sig:       Sig(Vals("qubit"), Vals("qubit")),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.op.Serialize(flow.Node{}, flow.Node{}, nil)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			back, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			raw2, err := back.Serialize(flow.Node{}, flow.Node{}, nil)
			if err != nil {
				t.Fatalf("re-Serialize: %v", err)
			}
			if string(raw) != string(raw2) {
				t.Fatalf("payloads differ:\n%s\n%s", raw, raw2)
			}
		})
	}
}

func TestDecodeUnknownOp(t *testing.T) {
	if _, err := Decode(json.RawMessage(`{"op":"Teleport"}`)); err == nil {
		t.Fatal("unknown operation accepted")
	} else if !strings.Contains(err.Error(), "Teleport") {
		t.Fatalf("error does not name the operation: %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"NotJSON", `{`},
		{"NoopWithoutType", `{"op":"Noop"}`},
		{"NoopTooManyTypes", `{"op":"Noop","input":["a","b"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(json.RawMessage(tt.raw)); err == nil {
				t.Fatalf("Decode(%s) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestCustomName(t *testing.T) {
	op := Custom{OpName: "CX", Extension: "quantum"}
	if got := op.Name(); got != "CX" {
		t.Fatalf("Name() = %q, want CX", got)
	}
}

func TestPortClassification(t *testing.T) {
	var n flow.Node
	op := DFG{Sig: Sig(Vals("qubit", "bit"), Vals("qubit"))}

	tests := []struct {
		name     string
		port     flow.Port
		wantKind flow.Kind
		wantType string
	}{
		{"TypedIncoming", n.Inp(1), flow.KindValue, "bit"},
		{"TypedOutgoing", n.Out(0), flow.KindValue, "qubit"},
		{"OrderPort", n.Inp(-1), flow.KindOrder, ""},
		{"PastArity", n.Out(5), flow.KindOrder, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := op.PortKind(tt.port); got != tt.wantKind {
				t.Fatalf("PortKind(%v) = %v, want %v", tt.port, got, tt.wantKind)
			}
			ty, ok := op.PortType(tt.port)
			if tt.wantType == "" {
				if ok {
					t.Fatalf("PortType(%v) = %v, want none", tt.port, ty)
				}
				return
			}
			if !ok || ty.TypeName() != tt.wantType {
				t.Fatalf("PortType(%v) = %v ok=%v, want %q", tt.port, ty, ok, tt.wantType)
			}
		})
	}
}

func TestModuleHasNoValuePorts(t *testing.T) {
	var n flow.Node
	op := Module{}
	for _, p := range []flow.Port{n.Inp(0), n.Out(0), n.Inp(-1)} {
		if got := op.PortKind(p); got != flow.KindOrder {
			t.Fatalf("PortKind(%v) = %v, want KindOrder", p, got)
		}
		if _, ok := op.PortType(p); ok {
			t.Fatalf("PortType(%v) returned a type", p)
		}
	}
}

func TestValsEmpty(t *testing.T) {
	if got := Vals(); len(got) != 0 {
		t.Fatalf("Vals() = %v, want empty", got)
	}
}
