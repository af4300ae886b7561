package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dpflow/calculator"
	"dpflow/meter"
	"dpflow/model"
)

const testCatalog = `
meters:
  - tag: FT-101
    kind: orifice
    taps: d-d/2
    pipe_diameter: 0.2
    throat_diameter: 0.1
  - tag: FT-102
    kind: venturi
    pipe_diameter: 0.2
    throat_diameter: 0.1
`

const waterRequest = `{
	"kind": {"family": "orifice", "taps": "d-d/2"},
	"process": {"pressure": 1.0, "temperature": 80, "phase": "liquid"},
	"geometry": {"pipe_diameter": 0.2, "throat_diameter": 0.1, "reference_temperature": 20},
	"dp": %DP%
}`

func request(dp string) json.RawMessage {
	return json.RawMessage(strings.Replace(waterRequest, "%DP%", dp, 1))
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	calc, err := calculator.NewCalculator(calculator.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := meter.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	return NewHub(calc, catalog)
}

func decodeResult(t *testing.T, msg model.Msg) model.SolveResult {
	t.Helper()
	if msg.Type != TypeResult {
		t.Fatalf("reply type = %q, content %s", msg.Type, msg.Content)
	}
	var res model.SolveResult
	if err := json.Unmarshal(msg.Content, &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func decodeError(t *testing.T, msg model.Msg) ErrorReply {
	t.Helper()
	if msg.Type != TypeError {
		t.Fatalf("reply type = %q, want error", msg.Type)
	}
	var e ErrorReply
	if err := json.Unmarshal(msg.Content, &e); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestHub_Calc(t *testing.T) {
	h := newTestHub(t)
	res := decodeResult(t, h.handle(model.Msg{Type: TypeCalc, Content: request("50")}))
	if res.DischargeCoefficient < 0.60 || res.DischargeCoefficient > 0.62 || !(res.MassFlow > 0) {
		t.Errorf("result = %+v", res)
	}
	if res.Unit != model.KgPerHour {
		t.Errorf("unit = %q", res.Unit)
	}

	tests := []struct {
		name    string
		content json.RawMessage
		kind    string
	}{
		{"ratio below 0.75", request("300"), calculator.CategoryOutOfValidityRange},
		{"negative dp", request("-1"), calculator.CategoryInvalidInput},
		{"bad json", json.RawMessage(`{"dp": "abc"}`), calculator.CategoryInvalidInput},
	}
	for _, tt := range tests {
		e := decodeError(t, h.handle(model.Msg{Type: TypeCalc, Content: tt.content}))
		if e.Kind != tt.kind {
			t.Errorf("%s: kind = %q, want %q (%s)", tt.name, e.Kind, tt.kind, e.Message)
		}
	}
}

func TestHub_CalcMeter(t *testing.T) {
	h := newTestHub(t)
	byTag := h.handle(model.Msg{Type: TypeCalcMeter, Content: json.RawMessage(`{"tag":"FT-101","pressure":1.0,"temperature":80,"dp":50}`)})
	direct := h.handle(model.Msg{Type: TypeCalc, Content: request("50")})
	if decodeResult(t, byTag) != decodeResult(t, direct) {
		t.Errorf("meter result %s, direct %s", byTag.Content, direct.Content)
	}

	e := decodeError(t, h.handle(model.Msg{Type: TypeCalcMeter, Content: json.RawMessage(`{"tag":"FT-999","pressure":1.0,"temperature":80,"dp":50}`)}))
	if e.Kind != calculator.CategoryInvalidInput {
		t.Errorf("unknown tag: kind = %q", e.Kind)
	}
}

func TestHub_CalcFixedAndBatch(t *testing.T) {
	h := newTestHub(t)
	content := strings.Replace(string(request("50")), "{", `{"c": 0.61,`, 1)
	res := decodeResult(t, h.handle(model.Msg{Type: TypeCalcFixed, Content: json.RawMessage(content)}))
	if res.DischargeCoefficient != 0.61 || res.Iterations != 0 {
		t.Errorf("fixed result = %+v", res)
	}

	batch := json.RawMessage("[" + string(request("20")) + "," + string(request("300")) + "]")
	reply := h.handle(model.Msg{Type: TypeBatch, Content: batch})
	if reply.Type != TypeBatchReply {
		t.Fatalf("reply type = %q", reply.Type)
	}
	var items []BatchItem
	if err := json.Unmarshal(reply.Content, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Result == nil || items[1].Error == nil {
		t.Fatalf("items = %s", reply.Content)
	}
	if items[1].Error.Kind != calculator.CategoryOutOfValidityRange {
		t.Errorf("second item kind = %q", items[1].Error.Kind)
	}
}

func TestHub_MetersAndUnknown(t *testing.T) {
	h := newTestHub(t)
	reply := h.handle(model.Msg{Type: TypeMeters})
	if reply.Type != TypeMeters {
		t.Fatalf("reply type = %q", reply.Type)
	}
	var list []struct {
		Tag string `json:"tag"`
	}
	if err := json.Unmarshal(reply.Content, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Tag != "FT-101" || list[1].Tag != "FT-102" {
		t.Errorf("meters = %s", reply.Content)
	}

	e := decodeError(t, h.handle(model.Msg{Type: "start"}))
	if e.Kind != calculator.CategoryInvalidInput {
		t.Errorf("unknown type: kind = %q", e.Kind)
	}
}

func TestServer_WebSocket(t *testing.T) {
	h := newTestHub(t)
	s := NewServer("", websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}, h.calc, h.catalog)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// 同一连接上的响应按请求顺序返回
	if err := conn.WriteJSON(model.Msg{Type: TypeCalc, Content: request("50")}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(model.Msg{Type: TypeCalc, Content: request("300")}); err != nil {
		t.Fatal(err)
	}
	var reply model.Msg
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	decodeResult(t, reply)
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if e := decodeError(t, reply); e.Kind != calculator.CategoryOutOfValidityRange {
		t.Errorf("kind = %q", e.Kind)
	}
}
