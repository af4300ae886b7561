package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"dpflow/calculator"
	"dpflow/meter"
	"dpflow/model"
)

// 请求和响应的消息类型
const (
	TypeCalc       = "calc"
	TypeCalcMeter  = "calcMeter"
	TypeCalcFixed  = "calcFixed"
	TypeBatch      = "batch"
	TypeMeters     = "meters"
	TypeResult     = "result"
	TypeBatchReply = "batchResult"
	TypeError      = "error"
)

// 按位号计算时前端发送的内容
type MeterReading struct {
	Tag          string  `json:"tag"`
	PressureMPa  float64 `json:"pressure"`
	TemperatureC float64 `json:"temperature"`
	DpKPa        float64 `json:"dp"`
}

// 多孔孔板，流出系数由标定给出
type FixedRequest struct {
	model.FlowRequest
	Coefficient float64 `json:"c"`
}

type ErrorReply struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type BatchItem struct {
	Result *model.SolveResult `json:"result,omitempty"`
	Error  *ErrorReply        `json:"error,omitempty"`
}

// Hub 对应一个 websocket 连接，请求和响应分别在两个 goroutine 中处理
type Hub struct {
	calc    calculator.Calculator
	catalog *meter.Catalog
	conn    *websocket.Conn
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	done  chan struct{}
}

func NewHub(calc calculator.Calculator, catalog *meter.Catalog) *Hub {
	return &Hub{
		calc:    calc,
		catalog: catalog,
		msg:     make(chan model.Msg, 10),
		reply:   make(chan model.Msg, 10),
		done:    make(chan struct{}),
	}
}

func (h *Hub) close() {
	close(h.done)
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithField("type", reply.Type).Error("发送失败: ", err)
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			reply := h.handle(msg)
			select {
			case h.reply <- reply:
			case <-h.done:
				return
			}
		case <-h.done:
			return
		}
	}
}

// handle 处理一条请求，总是返回一条响应
func (h *Hub) handle(msg model.Msg) model.Msg {
	switch msg.Type {
	case TypeCalc:
		var req model.FlowRequest
		if err := json.Unmarshal(msg.Content, &req); err != nil {
			return badRequest(msg.Type, err)
		}
		res, err := h.calc.ComputeFlow(req)
		return resultOrError(res, err)
	case TypeCalcMeter:
		var r MeterReading
		if err := json.Unmarshal(msg.Content, &r); err != nil {
			return badRequest(msg.Type, err)
		}
		m, ok := h.catalog.Get(r.Tag)
		if !ok {
			return errorMsg(calculator.CategoryInvalidInput, fmt.Sprintf("unknown meter %q", r.Tag))
		}
		res, err := h.calc.ComputeFlow(m.Request(r.PressureMPa, r.TemperatureC, r.DpKPa))
		return resultOrError(res, err)
	case TypeCalcFixed:
		var r FixedRequest
		if err := json.Unmarshal(msg.Content, &r); err != nil {
			return badRequest(msg.Type, err)
		}
		res, err := h.calc.ComputeFixedCoefficient(r.FlowRequest, r.Coefficient)
		return resultOrError(res, err)
	case TypeBatch:
		var reqs []model.FlowRequest
		if err := json.Unmarshal(msg.Content, &reqs); err != nil {
			return badRequest(msg.Type, err)
		}
		results := h.calc.ComputeBatch(reqs)
		items := make([]BatchItem, len(results))
		for i := range results {
			if results[i].Err != nil {
				items[i].Error = &ErrorReply{Kind: calculator.Category(results[i].Err), Message: results[i].Err.Error()}
				continue
			}
			items[i].Result = &results[i].Result
		}
		return newMsg(TypeBatchReply, items)
	case TypeMeters:
		list := h.catalog.List()
		if list == nil {
			list = []*meter.Meter{}
		}
		return newMsg(TypeMeters, list)
	}
	log.WithField("type", msg.Type).Warn("no such type")
	return errorMsg(calculator.CategoryInvalidInput, fmt.Sprintf("unknown message type %q", msg.Type))
}

func resultOrError(res model.SolveResult, err error) model.Msg {
	if err != nil {
		return errorMsg(calculator.Category(err), err.Error())
	}
	return newMsg(TypeResult, res)
}

func badRequest(typ string, err error) model.Msg {
	return errorMsg(calculator.CategoryInvalidInput, fmt.Sprintf("bad %s content: %v", typ, err))
}

func errorMsg(kind, message string) model.Msg {
	return newMsg(TypeError, ErrorReply{Kind: kind, Message: message})
}

func newMsg(typ string, content interface{}) model.Msg {
	data, err := json.Marshal(content)
	if err != nil {
		log.WithField("type", typ).Error("err: ", err)
		data, _ = json.Marshal(ErrorReply{Kind: "internal", Message: err.Error()})
		typ = TypeError
	}
	return model.Msg{Type: typ, Content: data}
}
