package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"dpflow/calculator"
	"dpflow/meter"
	"dpflow/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	calc     calculator.Calculator
	catalog  *meter.Catalog
}

func NewServer(addr string, upgrader websocket.Upgrader, calc calculator.Calculator, catalog *meter.Catalog) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		calc:     calc,
		catalog:  catalog,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: ", err)
		return
	}
	defer conn.Close()

	hub := NewHub(s.calc, s.catalog)
	hub.conn = conn
	defer hub.close()
	go hub.handleRequest()
	go hub.handleResponse()

	log.WithField("remote", conn.RemoteAddr().String()).Info("连接建立")
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("err: ", err)
			}
			log.WithField("remote", conn.RemoteAddr().String()).Info("连接断开")
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("服务启动")
	return http.ListenAndServe(s.addr, s.Handler())
}
