package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"dpflow/calculator"
	"dpflow/fluid"
	"dpflow/meter"
	"dpflow/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var confFile = flag.String("conf", "conf/config.ini", "配置文件")

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	file, err := ini.Load(*confFile)
	if err != nil {
		log.WithField("file", *confFile).Warn("读取配置文件失败，使用默认配置: ", err)
		file = ini.Empty()
	}
	if level, err := log.ParseLevel(file.Section("log").Key("Level").MustString("info")); err == nil {
		log.SetLevel(level)
	}

	var props fluid.Provider
	if path := file.Section("fluid").Key("TableFile").String(); path != "" {
		t, err := fluid.LoadFile(path)
		if err != nil {
			log.Fatal("加载物性表失败: ", err)
		}
		props = t
	}
	calc, err := calculator.NewCalculator(calculator.LoadConfig(file), props)
	if err != nil {
		log.Fatal("初始化计算器失败: ", err)
	}

	var catalog *meter.Catalog
	if path := file.Section("meter").Key("File").String(); path != "" {
		if catalog, err = meter.LoadFile(path); err != nil {
			log.Fatal("加载仪表台账失败: ", err)
		}
	}

	upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	s := server.NewServer(file.Section("server").Key("Addr").MustString(":9000"), upgrader, calc, catalog)
	if err := s.Serve(); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
