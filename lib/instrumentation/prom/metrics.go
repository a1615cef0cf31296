package prom

import (
	"gfx.cafe/open/gotoprom"
	"github.com/prometheus/client_golang/prometheus"
)

type HandshakeLabels struct {
	AuthMethod string `label:"auth_method"`
	Result     string `label:"result"`
}

var Handshake struct {
	Completed func(HandshakeLabels) prometheus.Counter   `name:"completed" help:"handshakes completed"`
	Duration  func(HandshakeLabels) prometheus.Histogram `name:"duration_ms" buckets:"1,5,10,30,75,150,300,500,1000,2000,5000" help:"ms from socket open to ready for query"`
}

type CancelLabels struct {
	Result string `label:"result"`
}

var Cancel struct {
	Sent func(CancelLabels) prometheus.Counter `name:"sent" help:"cancel requests sent"`
}

func init() {
	gotoprom.MustInit(&Handshake, "pgdial_handshake", prometheus.Labels{})
	gotoprom.MustInit(&Cancel, "pgdial_cancel", prometheus.Labels{})
}
