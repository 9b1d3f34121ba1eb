package metrics

import (
	"errors"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hudwiz/go-rtlink/pkg/lib/log"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

var logger = log.Logger("core/metrics")

const namespace = "rtlink"

// Collector 基于 Prometheus 的指标收集器
type Collector struct {
	sessionsAccepted prometheus.Counter
	sessionsClosed   *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
	framesAcked      *prometheus.CounterVec
	framesRejected   *prometheus.CounterVec
	decodeErrors     *prometheus.CounterVec
	echoMessages     prometheus.Counter
	negotiations     *prometheus.CounterVec

	inRate  *RateMeter
	outRate *RateMeter
}

// NewRegistry 创建带进程与运行时指标的 Registry
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New 创建收集器并注册到 reg
//
// 同一个 reg 上重复创建时复用已注册的指标，多个收集器写入同一组序列。
func New(reg prometheus.Registerer) *Collector {
	return NewWithClock(reg, clock.New())
}

// NewWithClock 使用指定时钟创建收集器
func NewWithClock(reg prometheus.Registerer, clk clock.Clock) *Collector {
	c := &Collector{
		sessionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_accepted_total",
			Help:      "Total number of accepted WebTransport sessions",
		}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Total number of closed WebTransport sessions",
		}, []string{"reason"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of WebTransport sessions being serviced",
		}),
		framesAcked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_acked_total",
			Help:      "Total number of frames acknowledged with ACK",
		}, []string{"channel"}),
		framesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rejected_total",
			Help:      "Total number of frames rejected for exceeding the size limit",
		}, []string{"channel"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of frames that were not valid UTF-8",
		}, []string{"channel"}),
		echoMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echo_messages_total",
			Help:      "Total number of WebSocket messages echoed",
		}),
		negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiations_total",
			Help:      "Client transport negotiations by outcome",
		}, []string{"kind", "result"}),
		inRate:  NewRateMeter(clk),
		outRate: NewRateMeter(clk),
	}

	c.sessionsAccepted = register(reg, c.sessionsAccepted)
	c.sessionsClosed = register(reg, c.sessionsClosed)
	c.sessionsActive = register(reg, c.sessionsActive)
	c.framesAcked = register(reg, c.framesAcked)
	c.framesRejected = register(reg, c.framesRejected)
	c.decodeErrors = register(reg, c.decodeErrors)
	c.echoMessages = register(reg, c.echoMessages)
	c.negotiations = register(reg, c.negotiations)

	rates := register(reg, newRateCollector(c.inRate, c.outRate))
	c.inRate, c.outRate = rates.in, rates.out
	return c
}

// SessionAccepted 记录一个新会话
func (c *Collector) SessionAccepted() {
	if c == nil {
		return
	}
	c.sessionsAccepted.Inc()
	c.sessionsActive.Inc()
}

// SessionClosed 记录会话关闭及原因
func (c *Collector) SessionClosed(reason string) {
	if c == nil {
		return
	}
	c.sessionsClosed.WithLabelValues(reason).Inc()
	c.sessionsActive.Dec()
}

// FrameAcked 记录一个已回复 ACK 的帧
func (c *Collector) FrameAcked(ch Channel, size int) {
	if c == nil {
		return
	}
	c.framesAcked.WithLabelValues(string(ch)).Inc()
	c.inRate.Add(int64(size))
	c.outRate.Add(3)
}

// FrameRejected 记录一个超长被拒绝的帧
func (c *Collector) FrameRejected(ch Channel) {
	if c == nil {
		return
	}
	c.framesRejected.WithLabelValues(string(ch)).Inc()
}

// DecodeError 记录一次 UTF-8 解码失败
func (c *Collector) DecodeError(ch Channel) {
	if c == nil {
		return
	}
	c.decodeErrors.WithLabelValues(string(ch)).Inc()
}

// EchoMessage 记录一条 WebSocket 回显消息
func (c *Collector) EchoMessage(size int) {
	if c == nil {
		return
	}
	c.echoMessages.Inc()
	c.inRate.Add(int64(size))
	c.outRate.Add(int64(size))
}

// Negotiated 记录一次客户端协商结果
func (c *Collector) Negotiated(kind types.TransportKind, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	c.negotiations.WithLabelValues(kind.String(), result).Inc()
}

// Bandwidth 返回吞吐快照
func (c *Collector) Bandwidth() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		TotalIn:  c.inRate.Total(),
		TotalOut: c.outRate.Total(),
		RateIn:   c.inRate.Rate(),
		RateOut:  c.outRate.Rate(),
	}
}

// register 注册 c；已注册过同一指标时返回已有的那个
//
// 与其它指标描述冲突时保留未注册的 c，只记录告警。
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	logger.Warn("指标注册失败", "error", err)
	return c
}

// ============================================================================
//                              吞吐 gauge
// ============================================================================

// rateCollector 导出两个 RateMeter 的当前速率
//
// 作为独立 Collector 注册，重复注册时可以取回已有的 RateMeter。
type rateCollector struct {
	in, out *RateMeter

	inDesc  *prometheus.Desc
	outDesc *prometheus.Desc
}

func newRateCollector(in, out *RateMeter) *rateCollector {
	return &rateCollector{
		in:  in,
		out: out,
		inDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bytes_in_per_second"),
			"Average inbound payload bytes per second over the last minute", nil, nil),
		outDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bytes_out_per_second"),
			"Average outbound payload bytes per second over the last minute", nil, nil),
	}
}

// Describe 实现 prometheus.Collector
func (r *rateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.inDesc
	ch <- r.outDesc
}

// Collect 实现 prometheus.Collector
func (r *rateCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(r.inDesc, prometheus.GaugeValue, r.in.Rate())
	ch <- prometheus.MustNewConstMetric(r.outDesc, prometheus.GaugeValue, r.out.Rate())
}
