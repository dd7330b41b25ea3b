// Package metrics は認証処理の Prometheus メトリクスを提供します。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はアプリ専用レジストリと各カウンターを保持します。
// nil の Recorder に対する呼び出しは何もしません。
type Recorder struct {
	registry      *prometheus.Registry
	operations    *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

// NewRecorder は Recorder を作成し、Go ランタイムとプロセスのコレクターも登録します。
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_operations_total",
		Help: "Signup/login/logout attempts by outcome.",
	}, []string{"operation", "result"})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_verifications_total",
		Help: "Session token checks by outcome.",
	}, []string{"result"})

	reg.MustRegister(
		operations,
		verifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Recorder{
		registry:      reg,
		operations:    operations,
		verifications: verifications,
	}
}

// ObserveOperation は operation（signup, login, logout）の結果を数えます。
func (r *Recorder) ObserveOperation(operation, result string) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, result).Inc()
}

// ObserveVerification はトークン検証の結果を数えます。
func (r *Recorder) ObserveVerification(result string) {
	if r == nil {
		return
	}
	r.verifications.WithLabelValues(result).Inc()
}

// Handler は /metrics 用のハンドラーを返します。
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
