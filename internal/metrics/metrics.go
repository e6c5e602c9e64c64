package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolboard", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolboard", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schoolboard", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	StoreFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolboard", Name: "store_fetches_total", Help: "Announcement fetches by scope and result",
	}, []string{"scope", "result"})
	AuthAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolboard", Name: "auth_attempts_total", Help: "Login/signup attempts by result",
	}, []string{"op", "result"})
	ActiveChats = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "schoolboard", Name: "active_chats", Help: "Chats with a live store set",
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, DBPing, StoreFetches, AuthAttempts, ActiveChats)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
