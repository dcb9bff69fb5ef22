package installer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// installStepsTotal 安装步骤执行次数
var installStepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "enteacher_install_steps_total",
		Help: "Total number of installer steps by result",
	},
	[]string{"step", "result"},
)

func observeStep(step Step, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	installStepsTotal.WithLabelValues(string(step), result).Inc()
}
