package service

import (
	"challenge_hub/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var friendshipOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "friendship_operations_total",
		Help: "Friendship state machine operations by outcome",
	},
	[]string{"operation", "result"},
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = utils.ErrorCode(err)
		if result == "" {
			result = utils.ErrCodeStorageFailure
		}
	}
	friendshipOps.WithLabelValues(operation, result).Inc()
}
