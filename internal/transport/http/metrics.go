package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_started_total",
		Help: "Number of quiz sessions started via login.",
	})

	answersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_answers_submitted_total",
		Help: "Number of answers submitted, by result.",
	}, []string{"result"})

	chatMessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_chat_messages_posted_total",
		Help: "Number of chat messages accepted.",
	})
)
