package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"clarity-score-service/internal/app"
	"clarity-score-service/internal/domain"
	"clarity-score-service/internal/flow"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service                *app.QuizService
	defaultQuestionnaireID string
	logger                 *zap.Logger
	upgrader               websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, defaultQuestionnaireID string, logger *zap.Logger) *WSHandler {
	if defaultQuestionnaireID == "" {
		defaultQuestionnaireID = domain.DefaultQuestionnaireID
	}
	return &WSHandler{
		service:                service,
		defaultQuestionnaireID: defaultQuestionnaireID,
		logger:                 logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Category      domain.Category `json:"category"`
	QuestionIndex int             `json:"questionIndex"`
	Answer        string          `json:"answer"`
}

type namePayload struct {
	Name string `json:"name"`
}

type stepPayload struct {
	Direction string `json:"direction"`
}

type startedPayload struct {
	SessionID  string            `json:"sessionId"`
	Navigation domain.Navigation `json:"navigation"`
	Step       domain.StepState  `json:"step"`
}

type countdownPayload struct {
	Remaining int    `json:"remaining"`
	Label     string `json:"label"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and drives one respondent's quiz.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	questionnaireID := r.URL.Query().Get("questionnaireId")
	if questionnaireID == "" {
		questionnaireID = h.defaultQuestionnaireID
	}
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancelConn := context.WithCancel(r.Context())
	defer cancelConn()

	nav, step, err := h.service.Start(ctx, questionnaireID, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(context.Background(), sessionID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var submits sync.WaitGroup

	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-closeSignals:
			return false
		}
	}

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		<-updates // initial snapshot, already sent as "started"
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !enqueue(outboundMessage[any]{Type: "navigation", Payload: update}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	enqueue(outboundMessage[any]{Type: "started", Payload: startedPayload{SessionID: sessionID, Navigation: nav, Step: step}})

	// A second submit restarts the countdown.
	var cancelCountdown context.CancelFunc

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(errorMessage("invalid answer payload"))
				continue
			}
			_, err := h.service.RecordAnswer(ctx, sessionID, domain.Answer{
				Category:      payload.Category,
				QuestionIndex: payload.QuestionIndex,
				Yes:           payload.Answer == "Yes",
			})
			if err != nil {
				enqueue(errorMessage(err.Error()))
			}
		case "name":
			var payload namePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(errorMessage("invalid name payload"))
				continue
			}
			if _, err := h.service.SetName(ctx, sessionID, payload.Name); err != nil {
				enqueue(errorMessage(err.Error()))
			}
		case "contact":
			var form flow.ContactForm
			if err := json.Unmarshal(inbound.Payload, &form); err != nil {
				enqueue(errorMessage("invalid contact payload"))
				continue
			}
			validation, _, err := h.service.ValidateContact(ctx, sessionID, form)
			if err != nil {
				enqueue(errorMessage(err.Error()))
				continue
			}
			enqueue(outboundMessage[any]{Type: "validation", Payload: validation})
		case "step":
			var payload stepPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || (payload.Direction != "next" && payload.Direction != "prev") {
				enqueue(errorMessage("invalid step payload"))
				continue
			}
			state, err := h.service.Step(ctx, sessionID, payload.Direction == "next")
			if err != nil {
				enqueue(errorMessage(err.Error()))
				continue
			}
			enqueue(outboundMessage[any]{Type: "step", Payload: state})
		case "submit":
			if cancelCountdown != nil {
				cancelCountdown()
			}
			submitCtx, cancelSubmit := context.WithCancel(ctx)
			cancelCountdown = cancelSubmit

			submits.Add(1)
			go func() {
				defer submits.Done()
				final, err := h.service.Submit(submitCtx, sessionID, func(remaining int, label string) {
					enqueue(outboundMessage[any]{Type: "countdown", Payload: countdownPayload{Remaining: remaining, Label: label}})
				})
				if err != nil {
					return
				}
				enqueue(outboundMessage[any]{Type: "redirect", Payload: final})
			}()
		default:
			enqueue(errorMessage("unsupported message type"))
		}
	}

	close(closeSignals)
	cancelConn()
	submits.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
