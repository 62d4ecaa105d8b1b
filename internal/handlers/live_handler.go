package handlers

import (
	"log"
	"net/http"
	"time"

	"quiz-session-service/internal/controller"
	"quiz-session-service/internal/interaction"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	tickPeriod = time.Second
)

// liveMessage is one frame on the live stream.
type liveMessage struct {
	Type       string                 `json:"type"` // snapshot | transition | cue | tick
	Snapshot   *controller.Snapshot   `json:"snapshot,omitempty"`
	Transition *controller.Transition `json:"transition,omitempty"`
	Cue        *interaction.Cue       `json:"cue,omitempty"`
	Remaining  int                    `json:"remaining_seconds,omitempty"`
}

// Live upgrades to a WebSocket and streams controller transitions, feedback
// cues and countdown ticks until the session completes or the client leaves.
func (h *SessionHandler) Live(c *gin.Context) {
	ctrl, err := h.resolve(c)
	if err != nil {
		fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("live upgrade failed: %v", err)
		return
	}

	transitions, unsubscribe := ctrl.Subscribe()
	feedback := interaction.NewFeedbackDispatcher(ctrl)

	done := make(chan struct{})
	// Read pump: the client sends nothing meaningful; reading detects close.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		unsubscribe()
		feedback.Stop()
		conn.Close()
	}()

	write := func(msg liveMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			return false
		}
		return true
	}

	snap := ctrl.Snapshot()
	if !write(liveMessage{Type: "snapshot", Snapshot: &snap}) {
		return
	}

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	timed := snap.RemainingSeconds > 0

	for {
		select {
		case t, ok := <-transitions:
			if !ok {
				return
			}
			if !write(liveMessage{Type: "transition", Transition: &t}) {
				return
			}
			if t.Kind == controller.TransitionCompleted || t.Kind == controller.TransitionDeadlineExpired {
				return
			}
		case cue, ok := <-feedback.Cues():
			if !ok {
				return
			}
			if !write(liveMessage{Type: "cue", Cue: &cue}) {
				return
			}
		case <-ticker.C:
			if !timed {
				continue
			}
			if !write(liveMessage{Type: "tick", Remaining: ctrl.Remaining()}) {
				return
			}
		case <-done:
			return
		}
	}
}
