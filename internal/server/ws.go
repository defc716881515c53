package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nbryan/concierge/internal/bridge"
	"github.com/nbryan/concierge/internal/transcript"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hostFrame is the incoming websocket message from the speech host.
type hostFrame struct {
	Type   string `json:"type"` // press_down, press_up, transcription, text, capture_failed
	Text   string `json:"text,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// coreFrame is an outgoing websocket message. Port messages pass through
// as-is; turn events wrap the assistant turn.
type coreFrame struct {
	Type string           `json:"type"`
	Turn *transcript.Turn `json:"turn,omitempty"`
	bridge.Message
}

// handleWebSocket is the host transport: the speech host connects once,
// sends capture signals and transcriptions, and drains the outbound port.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.drainPort(ctx, conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var frame hostFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			log.Printf("server: websocket frame: %v", err)
			continue
		}

		switch frame.Type {
		case "press_down":
			s.bridge.BeginCapture()
		case "press_up":
			s.bridge.EndCapture()
		case "capture_failed":
			s.bridge.CaptureFailed(frame.Reason)
		case "transcription":
			go s.submitAndNotify(conn, frame.Text, true)
		case "text":
			go s.submitAndNotify(conn, frame.Text, false)
		default:
			log.Printf("server: unknown host frame type %q", frame.Type)
		}
	}
}

// submitAndNotify runs one utterance through the pipeline and pushes the
// resulting turn back over the socket.
func (s *Server) submitAndNotify(conn *websocket.Conn, text string, spoken bool) {
	ctx := context.Background()
	var turn *transcript.Turn
	var err error
	if spoken {
		turn, err = s.bridge.OnTranscription(ctx, text)
	} else {
		turn, err = s.bridge.SubmitText(ctx, text)
	}
	if err != nil {
		s.writeFrame(conn, coreFrame{Type: "error", Message: bridge.Message{Text: err.Error()}})
		return
	}
	s.writeFrame(conn, coreFrame{Type: "turn", Turn: turn})
}

// drainPort streams outbound host messages until the socket closes.
func (s *Server) drainPort(ctx context.Context, conn *websocket.Conn) {
	port := s.bridge.Port()
	for {
		for _, msg := range port.Drain() {
			s.writeFrame(conn, coreFrame{Type: string(msg.Type), Message: msg})
		}
		select {
		case <-ctx.Done():
			return
		case <-port.Wait():
		}
	}
}

// writeFrame serializes writes: the port drainer and submission
// goroutines share the connection, and gorilla allows one writer at a
// time.
func (s *Server) writeFrame(conn *websocket.Conn, frame coreFrame) {
	s.wsWriteMu.Lock()
	defer s.wsWriteMu.Unlock()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
