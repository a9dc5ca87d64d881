// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/panorama_navigator/internal/frame"
	"github.com/relabs-tech/panorama_navigator/internal/navigation"
	"github.com/relabs-tech/panorama_navigator/internal/pick"
	"github.com/relabs-tech/panorama_navigator/internal/scene"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// clientSendBuffer is how many outgoing messages a slow client may lag
// behind before new ones are dropped for it.
const clientSendBuffer = 16

// quatJSON is a quaternion in the x, y, z, w order browsers expect.
type quatJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

func toQuatJSON(q quat.Number) quatJSON {
	return quatJSON{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

type vecJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// frameView is the JSON form of a frame, served on /api/frame and the
// frame topic.
type frameView struct {
	Seq       uint64   `json:"seq"`
	Active    int      `json:"active"`
	Position  float64  `json:"position"`
	Rotation  float64  `json:"rotation"`
	Speed     float64  `json:"speed"`
	Fov       float64  `json:"fov"`
	Camera    quatJSON `json:"camera"`
	SceneRoll quatJSON `json:"sceneRoll"`
	Visible   [2]bool  `json:"visible"`
	Switch    string   `json:"switch,omitempty"`
}

func newFrameView(f frame.Frame) frameView {
	v := frameView{
		Seq:       f.Seq,
		Active:    f.State.Active,
		Position:  f.State.Position,
		Rotation:  f.State.Rotation,
		Speed:     f.Speed,
		Fov:       f.Pose.Fov,
		Camera:    toQuatJSON(f.Pose.Orientation),
		SceneRoll: toQuatJSON(f.SceneRoll),
		Visible:   f.Visible,
	}
	if f.Switch != navigation.NoSwitch {
		v.Switch = f.Switch.String()
	}
	return v
}

type markerJSON struct {
	ID       string  `json:"id"`
	Position vecJSON `json:"position"`
}

// sceneMessage is what the browser renderer draws each frame.
type sceneMessage struct {
	Type     string       `json:"type"`
	Camera   quatJSON     `json:"camera"`
	Fov      float64      `json:"fov"`
	Position float64      `json:"position"`
	Roll     quatJSON     `json:"roll"`
	Visible  [2]bool      `json:"visible"`
	Markers  []markerJSON `json:"markers"`
}

func newSceneMessage(s scene.Snapshot) sceneMessage {
	markers := make([]markerJSON, 0, len(s.Markers))
	for _, m := range s.Markers {
		markers = append(markers, markerJSON{
			ID:       m.ID,
			Position: vecJSON{X: m.Position.X, Y: m.Position.Y, Z: m.Position.Z},
		})
	}
	return sceneMessage{
		Type:     "scene",
		Camera:   toQuatJSON(s.Camera.Orientation),
		Fov:      s.Camera.Fov,
		Position: s.Camera.Position,
		Roll:     toQuatJSON(s.Roll),
		Visible:  s.Visible,
		Markers:  markers,
	}
}

type pickMessage struct {
	Type string      `json:"type"`
	Pick pick.Result `json:"pick"`
}

// frameStore holds the latest frame for the HTTP API.
type frameStore struct {
	mu   sync.RWMutex
	last frameView
	have bool
}

func (s *frameStore) set(v frameView) {
	s.mu.Lock()
	s.last = v
	s.have = true
	s.mu.Unlock()
}

func (s *frameStore) get() (frameView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.have
}

func (s *frameStore) handleFrame(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.get()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("web: json encode error: %v", err)
		http.Error(w, "frame not encodable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(payload, '\n'))
}

// wsClient is one connected browser renderer.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans scene and pick messages out to every websocket client and feeds
// their sensor and pick messages back into the viewer.
type hub struct {
	state   *sensor.State
	onPick  func()
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub(state *sensor.State, onPick func()) *hub {
	return &hub{
		state:   state,
		onPick:  onPick,
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *hub) broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("web: marshal error: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// drawScene is the scene's draw hook.
func (h *hub) drawScene(s scene.Snapshot) error {
	h.broadcast(newSceneMessage(s))
	return nil
}

// Report makes the hub a pick sink.
func (h *hub) Report(r pick.Result) {
	h.broadcast(pickMessage{Type: "pick", Pick: r})
}

func (h *hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleMessage applies one message from a browser. Unknown types and
// malformed payloads are logged and ignored.
func (h *hub) handleMessage(raw []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		log.Printf("web: invalid message: %v", err)
		return
	}

	switch head.Type {
	case "orientation":
		o, err := sensor.DecodeOrientation(raw)
		if err != nil {
			log.Printf("web: orientation payload: %v", err)
			return
		}
		h.state.SetOrientation(o)
	case "motion":
		m, err := sensor.DecodeMotion(raw)
		if err != nil {
			log.Printf("web: motion payload: %v", err)
			return
		}
		h.state.SetMotion(m)
	case "pick":
		if h.onPick != nil {
			h.onPick()
		}
	default:
		log.Printf("web: unknown message type %q", head.Type)
	}
}

// HandleWS upgrades the connection and serves one browser renderer.
func (h *hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("web: client connected from %s", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			break
		}
		h.handleMessage(raw)
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
	<-done
	conn.Close()
	log.Printf("web: client %s disconnected", r.RemoteAddr)
}

// newWebMux wires the websocket bridge, the frame API and the static files.
func newWebMux(h *hub, frames *frameStore, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	mux.HandleFunc("/api/frame", frames.handleFrame)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}
