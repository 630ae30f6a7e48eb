// Streams the state of a running simulation to websocket clients as JSON,
// one snapshot per simulation step.
package main

import (
	"flag"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ballast-engine/ballast"
	"github.com/ballast-engine/ballast/scene"
)

const sceneYAML = `
gravity: [0, -9.81, 0]
cell_size: 4

bodies:
  - name: ground
    shape: aabb
    half_extents: [20, 1, 20]
    position: [0, -1, 0]

  - {name: ball-0, shape: sphere, radius: 0.5, mass: 1, restitution: 0.7, position: [-2.5, 4.0, 0], velocity: [-1, 0, 0]}
  - {name: ball-1, shape: sphere, radius: 0.5, mass: 1, restitution: 0.7, position: [-1.5, 5.5, 0], velocity: [0, 0, 0]}
  - {name: ball-2, shape: sphere, radius: 0.5, mass: 1, restitution: 0.7, position: [-0.5, 7.0, 0], velocity: [1, 0, 0]}
  - {name: ball-3, shape: sphere, radius: 0.5, mass: 1, restitution: 0.7, position: [0.5, 8.5, 0], velocity: [-1, 0, 0]}
  - {name: ball-4, shape: sphere, radius: 0.5, mass: 1, restitution: 0.7, position: [1.5, 10.0, 0], velocity: [0, 0, 0]}
  - {name: ball-5, shape: sphere, radius: 0.5, mass: 1, restitution: 0.7, position: [2.5, 11.5, 0], velocity: [1, 0, 0]}
`

type bodySnapshot struct {
	ID       int        `json:"id"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Static   bool       `json:"static,omitempty"`
}

type snapshot struct {
	Time   float64        `json:"time"`
	Bodies []bodySnapshot `json:"bodies"`
}

type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	c.Close()
}

func (h *hub) broadcast(s snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteJSON(s); err != nil {
			delete(h.clients, c)
			c.Close()
		}
	}
}

func buildWorld() (*ballast.PhysicsWorld, error) {
	s, err := scene.Parse([]byte(sceneYAML))
	if err != nil {
		return nil, err
	}
	return s.Build()
}

func takeSnapshot(world *ballast.PhysicsWorld, t float64) snapshot {
	s := snapshot{Time: t}
	for i, rb := range world.Bodies() {
		s.Bodies = append(s.Bodies, bodySnapshot{
			ID:       i,
			Position: [3]float64{rb.Position.X(), rb.Position.Y(), rb.Position.Z()},
			Velocity: [3]float64{rb.Velocity.X(), rb.Velocity.Y(), rb.Velocity.Z()},
			Static:   rb.Static(),
		})
	}
	return s
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	world, err := buildWorld()
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}
	h := newHub()

	go func() {
		ticker := time.NewTicker(time.Duration(world.FixedDeltaTime() * float64(time.Second)))
		defer ticker.Stop()

		elapsed := 0.0
		for range ticker.C {
			world.Step()
			elapsed += world.FixedDeltaTime()
			h.broadcast(takeSnapshot(world, elapsed))
		}
	}()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade: %v", err)
			return
		}
		h.add(conn)
		log.Printf("client connected: %s", conn.RemoteAddr())

		// Drain control frames; drop the client when it goes away.
		go func() {
			defer h.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	log.Printf("streaming simulation on ws://%s/ws", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
