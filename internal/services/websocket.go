package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
	storeTimeout   = 5 * time.Second
	sinkTimeout    = 3 * time.Second
)

// Event types pushed to clients
const (
	EventWelcome          = "welcome"
	EventAuthSuccess      = "auth_success"
	EventError            = "error"
	EventDriverLocation   = "driver_location_update"
	EventRideStatus       = "ride_status_update"
	EventRideRequest      = "premium_ride_request"
	EventRideUpdate       = "ride_update"
	EventFeedbackReceived = "feedback_received"
)

var WelcomeFeatures = []string{"real-time-tracking", "instant-notifications", "priority-support"}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Event is the {type, data} envelope every broadcast uses.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broadcaster fans an event out to every authenticated connection.
type Broadcaster interface {
	Broadcast(evt Event)
}

// EventSink mirrors broadcasts to an external bus.
type EventSink interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Client represents a WebSocket client
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	closeOnce sync.Once
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

type authRequest struct {
	client   *Client
	userID   uint
	userType string
}

// outbound is a frame for one client, or for every authenticated
// client when client is nil. Sharing one channel keeps replies and
// broadcasts in the order they were produced.
type outbound struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages.
// Only the Run loop touches the maps and the clients' Send channels.
type Hub struct {
	store database.Store
	sinks []EventSink
	now   func() time.Time

	conns    map[*Client]uint // 0 until the connection authenticates
	registry map[uint]*Client // last auth wins
	mutex    sync.RWMutex

	register   chan *Client
	unregister chan *Client
	auth       chan authRequest
	outbound   chan outbound
	sinkQueue  chan Event
	done       chan struct{}
}

func NewHub(store database.Store, sinks ...EventSink) *Hub {
	return &Hub{
		store:      store,
		sinks:      sinks,
		now:        time.Now,
		conns:      make(map[*Client]uint),
		registry:   make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		auth:       make(chan authRequest),
		outbound:   make(chan outbound, sendBuffer),
		sinkQueue:  make(chan Event, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run owns the hub state until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	go h.pumpSinks()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.conns {
				client.close()
			}
			h.conns = make(map[*Client]uint)
			h.registry = make(map[uint]*Client)
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.conns[client] = 0
			h.mutex.Unlock()
			h.queue(client, h.flat(EventWelcome, map[string]interface{}{
				"message":  "Welcome to RideFlow Premium Real-time Service",
				"features": WelcomeFeatures,
			}))
			log.Printf("[WS] New connection (%d open)", h.openCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if userID, ok := h.conns[client]; ok {
				delete(h.conns, client)
				// a newer connection may have taken this user id
				if h.registry[userID] == client {
					delete(h.registry, userID)
				}
				client.close()
				log.Printf("[WS] Connection closed for user %d", userID)
			}
			h.mutex.Unlock()

		case req := <-h.auth:
			h.mutex.Lock()
			prev, ok := h.conns[req.client]
			if ok {
				if prev != 0 && prev != req.userID && h.registry[prev] == req.client {
					delete(h.registry, prev)
				}
				h.conns[req.client] = req.userID
				h.registry[req.userID] = req.client
			}
			h.mutex.Unlock()
			if !ok {
				continue
			}
			h.queue(req.client, h.flat(EventAuthSuccess, map[string]interface{}{
				"message":         "Premium authentication successful",
				"userId":          req.userID,
				"userType":        req.userType,
				"premiumFeatures": RideFeatures(models.RideType(req.userType)),
			}))
			log.Printf("[WS] User authenticated: %d (%s)", req.userID, req.userType)

		case msg := <-h.outbound:
			h.mutex.RLock()
			if msg.client != nil {
				if _, ok := h.conns[msg.client]; ok {
					h.queue(msg.client, msg.payload)
				}
			} else {
				for userID, client := range h.registry {
					select {
					case client.Send <- msg.payload:
					default:
						log.Printf("[WS] Warning: could not send to user %d (channel full)", userID)
					}
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) queue(c *Client, payload []byte) {
	if payload == nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
		log.Printf("[WS] Warning: dropped direct message (channel full)")
	}
}

// flat builds the {type, ...fields} shape used for direct replies.
func (h *Hub) flat(eventType string, fields map[string]interface{}) []byte {
	fields["type"] = eventType
	fields["timestamp"] = h.now()
	data, err := json.Marshal(fields)
	if err != nil {
		log.Printf("[WS] Error marshaling %s: %v", eventType, err)
		return nil
	}
	return data
}

// Broadcast sends evt to every authenticated client and every sink.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[WS] Error marshaling %s: %v", evt.Type, err)
		return
	}

	if !enqueue(h, h.outbound, outbound{payload: data}) {
		return
	}

	if len(h.sinks) == 0 {
		return
	}
	select {
	case h.sinkQueue <- evt:
	default:
		log.Printf("[WS] Warning: sink queue full, dropped %s", evt.Type)
	}
}

func (h *Hub) pumpSinks() {
	for {
		select {
		case <-h.done:
			return
		case evt := <-h.sinkQueue:
			for _, sink := range h.sinks {
				ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
				if err := sink.Publish(ctx, evt); err != nil {
					log.Printf("[WS] Sink publish %s failed: %v", evt.Type, err)
				}
				cancel()
			}
		}
	}
}

// ConnectedClients returns the number of authenticated connections
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.registry)
}

func (h *Hub) openCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.conns)
}

// enqueue blocks until the Run loop takes v or the hub stops.
func enqueue[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Hub:  h,
	}
	if !enqueue(h, h.register, client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// inboundMessage is the union of every message a client may send.
type inboundMessage struct {
	Type          string          `json:"type"`
	UserID        uint            `json:"userId"`
	UserType      string          `json:"userType"`
	Location      json.RawMessage `json:"location"`
	Speed         *float64        `json:"speed"`
	Heading       *float64        `json:"heading"`
	Accuracy      *float64        `json:"accuracy"`
	RideID        json.RawMessage `json:"rideId"`
	Status        string          `json:"status"`
	EstimatedTime json.RawMessage `json:"estimatedTime"`
	Message       string          `json:"message"`
}

type DriverLocationEvent struct {
	DriverID  uint            `json:"driverId"`
	Location  json.RawMessage `json:"location"`
	Timestamp time.Time       `json:"timestamp"`
	Speed     float64         `json:"speed"`
	Heading   float64         `json:"heading"`
	Accuracy  float64         `json:"accuracy"`
	IsOnline  bool            `json:"isOnline"`
}

type RideStatusEvent struct {
	RideID        json.RawMessage `json:"rideId"`
	Status        string          `json:"status"`
	Timestamp     time.Time       `json:"timestamp"`
	EstimatedTime json.RawMessage `json:"estimatedTime,omitempty"`
	Message       string          `json:"message,omitempty"`
	UserID        uint            `json:"userId"`
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		enqueue(c.Hub, c.Hub.unregister, c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)

	var userID uint
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		userID = c.handleMessage(userID, message)
	}
}

// handleMessage processes one inbound frame and returns the connection's
// user id afterwards. Failures are answered with an error event.
func (c *Client) handleMessage(userID uint, raw []byte) uint {
	h := c.Hub

	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("[WS] Error unmarshaling message: %v", err)
		c.reply("Message processing failed")
		return userID
	}

	switch msg.Type {
	case "auth":
		if msg.UserID == 0 {
			c.reply("userId is required")
			return userID
		}
		enqueue(h, h.auth, authRequest{client: c, userID: msg.UserID, userType: msg.UserType})
		return msg.UserID

	case EventDriverLocation:
		if userID == 0 {
			c.reply("Authentication required")
			return userID
		}
		if len(msg.Location) == 0 || string(msg.Location) == "null" {
			c.reply("location is required")
			return userID
		}
		evt, err := h.updateDriverLocation(userID, msg)
		if err != nil {
			log.Printf("[WS] Location update for user %d failed: %v", userID, err)
			c.reply("Driver location update failed")
			return userID
		}
		h.Broadcast(Event{Type: EventDriverLocation, Data: evt})

	case EventRideStatus:
		if userID == 0 {
			c.reply("Authentication required")
			return userID
		}
		h.Broadcast(Event{Type: EventRideStatus, Data: RideStatusEvent{
			RideID:        msg.RideID,
			Status:        msg.Status,
			Timestamp:     h.now(),
			EstimatedTime: msg.EstimatedTime,
			Message:       msg.Message,
			UserID:        userID,
		}})

	default:
		c.reply("Unknown message type")
	}
	return userID
}

func (h *Hub) updateDriverLocation(userID uint, msg inboundMessage) (*DriverLocationEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	driver, err := h.store.GetDriverByUserID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err, "Driver")
	}

	location := locationText(msg.Location)
	online := true
	updated, err := h.store.UpdateDriver(ctx, driver.ID, models.DriverPatch{
		CurrentLocation: &location,
		IsOnline:        &online,
	})
	if err != nil {
		return nil, err
	}

	return &DriverLocationEvent{
		DriverID:  updated.ID,
		Location:  msg.Location,
		Timestamp: h.now(),
		Speed:     orDefault(msg.Speed, 0),
		Heading:   orDefault(msg.Heading, 0),
		Accuracy:  orDefault(msg.Accuracy, 5),
		IsOnline:  updated.IsOnline,
	}, nil
}

// locationText stores a JSON string as its value and anything else as
// its raw JSON text.
func locationText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

func (c *Client) reply(message string) {
	payload := c.Hub.flat(EventError, map[string]interface{}{"message": message})
	if payload != nil {
		enqueue(c.Hub, c.Hub.outbound, outbound{client: c, payload: payload})
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
