package server

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"citykiller/internal/engine"
	"citykiller/internal/logs"
	"citykiller/internal/protocol"
	"citykiller/internal/table"
)

// Hub fans one table's board out to its viewers and applies their edits.
type Hub struct {
	mu         sync.Mutex
	table      *table.Table
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	stopOnce   sync.Once
}

func NewHub(t *table.Table) *Hub {
	return &Hub{
		table:      t,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logs.Debug("viewer joined", zap.String("table", h.table.ID), zap.String("viewer", client.ViewerID))
			h.broadcastState(h.table.View())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			logs.Debug("viewer left", zap.String("table", h.table.ID), zap.String("viewer", client.ViewerID))

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every viewer.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Viewers returns the number of connected clients.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	if msg.Envelope.Type == protocol.MsgRefresh {
		h.sendState(msg.Client, h.table.View())
		return
	}

	var payload protocol.ActionMsg
	if err := msg.Envelope.Decode(&payload); err != nil {
		h.sendError(msg.Client, "invalid payload")
		return
	}

	events, view, err := h.table.Apply(payload.Action(msg.Envelope.Type))
	if err != nil {
		logs.Debug("action rejected",
			zap.String("table", h.table.ID),
			zap.String("viewer", msg.Client.ViewerID),
			zap.String("type", msg.Envelope.Type),
			zap.Error(err))
		h.sendError(msg.Client, err.Error())
		return
	}
	h.Publish(events, view)
}

// Publish sends events and the resulting board to every viewer.
func (h *Hub) Publish(events []engine.Event, view engine.PublicViewData) {
	for _, ev := range events {
		h.broadcastAll(protocol.MustEnvelope(protocol.MsgEvent, ev))
	}
	h.broadcastState(view)
}

func (h *Hub) broadcastState(view engine.PublicViewData) {
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgBoardState, protocol.BoardState{
		TableID: h.table.ID,
		Viewers: h.Viewers(),
		View:    view,
	}))
}

func (h *Hub) sendState(client *Client, view engine.PublicViewData) {
	h.sendTo(client, protocol.MustEnvelope(protocol.MsgBoardState, protocol.BoardState{
		TableID: h.table.ID,
		Viewers: h.Viewers(),
		View:    view,
	}))
}

// sendTo queues env for one client, if it is still registered.
func (h *Hub) sendTo(client *Client, env protocol.Envelope) {
	h.mu.Lock()
	registered := h.clients[client]
	h.mu.Unlock()

	if registered {
		client.SendEnvelope(env)
	}
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		logs.Error("broadcast marshal error", zap.String("type", env.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.queue(data)
	}
}

func (h *Hub) sendError(client *Client, message string) {
	h.sendTo(client, protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: message}))
}
