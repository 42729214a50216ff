package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/redis"
	"github.com/ryanalexander/backend/internal/store"
)

// Manager tracks active WebSocket connections and routes dispatch events to
// them. It implements Dispatcher for the service layer. With a Redis client
// attached, events also fan out to other instances over pub/sub; each
// instance delivers to its own local connections only.
type Manager struct {
	mu            sync.RWMutex
	connections   map[string]*Connection     // userID -> connection
	subscriptions map[string]map[string]bool // guildID -> set of userIDs
	sessions      map[string]*Connection     // sessionID -> connection

	instanceID string
	tokens     *auth.TokenService
	members    store.MemberRepository
	redis      *redis.Client
}

// NewManager creates a gateway Manager. redisClient may be nil for a single
// instance deployment; dispatch is then purely local.
func NewManager(tokens *auth.TokenService, members store.MemberRepository, redisClient *redis.Client) *Manager {
	return &Manager{
		connections:   make(map[string]*Connection),
		subscriptions: make(map[string]map[string]bool),
		sessions:      make(map[string]*Connection),
		instanceID:    uuid.NewString(),
		tokens:        tokens,
		members:       members,
		redis:         redisClient,
	}
}

// busEvent is the envelope published over Redis for cross-instance fan-out.
type busEvent struct {
	Origin  string          `json:"origin"`
	GuildID string          `json:"guild,omitempty"`
	UserID  string          `json:"user,omitempty"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// Run consumes the Redis event bus until ctx is cancelled. Events published
// by this instance are skipped; local delivery already happened at dispatch.
func (m *Manager) Run(ctx context.Context) {
	if m.redis == nil {
		return
	}
	sub := m.redis.SubscribeEvents(ctx)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev busEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Error("gateway: bad bus event", "error", err)
				continue
			}
			if ev.Origin == m.instanceID {
				continue
			}
			if ev.UserID != "" {
				m.deliverToUser(ev.UserID, ev.Event, ev.Data)
			} else if ev.GuildID != "" {
				m.deliverToGuild(ev.GuildID, ev.Event, ev.Data)
			}
		}
	}
}

func (m *Manager) publish(ev busEvent) {
	if m.redis == nil {
		return
	}
	ev.Origin = m.instanceID
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("gateway: marshal bus event", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.redis.PublishEvent(ctx, payload); err != nil {
		slog.Error("gateway: publish bus event", "event", ev.Event, "error", err)
	}
}

// register adds a connection, kicking any previous session of the same user.
func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.connections[c.UserID]; ok {
		old.Close()
		delete(m.sessions, old.SessionID)
	}
	m.connections[c.UserID] = c
	m.sessions[c.SessionID] = c
}

// unregister removes a connection and its guild subscriptions.
func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.connections[c.UserID]; ok && existing == c {
		delete(m.connections, c.UserID)
		for guildID, users := range m.subscriptions {
			delete(users, c.UserID)
			if len(users) == 0 {
				delete(m.subscriptions, guildID)
			}
		}
	}
	delete(m.sessions, c.SessionID)
}

func (m *Manager) subscribe(userID, guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscriptions[guildID] == nil {
		m.subscriptions[guildID] = make(map[string]bool)
	}
	m.subscriptions[guildID][userID] = true
}

// SubscribeToGuild adds a user to a guild's event subscription.
func (m *Manager) SubscribeToGuild(userID, guildID string) {
	m.subscribe(userID, guildID)
}

// UnsubscribeFromGuild removes a user from a guild's event subscription.
func (m *Manager) UnsubscribeFromGuild(userID, guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if users, ok := m.subscriptions[guildID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(m.subscriptions, guildID)
		}
	}
}

// DispatchToUser sends a dispatch event to one connected user.
func (m *Manager) DispatchToUser(userID string, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("gateway: marshal event", "event", event, "error", err)
		return
	}
	m.deliverToUser(userID, event, raw)
	m.publish(busEvent{UserID: userID, Event: event, Data: raw})
}

// DispatchToGuild sends a dispatch event to every user subscribed to a guild.
func (m *Manager) DispatchToGuild(guildID string, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("gateway: marshal event", "event", event, "error", err)
		return
	}
	m.deliverToGuild(guildID, event, raw)
	m.publish(busEvent{GuildID: guildID, Event: event, Data: raw})
}

func (m *Manager) deliverToUser(userID, event string, raw json.RawMessage) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()

	if ok {
		c.SendPayload(Payload{Op: OpDispatch, Data: raw, Event: event})
	}
}

func (m *Manager) deliverToGuild(guildID, event string, raw json.RawMessage) {
	m.mu.RLock()
	users := m.subscriptions[guildID]
	conns := make([]*Connection, 0, len(users))
	for userID := range users {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendPayload(Payload{Op: OpDispatch, Data: raw, Event: event})
	}
}

// handleIdentify authenticates a connection and subscribes it to the user's
// guilds.
func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		slog.Error("gateway: invalid identify data", "error", err)
		c.Close()
		return
	}

	claims, err := m.tokens.ValidateAccessToken(identify.Token)
	if err != nil {
		slog.Warn("gateway: invalid token in identify", "error", err)
		c.Close()
		return
	}

	c.UserID = claims.UserID
	c.SessionID = uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	guildIDs, err := m.members.GuildIDsByUser(ctx, c.UserID)
	if err != nil {
		slog.Error("gateway: listing guilds on identify", "userID", c.UserID, "error", err)
		c.Close()
		return
	}

	m.register(c)
	for _, guildID := range guildIDs {
		m.subscribe(c.UserID, guildID)
	}

	c.SendEvent(EventReady, ReadyData{
		SessionID: c.SessionID,
		UserID:    c.UserID,
		Guilds:    guildIDs,
	})
}
