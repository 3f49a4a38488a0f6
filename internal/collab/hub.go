package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/inamate/pinboard/internal/command"
	"github.com/inamate/pinboard/internal/scene"
)

const (
	DefaultSaveInterval = 30 * time.Second
	saveTimeout         = 10 * time.Second
)

var ErrHubClosed = errors.New("hub closed")

type inbound struct {
	client *Client
	msg    *Message
}

// Hub owns every open editor session. All store access happens on the
// goroutine running Run.
type Hub struct {
	repo         Repository
	newStore     func() *scene.Store
	saveInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time

	sessions   map[string]*session // projectID -> session
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	done       chan struct{}
}

type HubOption func(*Hub)

func WithSaveInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.saveInterval = d }
}

func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// NewHub creates a hub that loads scenes from repo into stores built by
// newStore.
func NewHub(repo Repository, newStore func() *scene.Store, opts ...HubOption) *Hub {
	h := &Hub{
		repo:         repo,
		newStore:     newStore,
		saveInterval: DefaultSaveInterval,
		logger:       slog.Default(),
		now:          time.Now,
		sessions:     make(map[string]*session),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan inbound, 64),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes joins, leaves and messages until ctx is cancelled, then saves
// every dirty session.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	ticker := time.NewTicker(h.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(ctx, client)
		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		case <-ticker.C:
			h.saveDirty(ctx)
		case <-ctx.Done():
			h.logger.Info("saving all sessions", "count", len(h.sessions))
			h.saveDirty(context.WithoutCancel(ctx))
			return nil
		}
	}
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) submit(client *Client, msg *Message) {
	select {
	case h.inbound <- inbound{client: client, msg: msg}:
	case <-h.done:
	}
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	sess, err := h.openSession(ctx, client.ProjectID)
	if err != nil {
		h.logger.Warn("open session failed", "project", client.ProjectID, "error", err)
		h.sendError(client, "load_failed", "could not open project")
		close(client.send)
		return
	}
	sess.clients[client.ClientID] = client

	welcome, err := newMessage(TypeWelcome, sess.serverSeq, WelcomePayload{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
		Snapshot:    sess.store.Snapshot(),
	})
	if err == nil {
		client.Send(welcome)
	}

	h.logger.Info("client joined", "user", client.UserID, "project", client.ProjectID, "clients", len(sess.clients))
}

func (h *Hub) openSession(ctx context.Context, projectID string) (*session, error) {
	if sess, ok := h.sessions[projectID]; ok {
		return sess, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	sc, err := h.repo.LoadScene(loadCtx, projectID)
	if err != nil {
		return nil, err
	}

	store := h.newStore()
	if err := store.Load(sc); err != nil {
		return nil, err
	}

	sess := &session{
		projectID: projectID,
		store:     store,
		clients:   make(map[string]*Client),
		savedRev:  store.Revision(),
	}
	sess.unsubscribe = store.Subscribe(func(snap scene.Snapshot) {
		h.broadcast(sess, TypeDocSync, DocSyncPayload{ServerSeq: sess.serverSeq + 1, Snapshot: snap})
	})
	h.sessions[projectID] = sess
	h.logger.Info("session opened", "project", projectID)
	return sess, nil
}

func (h *Hub) removeClient(ctx context.Context, client *Client) {
	sess, ok := h.sessions[client.ProjectID]
	if !ok {
		return
	}
	if _, ok := sess.clients[client.ClientID]; !ok {
		return
	}

	delete(sess.clients, client.ClientID)
	close(client.send)
	h.logger.Info("client left", "user", client.UserID, "project", client.ProjectID)

	if len(sess.clients) > 0 {
		return
	}
	h.closeSession(ctx, sess)
}

func (h *Hub) closeSession(ctx context.Context, sess *session) {
	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := sess.save(saveCtx, h.repo); err != nil {
		// Keep the session in memory so the next tick retries.
		h.logger.Error("save on close failed", "project", sess.projectID, "error", err)
		return
	}
	sess.unsubscribe()
	delete(h.sessions, sess.projectID)
	h.logger.Info("session closed", "project", sess.projectID)
}

func (h *Hub) saveDirty(ctx context.Context) {
	for id, sess := range h.sessions {
		if !sess.dirty() {
			if len(sess.clients) == 0 {
				h.closeSession(ctx, sess)
			}
			continue
		}
		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		err := sess.save(saveCtx, h.repo)
		cancel()
		if err != nil {
			h.logger.Error("save session failed", "project", id, "error", err)
			continue
		}
		h.logger.Debug("session saved", "project", id, "revision", sess.savedRev)
		if len(sess.clients) == 0 {
			h.closeSession(ctx, sess)
		}
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	sess, ok := h.sessions[sender.ProjectID]
	if !ok || sess.clients[sender.ClientID] != sender {
		return
	}

	switch msg.Type {
	case TypeOpSubmit:
		h.handleSubmit(sess, sender, msg)
	case TypeDocSync:
		out, err := newMessage(TypeDocSync, msg.Seq, DocSyncPayload{ServerSeq: sess.serverSeq, Snapshot: sess.store.Snapshot()})
		if err == nil {
			sender.Send(out)
		}
	default:
		h.logger.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		h.sendError(sender, "unknown_type", "unknown message type "+msg.Type)
	}
}

func (h *Hub) handleSubmit(sess *session, sender *Client, msg *Message) {
	var p OpSubmitPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		h.nack(sender, msg.Seq, "", "invalid_operation", "invalid payload")
		return
	}
	op, err := command.Decode(p.Operation)
	if err != nil {
		h.nack(sender, msg.Seq, "", nackCode(err), err.Error())
		return
	}

	res, err := sess.apply(op)
	if err != nil {
		h.logger.Debug("operation rejected", "project", sess.projectID, "type", op.Type, "error", err)
		h.nack(sender, msg.Seq, op.ID, nackCode(err), err.Error())
		return
	}

	ack, err := newMessage(TypeOpAck, msg.Seq, OpAckPayload{
		Result:          res,
		ServerSeq:       sess.serverSeq,
		ServerTimestamp: h.now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("marshal ack", "error", err)
		return
	}
	sender.Send(ack)
}

func (h *Hub) nack(client *Client, seq int64, opID, code, reason string) {
	out, err := newMessage(TypeOpNack, seq, OpNackPayload{OperationID: opID, Code: code, Reason: reason})
	if err == nil {
		client.Send(out)
	}
}

func (h *Hub) sendError(client *Client, code, message string) {
	out, err := newMessage(TypeError, 0, ErrorPayload{Code: code, Message: message})
	if err == nil {
		client.Send(out)
	}
}

func (h *Hub) broadcast(sess *session, typ string, payload any) {
	msg, err := newMessage(typ, 0, payload)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", typ, "error", err)
		return
	}
	for _, c := range sess.clients {
		c.Send(msg)
	}
}
