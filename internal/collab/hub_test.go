package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/scene"
)

type memRepo struct {
	mu     sync.Mutex
	scenes map[string]*document.Scene
	saves  int
}

func newMemRepo(ids ...string) *memRepo {
	r := &memRepo{scenes: map[string]*document.Scene{}}
	for _, id := range ids {
		r.scenes[id] = document.NewEmptyScene()
	}
	return r
}

func (r *memRepo) LoadScene(_ context.Context, projectID string) (*document.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.scenes[projectID]
	if !ok {
		return nil, errors.New("no such project")
	}
	return sc.Clone(), nil
}

func (r *memRepo) SaveScene(_ context.Context, projectID string, sc *document.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes[projectID] = sc.Clone()
	r.saves++
	return nil
}

func (r *memRepo) get(projectID string) (*document.Scene, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scenes[projectID], r.saves
}

func startHub(t *testing.T, repo Repository) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	n := 0
	newStore := func() *scene.Store {
		return scene.New(scene.WithIDGenerator(func(prefix string) string {
			n++
			return fmt.Sprintf("%s_%d", prefix, n)
		}))
	}
	h := NewHub(repo, newStore, WithSaveInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.Run(ctx) }()
	t.Cleanup(cancel)
	return h, cancel, errc
}

func join(t *testing.T, h *Hub, projectID, clientID string) *Client {
	t.Helper()
	c := NewClient(h, nil, "user_1", "Ada", projectID, clientID)
	if err := h.Register(c); err != nil {
		t.Fatal(err)
	}
	return c
}

func next(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case m, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return *m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func submit(h *Hub, c *Client, seq int64, op string) {
	payload, _ := json.Marshal(OpSubmitPayload{Operation: json.RawMessage(op)})
	h.submit(c, &Message{Type: TypeOpSubmit, Seq: seq, Payload: payload})
}

func TestHubWelcomeAndAck(t *testing.T) {
	repo := newMemRepo("proj_1")
	h, cancel, errc := startHub(t, repo)

	a := join(t, h, "proj_1", "c1")
	if m := next(t, a); m.Type != TypeWelcome {
		t.Fatalf("first message = %s, want welcome", m.Type)
	}
	b := join(t, h, "proj_1", "c2")
	next(t, b)

	submit(h, a, 7, `{"id":"op1","type":"image.add","image":{"id":"a","bitmapId":"bmp","width":10,"height":10}}`)

	if m := next(t, a); m.Type != TypeDocSync {
		t.Fatalf("sender got %s, want doc.sync", m.Type)
	}
	ack := next(t, a)
	if ack.Type != TypeOpAck || ack.Seq != 7 {
		t.Fatalf("ack = %+v", ack)
	}
	var p OpAckPayload
	if err := json.Unmarshal(ack.Payload, &p); err != nil {
		t.Fatal(err)
	}
	if p.OperationID != "op1" || p.ServerSeq != 1 || len(p.IDs) != 1 || p.IDs[0] != "a" {
		t.Errorf("ack payload = %+v", p)
	}

	peer := next(t, b)
	if peer.Type != TypeDocSync {
		t.Fatalf("peer got %s, want doc.sync", peer.Type)
	}
	var ds DocSyncPayload
	if err := json.Unmarshal(peer.Payload, &ds); err != nil {
		t.Fatal(err)
	}
	if _, ok := ds.Snapshot.Scene.Images["a"]; !ok {
		t.Error("doc.sync snapshot missing image a")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	saved, saves := repo.get("proj_1")
	if saves != 1 {
		t.Errorf("saves = %d, want 1", saves)
	}
	if _, ok := saved.Images["a"]; !ok {
		t.Error("shutdown save missing image a")
	}
}

func TestHubNacks(t *testing.T) {
	h, _, _ := startHub(t, newMemRepo("proj_1"))
	c := join(t, h, "proj_1", "c1")
	next(t, c)

	tests := []struct {
		op   string
		code string
	}{
		{`{"type":"layout.align","mode":"left"}`, "invalid_selection"},
		{`{"type":"group.delete","groupId":"nope"}`, "not_found"},
		{`{"type":"teleport"}`, "invalid_operation"},
		{`{"type":"image.crop"}`, "invalid_operation"},
	}
	for i, tt := range tests {
		submit(h, c, int64(i+1), tt.op)
		m := next(t, c)
		if m.Type != TypeOpNack {
			t.Fatalf("%s: got %s, want op.nack", tt.op, m.Type)
		}
		var p OpNackPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			t.Fatal(err)
		}
		if p.Code != tt.code {
			t.Errorf("%s: code = %q, want %q", tt.op, p.Code, tt.code)
		}
	}
}

func TestHubLoadFailureClosesClient(t *testing.T) {
	h, _, _ := startHub(t, newMemRepo())
	c := join(t, h, "proj_missing", "c1")

	if m := next(t, c); m.Type != TypeError {
		t.Fatalf("got %s, want error", m.Type)
	}
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel left open")
	}
}

func TestHubSavesWhenLastClientLeaves(t *testing.T) {
	repo := newMemRepo("proj_1")
	h, _, _ := startHub(t, repo)
	c := join(t, h, "proj_1", "c1")
	next(t, c)

	submit(h, c, 1, `{"type":"image.add","image":{"id":"a","bitmapId":"bmp","width":10,"height":10}}`)
	next(t, c)
	next(t, c)

	h.leave(c)
	for range c.send {
	}
	// The hub finishes the leave before it accepts the next join.
	c2 := join(t, h, "proj_1", "c2")
	if _, saves := repo.get("proj_1"); saves != 1 {
		t.Errorf("saves = %d, want 1", saves)
	}

	var w WelcomePayload
	if err := json.Unmarshal(next(t, c2).Payload, &w); err != nil {
		t.Fatal(err)
	}
	if _, ok := w.Snapshot.Scene.Images["a"]; !ok {
		t.Error("reopened session missing image a")
	}
}

func TestHubDocSyncRequest(t *testing.T) {
	h, _, _ := startHub(t, newMemRepo("proj_1"))
	c := join(t, h, "proj_1", "c1")
	next(t, c)

	h.submit(c, &Message{Type: TypeDocSync, Seq: 3})
	m := next(t, c)
	if m.Type != TypeDocSync || m.Seq != 3 {
		t.Errorf("got %+v", m)
	}
}
