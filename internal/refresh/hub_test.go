package refresh

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestStamp_Changed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh.stamp")
	s := Stamp{Path: path}

	s.Changed("Packages/manifest.json")
	first, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stamp not created: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	s.Changed()
	second, _ := os.Stat(path)
	if !second.ModTime().After(first.ModTime()) {
		t.Error("stamp mtime should advance on every change")
	}
}

func TestStamp_EmptyPath(t *testing.T) {
	// Must not panic or create anything.
	Stamp{}.Changed("whatever")
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitForClients(t, hub, 1)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clients", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := dialHub(t, hub)

	hub.Changed("Packages/manifest.json")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if msg.Type != TypeManifest {
		t.Errorf("Type = %q, want %q", msg.Type, TypeManifest)
	}
	if len(msg.Paths) != 1 || msg.Paths[0] != "Packages/manifest.json" {
		t.Errorf("Paths = %v", msg.Paths)
	}
}

func TestHub_PackagesChanged(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := dialHub(t, hub)

	hub.PackagesChanged("registry/com.example.pkg")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if msg.Type != TypePackages {
		t.Errorf("Type = %q, want %q", msg.Type, TypePackages)
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	if hub.ClientCount() != 0 {
		t.Error("fresh hub should have no clients")
	}

	dialHub(t, hub)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount = %d, want 1", hub.ClientCount())
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	n.Changed("anything") // must not panic
}
