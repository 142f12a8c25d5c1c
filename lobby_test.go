package server

import (
	"encoding/json"
	"testing"
	"time"
)

func startTestLobby(t *testing.T, main bool, onEmpty func(*Lobby)) *Lobby {
	t.Helper()
	guard := NewRespawnGuard(30*time.Second, nil)
	t.Cleanup(guard.Stop)

	l := newLobby("lobby-1", "test", "", defaultLobbyConfig(), main, guard, nil, onEmpty, nil)
	go l.run()
	t.Cleanup(l.stopActor)
	return l
}

func TestLobbyJoinReturnsSnapshot(t *testing.T) {
	l := startTestLobby(t, true, nil)
	conn := &fakeConn{}

	snapshot, ok := l.Join(Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}, newSubscriber(conn))
	if !ok {
		t.Fatalf("expected join to succeed")
	}
	if _, present := snapshot.Players["p1"]; !present {
		t.Fatalf("expected the joining player in the initial snapshot")
	}
	if l.MemberCount() != 1 {
		t.Fatalf("expected member count 1, got %d", l.MemberCount())
	}
}

func TestLobbyTicksAfterJoin(t *testing.T) {
	l := startTestLobby(t, true, nil)
	conn := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}, newSubscriber(conn)); !ok {
		t.Fatalf("expected join to succeed")
	}

	conn.waitForFrame(t, MsgStateSnapshot)
}

func TestMainLobbySurvivesEmptying(t *testing.T) {
	l := startTestLobby(t, true, nil)
	conn := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}, newSubscriber(conn)); !ok {
		t.Fatalf("expected join to succeed")
	}
	l.Leave("p1", false)

	if l.MemberCount() != 0 {
		t.Fatalf("expected member count 0, got %d", l.MemberCount())
	}
	if l.closed.Load() {
		t.Fatalf("expected the main lobby to survive emptying")
	}

	// A rejoin must restart a fresh session.
	rejoin := &fakeConn{}
	snapshot, ok := l.Join(Player{ID: "p2", Name: "tester2", IP: "10.0.0.2"}, newSubscriber(rejoin))
	if !ok {
		t.Fatalf("expected rejoin to succeed")
	}
	if snapshot.Level != 1 || snapshot.Score != 0 {
		t.Fatalf("expected a reset session, got level=%d score=%d", snapshot.Level, snapshot.Score)
	}
}

func TestNonMainLobbyShutsDownWhenEmpty(t *testing.T) {
	emptied := make(chan *Lobby, 1)
	l := startTestLobby(t, false, func(l *Lobby) { emptied <- l })
	conn := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}, newSubscriber(conn)); !ok {
		t.Fatalf("expected join to succeed")
	}
	l.Leave("p1", false)

	select {
	case <-emptied:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the empty lobby to announce its teardown")
	}

	if _, ok := l.Join(Player{ID: "p2", Name: "late", IP: "10.0.0.2"}, newSubscriber(&fakeConn{})); ok {
		t.Fatalf("expected joins to fail after teardown")
	}
}

func TestLeaveWhileDeadRecordsDeath(t *testing.T) {
	l := startTestLobby(t, true, nil)
	conn := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "tester", IP: "10.9.9.9"}, newSubscriber(conn)); !ok {
		t.Fatalf("expected join to succeed")
	}

	// Mark the member dead through the actor inbox so the test never touches
	// actor-owned state from outside.
	done := make(chan struct{})
	l.inbox <- funcCmd{fn: func(l *Lobby) {
		l.members["p1"].alive = false
		close(done)
	}}
	<-done

	l.Leave("p1", true)

	if remaining := l.guard.Remaining("10.9.9.9"); remaining <= 0 {
		t.Fatalf("expected a dead leaver's IP to enter the cooldown table")
	}
}

func TestLeaveWhileAliveDoesNotRecordDeath(t *testing.T) {
	l := startTestLobby(t, true, nil)
	conn := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "tester", IP: "10.8.8.8"}, newSubscriber(conn)); !ok {
		t.Fatalf("expected join to succeed")
	}
	l.Leave("p1", true)

	if remaining := l.guard.Remaining("10.8.8.8"); remaining != 0 {
		t.Fatalf("expected a living leaver to stay off the cooldown table")
	}
}

func TestChatIsRelayedWithDisplayName(t *testing.T) {
	l := startTestLobby(t, true, nil)
	sender := &fakeConn{}
	listener := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "shouter", IP: "10.0.0.1"}, newSubscriber(sender)); !ok {
		t.Fatalf("expected join to succeed")
	}
	if _, ok := l.Join(Player{ID: "p2", Name: "hearer", IP: "10.0.0.2"}, newSubscriber(listener)); !ok {
		t.Fatalf("expected join to succeed")
	}

	if !l.Chat("p1", "watch out!") {
		t.Fatalf("expected chat dispatch to succeed")
	}

	frame := listener.waitForFrame(t, MsgChatRelayed)
	var msg ChatRelayedMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("failed to decode chat message: %v", err)
	}
	if msg.PlayerID != "p1" || msg.DisplayName != "shouter" || msg.Text != "watch out!" {
		t.Fatalf("unexpected chat relay: %+v", msg)
	}
}

func TestRenameReachesSnapshots(t *testing.T) {
	l := startTestLobby(t, true, nil)
	conn := &fakeConn{}

	if _, ok := l.Join(Player{ID: "p1", Name: "before", IP: "10.0.0.1"}, newSubscriber(conn)); !ok {
		t.Fatalf("expected join to succeed")
	}
	if !l.Rename("p1", "after") {
		t.Fatalf("expected rename dispatch to succeed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frames := conn.framesOfType(t, MsgStateSnapshot)
		if len(frames) > 0 {
			var snapshot StateMessage
			if err := json.Unmarshal(frames[len(frames)-1], &snapshot); err != nil {
				t.Fatalf("failed to decode snapshot: %v", err)
			}
			if snapshot.Players["p1"].Name == "after" {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("rename never reached a broadcast snapshot")
}
