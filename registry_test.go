package server

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	guard := NewRespawnGuard(30*time.Second, nil)
	t.Cleanup(guard.Stop)

	r := NewRegistry(defaultLobbyConfig(), guard, nil, nil)
	t.Cleanup(r.Shutdown)
	return r
}

func TestRegistryCreatesMainLobby(t *testing.T) {
	r := newTestRegistry(t)

	main := r.MainLobby()
	require.NotNil(t, main)
	assert.Equal(t, mainLobbyName, main.Name())

	rooms := r.List()
	require.Len(t, rooms, 1)
	assert.Equal(t, main.ID(), rooms[0].ID)
	assert.False(t, rooms[0].PasswordProtected)
}

func TestCreateLobbyValidation(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.CreateLobby("", "")
	assert.ErrorIs(t, err, ErrNameEmpty)

	_, err = r.CreateLobby("   ", "")
	assert.ErrorIs(t, err, ErrNameEmpty)

	_, err = r.CreateLobby("Arena", "")
	require.NoError(t, err)

	_, err = r.CreateLobby("arena", "")
	assert.ErrorIs(t, err, ErrNameTaken, "names must collide case-insensitively")

	_, err = r.CreateLobby("main", "")
	assert.ErrorIs(t, err, ErrNameTaken, "the main lobby name is reserved")
}

func TestCreateLobbyCapsNameLength(t *testing.T) {
	r := newTestRegistry(t)

	long := strings.Repeat("x", maxRoomNameLength+20)
	l, err := r.CreateLobby(long, "")
	require.NoError(t, err)
	assert.Len(t, []rune(l.Name()), maxRoomNameLength)
}

func TestJoinUnknownLobby(t *testing.T) {
	r := newTestRegistry(t)

	_, _, err := r.Join(Player{ID: "p1"}, newSubscriber(&fakeConn{}), "no-such-id", "")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestJoinPasswordFlow(t *testing.T) {
	r := newTestRegistry(t)

	l, err := r.CreateLobby("secret-club", "hunter2")
	require.NoError(t, err)
	assert.True(t, l.PasswordProtected())

	player := Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}

	_, _, err = r.Join(player, newSubscriber(&fakeConn{}), l.ID(), "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, _, err = r.Join(player, newSubscriber(&fakeConn{}), l.ID(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	joined, snapshot, err := r.Join(player, newSubscriber(&fakeConn{}), l.ID(), "hunter2")
	require.NoError(t, err)
	assert.Equal(t, l.ID(), joined.ID())
	assert.Contains(t, snapshot.Players, "p1")
}

func TestPasswordsNeverAppearInListings(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.CreateLobby("secret-club", "hunter2")
	require.NoError(t, err)

	for _, room := range r.List() {
		if room.Name == "secret-club" {
			assert.True(t, room.PasswordProtected)
			return
		}
	}
	t.Fatalf("created lobby missing from the listing")
}

func TestListOrderIsStable(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.CreateLobby("alpha", "")
	require.NoError(t, err)
	_, err = r.CreateLobby("beta", "")
	require.NoError(t, err)

	first := r.List()
	second := r.List()
	assert.Equal(t, first, second)
	assert.Equal(t, mainLobbyName, first[0].Name, "the main lobby was created first")
}

func TestEmptiedLobbyIsRemoved(t *testing.T) {
	r := newTestRegistry(t)

	l, err := r.CreateLobby("transient", "")
	require.NoError(t, err)

	player := Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}
	_, _, err = r.Join(player, newSubscriber(&fakeConn{}), l.ID(), "")
	require.NoError(t, err)

	l.Leave("p1", false)

	assert.Eventually(t, func() bool {
		_, ok := r.Lobby(l.ID())
		return !ok
	}, 2*time.Second, 5*time.Millisecond, "emptied lobby should leave the registry")

	// The name is free again once the lobby is gone.
	_, err = r.CreateLobby("transient", "")
	assert.NoError(t, err)
}

func TestMainLobbyNeverRemoved(t *testing.T) {
	r := newTestRegistry(t)
	main := r.MainLobby()

	player := Player{ID: "p1", Name: "tester", IP: "10.0.0.1"}
	_, _, err := r.Join(player, newSubscriber(&fakeConn{}), main.ID(), "")
	require.NoError(t, err)

	main.Leave("p1", false)

	_, ok := r.Lobby(main.ID())
	assert.True(t, ok, "the main lobby must survive emptying")

	_, _, err = r.Join(Player{ID: "p2", Name: "tester2", IP: "10.0.0.2"}, newSubscriber(&fakeConn{}), main.ID(), "")
	assert.NoError(t, err)
}
