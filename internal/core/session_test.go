package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ada = Presence{DisplayName: "Ada", ColorTag: "#112233"}
	bob = Presence{DisplayName: "Bob", ColorTag: "#445566"}

	diagonal = Stroke{FromX: 0, FromY: 0, ToX: 10, ToY: 10, Color: "#000", Size: 3}
	flat     = Stroke{FromX: 10, FromY: 10, ToX: 20, ToY: 10, Color: "#f00", Size: 1.5}
)

func TestJoinCreatesAndPopulatesRoom(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")

	require.NoError(t, s1.Join("abc", ada))

	room, ok := hub.Rooms().Lookup("abc")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"c1"}, room.Members())
	p, ok := room.Presence("c1")
	require.True(t, ok)
	assert.Equal(t, ada, p)
	assert.Equal(t, "abc", s1.RoomID())

	// Alone in an empty room: only the member count arrives.
	evs := drain(c1)
	require.Equal(t, []EventKind{EventUserCount}, kinds(evs))
	assert.Equal(t, 1, evs[0].Count)
}

func TestJoinDefaultsPresence(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")

	require.NoError(t, s1.Join("abc", Presence{}))

	room, _ := hub.Rooms().Lookup("abc")
	p, _ := room.Presence("c1")
	assert.Equal(t, Presence{DisplayName: DefaultDisplayName, ColorTag: DefaultColorTag}, p)
}

func TestJoinRequiresRoomID(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")

	err := s1.Join("", ada)
	assert.ErrorIs(t, err, ErrRoomRequired)
	assert.Equal(t, ErrCodeBadRequest, ErrorCode(err))
	assert.Empty(t, s1.RoomID())
}

func TestSecondJoinerNotifiesOthers(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")

	id := s1.CreateRoom()
	created := drain(c1)
	require.Len(t, created, 1)
	assert.Equal(t, EventRoomCreated, created[0].Kind)
	assert.Equal(t, id, created[0].Room)

	require.NoError(t, s1.Join("abc", ada))
	drain(c1)
	require.NoError(t, s2.Join("abc", bob))

	evs1 := drain(c1)
	assert.Equal(t, []EventKind{EventUserJoined, EventUserCount}, kinds(evs1))
	joined := ofKind(evs1, EventUserJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, "c2", joined[0].User)
	assert.Equal(t, bob, joined[0].Presence)
	assert.Equal(t, 2, ofKind(evs1, EventUserCount)[0].Count)

	evs2 := drain(c2)
	assert.Equal(t, []EventKind{EventUserInfos, EventUserCount}, kinds(evs2))
	assert.Equal(t, map[string]Presence{"c1": ada}, evs2[0].Presences)
	assert.Equal(t, 2, evs2[1].Count)
	assert.Empty(t, ofKind(evs2, EventUserJoined), "joiner must not see its own join")
}

func TestDrawFansOutToOthersOnly(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s2.Join("abc", bob))
	drain(c1)
	drain(c2)

	require.NoError(t, s1.AppendStroke(diagonal))

	assert.Empty(t, drain(c1))
	evs := drain(c2)
	require.Len(t, evs, 1)
	assert.Equal(t, EventDraw, evs[0].Kind)
	assert.Equal(t, diagonal, evs[0].Stroke)
	assert.Empty(t, evs[0].User)

	// Live strokes are not logged.
	room, _ := hub.Rooms().Lookup("abc")
	assert.Empty(t, room.Strokes())
}

func TestDrawRejectsMalformedStroke(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s2.Join("abc", bob))
	drain(c1)
	drain(c2)

	bad := diagonal
	bad.Size = 0
	assert.ErrorIs(t, s1.AppendStroke(bad), ErrBadStroke)
	assert.Empty(t, drain(c2))
}

func TestLateJoinerReceivesLatestSnapshot(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	c3, s3 := newPeer(hub, "c3")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s2.Join("abc", bob))

	require.NoError(t, s1.ReplaceLog([]Stroke{flat}))
	require.NoError(t, s1.ReplaceLog([]Stroke{diagonal, flat}))
	drain(c1)
	// save-canvas is not fanned out; c2 only holds its own join events.
	assert.Equal(t, []EventKind{EventUserInfos, EventUserCount}, kinds(drain(c2)))

	s1.Disconnect()
	countEv := ofKind(drain(c2), EventUserCount)
	require.Len(t, countEv, 1)
	assert.Equal(t, 1, countEv[0].Count)

	require.NoError(t, s3.Join("abc", Presence{DisplayName: "Cy"}))
	evs := drain(c3)
	require.Equal(t, []EventKind{EventCanvasData, EventUserInfos, EventUserCount}, kinds(evs))
	assert.Equal(t, []Stroke{diagonal, flat}, evs[0].Strokes)
	assert.Equal(t, map[string]Presence{"c2": bob}, evs[1].Presences)
	assert.Equal(t, 2, evs[2].Count)
}

func TestReplaceLogCopiesInput(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")
	require.NoError(t, s1.Join("abc", ada))

	strokes := []Stroke{diagonal}
	require.NoError(t, s1.ReplaceLog(strokes))
	strokes[0] = flat

	room, _ := hub.Rooms().Lookup("abc")
	assert.Equal(t, []Stroke{diagonal}, room.Strokes())
}

func TestReplaceLogRejectsMalformedSnapshot(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s1.ReplaceLog([]Stroke{flat}))

	bad := diagonal
	bad.Size = -1
	assert.ErrorIs(t, s1.ReplaceLog([]Stroke{diagonal, bad}), ErrBadStroke)

	room, _ := hub.Rooms().Lookup("abc")
	assert.Equal(t, []Stroke{flat}, room.Strokes())
}

func TestClearEmptiesLogAndNotifiesOthers(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	c3, s3 := newPeer(hub, "c3")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s2.Join("abc", bob))
	require.NoError(t, s1.ReplaceLog([]Stroke{diagonal}))
	drain(c1)
	drain(c2)

	require.NoError(t, s1.Clear())

	assert.Empty(t, drain(c1))
	assert.Equal(t, []EventKind{EventClearCanvas}, kinds(drain(c2)))

	require.NoError(t, s3.Join("abc", Presence{}))
	assert.Empty(t, ofKind(drain(c3), EventCanvasData))
}

func TestMoveCursorCarriesPresence(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s2.Join("abc", bob))
	drain(c1)
	drain(c2)

	require.NoError(t, s1.MoveCursor(Cursor{X: 12.5, Y: -4}))

	assert.Empty(t, drain(c1))
	evs := drain(c2)
	require.Len(t, evs, 1)
	assert.Equal(t, EventCursorUpdate, evs[0].Kind)
	assert.Equal(t, "c1", evs[0].User)
	assert.Equal(t, Cursor{X: 12.5, Y: -4}, evs[0].Cursor)
	assert.Equal(t, ada, evs[0].Presence)
	assert.Equal(t, Cursor{X: 12.5, Y: -4}, s1.LastCursor())
}

func TestMoveCursorAtHighRate(t *testing.T) {
	hub := newTestHub(t)
	c2 := NewClient("c2", 4)
	s2 := hub.NewSession(c2)
	_, s1 := newPeer(hub, "c1")
	require.NoError(t, s2.Join("abc", bob))
	require.NoError(t, s1.Join("abc", ada))
	drain(c2)

	// The receiver's queue overflows; the sender never blocks or fails.
	for i := 0; i < 1000; i++ {
		require.NoError(t, s1.MoveCursor(Cursor{X: float64(i), Y: 1}))
	}
	assert.Len(t, drain(c2), 4)
	assert.Equal(t, Cursor{X: 999, Y: 1}, s1.LastCursor())
}

func TestAnnouncePresenceIsIdempotent(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	require.NoError(t, s1.Join("abc", Presence{}))
	require.NoError(t, s2.Join("abc", bob))
	drain(c1)
	drain(c2)

	require.NoError(t, s1.AnnouncePresence(ada))
	require.NoError(t, s1.AnnouncePresence(ada))

	room, _ := hub.Rooms().Lookup("abc")
	p, _ := room.Presence("c1")
	assert.Equal(t, ada, p)

	evs := drain(c2)
	require.Equal(t, []EventKind{EventUserInfoUpdate, EventUserInfoUpdate}, kinds(evs))
	for _, ev := range evs {
		assert.Equal(t, "c1", ev.User)
		assert.Equal(t, ada, ev.Presence)
	}
	assert.Empty(t, drain(c1))

	require.NoError(t, s2.MoveCursor(Cursor{X: 1, Y: 2}))
	assert.Equal(t, bob, drain(c1)[0].Presence)
}

func TestUnjoinedOperationsAreNoOps(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")

	assert.ErrorIs(t, s1.AppendStroke(diagonal), ErrNotJoined)
	assert.ErrorIs(t, s1.ReplaceLog([]Stroke{diagonal}), ErrNotJoined)
	assert.ErrorIs(t, s1.Clear(), ErrNotJoined)
	assert.ErrorIs(t, s1.MoveCursor(Cursor{X: 1, Y: 1}), ErrNotJoined)
	assert.ErrorIs(t, s1.AnnouncePresence(ada), ErrNotJoined)
	assert.ErrorIs(t, s1.Leave(), ErrNotJoined)

	assert.Empty(t, drain(c1))
	assert.Equal(t, Stats{}, hub.Stats())
}

func TestLastDepartureEvictsRoom(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")
	c4, s4 := newPeer(hub, "c4")

	require.NoError(t, s1.Join("xyz", ada))
	require.NoError(t, s1.ReplaceLog([]Stroke{diagonal}))
	s1.Disconnect()

	_, ok := hub.Rooms().Lookup("xyz")
	assert.False(t, ok)
	_, ok = hub.RoomInfo("xyz")
	assert.False(t, ok)

	require.NoError(t, s4.Join("xyz", bob))
	evs := drain(c4)
	assert.Empty(t, ofKind(evs, EventCanvasData))
	assert.Equal(t, []EventKind{EventUserCount}, kinds(evs))
	assert.Equal(t, 1, evs[0].Count)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s2.Join("abc", bob))
	drain(c2)

	s1.Disconnect()
	s1.Disconnect()
	s1.Disconnect()

	assert.Len(t, ofKind(drain(c2), EventUserCount), 1)
	select {
	case <-c1.Done():
	default:
		t.Fatal("client not closed after disconnect")
	}

	// Straggling events from a departed connection have no effect.
	assert.ErrorIs(t, s1.AppendStroke(diagonal), ErrNotJoined)
	assert.ErrorIs(t, s1.Join("abc", ada), ErrSessionEnded)
	assert.Empty(t, drain(c2))

	room, _ := hub.Rooms().Lookup("abc")
	assert.ElementsMatch(t, []string{"c2"}, room.Members())
}

func TestJoinAnotherRoomLeavesPrevious(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	require.NoError(t, s1.Join("r1", ada))
	require.NoError(t, s2.Join("r1", bob))
	drain(c1)
	drain(c2)

	require.NoError(t, s1.Join("r2", ada))

	r1, _ := hub.Rooms().Lookup("r1")
	r2, _ := hub.Rooms().Lookup("r2")
	assert.ElementsMatch(t, []string{"c2"}, r1.Members())
	assert.ElementsMatch(t, []string{"c1"}, r2.Members())
	_, stale := r1.Presence("c1")
	assert.False(t, stale)

	evs2 := drain(c2)
	require.Equal(t, []EventKind{EventUserCount}, kinds(evs2))
	assert.Equal(t, 1, evs2[0].Count)
	assert.Equal(t, "r2", s1.RoomID())
}

func TestRejoinSameRoomKeepsCanvas(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s1.ReplaceLog([]Stroke{diagonal}))
	drain(c1)

	require.NoError(t, s1.Join("abc", bob))

	evs := drain(c1)
	require.Equal(t, []EventKind{EventCanvasData, EventUserCount}, kinds(evs))
	assert.Equal(t, 1, evs[1].Count)
	room, _ := hub.Rooms().Lookup("abc")
	p, _ := room.Presence("c1")
	assert.Equal(t, bob, p)
}

func TestLeaveThenRejoin(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")
	require.NoError(t, s1.Join("abc", ada))
	require.NoError(t, s1.Leave())
	assert.Empty(t, s1.RoomID())

	require.NoError(t, s1.Join("abc", ada))
	assert.Equal(t, "abc", s1.RoomID())
}

func TestRoomsAreIsolated(t *testing.T) {
	hub := newTestHub(t)
	c1, s1 := newPeer(hub, "c1")
	c2, s2 := newPeer(hub, "c2")
	c3, s3 := newPeer(hub, "c3")
	require.NoError(t, s1.Join("r1", ada))
	require.NoError(t, s2.Join("r1", bob))
	require.NoError(t, s3.Join("r2", ada))
	drain(c1)
	drain(c2)
	drain(c3)

	require.NoError(t, s1.AppendStroke(diagonal))
	require.NoError(t, s1.MoveCursor(Cursor{X: 1, Y: 1}))
	require.NoError(t, s1.ReplaceLog([]Stroke{diagonal}))
	require.NoError(t, s1.Clear())
	require.NoError(t, s1.AnnouncePresence(bob))
	s2.Disconnect()

	assert.Empty(t, drain(c3))
	r2, _ := hub.Rooms().Lookup("r2")
	assert.ElementsMatch(t, []string{"c3"}, r2.Members())
}

func TestFanoutSurvivesFailedDelivery(t *testing.T) {
	hub := newTestHub(t)
	_, s1 := newPeer(hub, "c1")
	closed, sClosed := newPeer(hub, "closed")
	full := NewClient("full", 1)
	sFull := hub.NewSession(full)
	c4, s4 := newPeer(hub, "c4")

	require.NoError(t, sClosed.Join("abc", bob))
	require.NoError(t, sFull.Join("abc", bob))
	require.NoError(t, s4.Join("abc", bob))
	require.NoError(t, s1.Join("abc", ada))
	closed.Close()
	drain(c4)

	require.NoError(t, s1.AppendStroke(diagonal))

	evs := drain(c4)
	require.Len(t, evs, 1)
	assert.Equal(t, diagonal, evs[0].Stroke)
}

// Membership stays exact under concurrent joins and departures.
func TestConcurrentMembershipIsAccurate(t *testing.T) {
	hub := newTestHub(t)

	const peers = 32
	sessions := make([]*Session, peers)
	for i := range sessions {
		_, sessions[i] = newPeer(hub, fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			_ = s.Join("shared", Presence{})
			_ = s.MoveCursor(Cursor{X: float64(i), Y: 0})
			_ = s.ReplaceLog([]Stroke{diagonal})
			if i%2 == 1 {
				s.Disconnect()
			}
		}(i, s)
	}
	wg.Wait()

	room, ok := hub.Rooms().Lookup("shared")
	require.True(t, ok)
	want := make([]string, 0, peers/2)
	for i := 0; i < peers; i += 2 {
		want = append(want, fmt.Sprintf("c%d", i))
	}
	assert.ElementsMatch(t, want, room.Members())
	assert.Equal(t, Stats{Rooms: 1, Members: peers / 2}, hub.Stats())

	for i := 0; i < peers; i += 2 {
		sessions[i].Disconnect()
	}
	_, ok = hub.Rooms().Lookup("shared")
	assert.False(t, ok)
}

func TestConcurrentChurnOnOneRoom(t *testing.T) {
	hub := newTestHub(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, s := newPeer(hub, fmt.Sprintf("c%d", i))
			for j := 0; j < 50; j++ {
				_ = s.Join("churn", Presence{})
				_ = s.Leave()
			}
		}(i)
	}
	wg.Wait()

	_, ok := hub.Rooms().Lookup("churn")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, hub.Stats())
}
