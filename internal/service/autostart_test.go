package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/webitel/liveapi-bridge/internal/domain/liveapi"
	"github.com/webitel/liveapi-bridge/internal/service/dto"
)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(_ context.Context, content string) error {
	return m.Called(content).Error(0)
}

func TestFormatSchedule(t *testing.T) {
	got := FormatSchedule(dto.ScheduleAutostart{
		LobbyChannelName: "lobby-1",
		MinMaxTeams:      "2-20",
		MinMaxTeamSize:   "3",
		TimeToWait:       "300",
		PrivateMessage:   "good luck",
		KeepAutostart:    "true",
	}, "tok-1")

	assert.Equal(t, `!schedule_autostart "lobby-1" 2-20 3 300 "tok-1" "good luck" true`, got)
}

func TestAutostart_SendLobbyToken(t *testing.T) {
	h := newHarness(t)
	h.attach(&fakeGame{reply: h.replyWith(h.frame(t, liveapi.KindLobbyPlayers, rosterJSON))})

	n := new(mockNotifier)
	n.On("Notify", "!schedule_autostart tok-1 false").Return(nil).Once()

	a := NewAutostart(h.requester(WithRequestTimeout(time.Second)), n)
	token, ok := a.SendLobbyToken(context.Background())

	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
	n.AssertExpectations(t)
}

func TestAutostart_NotifyFailureReportedAsFalse(t *testing.T) {
	h := newHarness(t)
	h.attach(&fakeGame{reply: h.replyWith(h.frame(t, liveapi.KindLobbyPlayers, rosterJSON))})

	n := new(mockNotifier)
	n.On("Notify", mock.Anything).Return(errors.New("403"))

	a := NewAutostart(h.requester(WithRequestTimeout(time.Second)), NewNotifierMiddleware(n, discard))
	token, ok := a.Schedule(context.Background(), dto.ScheduleAutostart{LobbyChannelName: "lobby"})

	assert.False(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestAutostart_NoLobby(t *testing.T) {
	h := newHarness(t)
	n := new(mockNotifier)

	a := NewAutostart(h.requester(WithRequestTimeout(50*time.Millisecond)), n)
	_, ok := a.SendLobbyToken(context.Background())

	assert.False(t, ok)
	n.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestNotifier_Disabled(t *testing.T) {
	err := NewNotifierMiddleware(disabledNotifier{}, discard).Notify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotifierDisabled)
}
