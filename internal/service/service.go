package service

import (
	"github.com/jonboulle/clockwork"

	"lockout_web/internal/cf"
	"lockout_web/internal/repository"
	"lockout_web/pkg/config"
)

type Services struct {
	Room             *RoomService
	Pollers          *PollerManager
	WebSocketManager *WebSocketManager
}

func NewServices(repos *repository.Repositories, client *cf.Client, cfg *config.Config) *Services {
	clock := clockwork.NewRealClock()

	wsManager := NewWebSocketManager()
	sampler := NewProblemSampler(cf.NewProblemCache(client, cfg.CF.CacheTTL(), clock))
	detector := NewSolveDetector(client)
	pollers := NewPollerManager(repos.Room, detector, wsManager, clock,
		cfg.Poller.Interval(), cfg.Poller.InitialDelay(), cfg.Poller.ProblemDelay())
	roomService := NewRoomService(repos.Room, sampler, pollers, wsManager, clock)

	wsManager.Snapshot = roomService.GetRoom

	return &Services{
		Room:             roomService,
		Pollers:          pollers,
		WebSocketManager: wsManager,
	}
}
