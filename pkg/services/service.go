package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

type (
	Service interface {
		Init() error
		Run(ctx context.Context)
		Stop()
	}
	Services interface {
		AddService(service ...Service)
		Run(ctx context.Context) error
	}
	Manager struct {
		log      Logger
		services []Service
		signals  []os.Signal
	}
)

func NewManager(log Logger) Services {
	return &Manager{log: log, signals: []os.Signal{os.Interrupt, syscall.SIGTERM}}
}

func (s *Manager) AddService(service ...Service) {
	s.services = append(s.services, service...)
}

// Run initializes and starts every service in order, then blocks until ctx
// is done or a termination signal arrives. Services are stopped in reverse.
func (s *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.log.Info("going to start services")
	for count, service := range s.services {
		if err := service.Init(); err != nil {
			s.stop(s.services[:count])
			return err
		}
		go service.Run(ctx)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, s.signals...)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		s.log.Info("received %s", sig)
	case <-ctx.Done():
	}
	cancel()
	s.stop(s.services)

	return nil
}

func (s *Manager) stop(services []Service) {
	s.log.Info("going to stop")
	for i := len(services) - 1; i >= 0; i-- {
		services[i].Stop()
	}
}
