package compare

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically tears down idle comparison sessions so abandoned
// maps do not accumulate markers, overlays and cached routes forever.
type Sweeper struct {
	service  *Service
	logger   *logrus.Logger
	interval time.Duration
	ttl      time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSweeper creates a sweeper that reaps sessions idle longer than ttl,
// checking every interval.
func NewSweeper(service *Service, interval, ttl time.Duration, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Sweeper{
		service:  service,
		logger:   logger,
		interval: interval,
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if swept := s.service.SweepIdle(s.ttl); swept > 0 {
				s.logger.WithFields(logrus.Fields{
					"swept": swept,
					"ttl":   s.ttl.String(),
				}).Info("Swept idle comparison sessions")
			}
		}
	}
}

// Stop gracefully stops the sweeper.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
