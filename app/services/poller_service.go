package services

import (
	"sync"
	"time"

	"PrintStation/app/models"
)

// defaultCheckingWatchdog resets the in-flight flag if a fetch hangs past
// this delay. The HTTP client has its own timeout; this is the safety net
// on top of it, not a cancellation.
const defaultCheckingWatchdog = 30 * time.Second

// PollerService periodically fetches unprinted orders from the backend
// and feeds them into the queue. It runs on startup (catch-up after a
// crash or offline period), on a fixed interval as a safety net behind
// the push path, and on demand.
type PollerService struct {
	backend  *BackendService
	queue    *QueueService
	logger   *LoggerService
	interval time.Duration
	watchdog time.Duration

	running  bool
	stopChan chan bool

	mu       sync.Mutex
	checking bool
}

// NewPollerService creates a poller feeding the given queue.
func NewPollerService(backend *BackendService, queue *QueueService, logger *LoggerService, interval time.Duration) *PollerService {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &PollerService{
		backend:  backend,
		queue:    queue,
		logger:   logger,
		interval: interval,
		watchdog: defaultCheckingWatchdog,
		stopChan: make(chan bool),
	}
}

// Start launches the poll loop with an immediate catch-up cycle.
func (s *PollerService) Start() {
	if s.running {
		return
	}
	s.running = true
	go s.run()
	s.logger.LogInfo("Poller iniciado (intervalo: %v).", s.interval)
}

func (s *PollerService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// initial catch-up
	s.PollNow()

	for {
		select {
		case <-ticker.C:
			// skip the cycle while the operator paused the queue or a
			// drain is mid-flight; the next tick retries
			if s.queue.Paused() || s.queue.Busy() {
				continue
			}
			s.PollNow()
		case <-s.stopChan:
			s.logger.LogInfo("Poller parado.")
			s.running = false
			return
		}
	}
}

// Stop halts the poll loop.
func (s *PollerService) Stop() {
	if s.running {
		s.stopChan <- true
	}
}

// PollNow performs one fetch-and-enqueue cycle. Every failure is logged
// and treated as "no pending orders this cycle"; the next cycle retries
// naturally. Returns the number of jobs enqueued.
func (s *PollerService) PollNow() int {
	s.mu.Lock()
	if s.checking {
		s.mu.Unlock()
		return 0
	}
	s.checking = true
	s.mu.Unlock()

	// if the fetch hangs, free the flag so later cycles are not locked
	// out forever. When the hung fetch eventually returns, its deferred
	// reset may clear a flag a newer cycle now owns, briefly allowing
	// overlapping fetches: the dedup registry absorbs the overlap, so
	// this stays a recovery measure rather than a cancellation.
	watchdog := time.AfterFunc(s.watchdog, func() {
		s.mu.Lock()
		s.checking = false
		s.mu.Unlock()
	})
	defer func() {
		watchdog.Stop()
		s.mu.Lock()
		s.checking = false
		s.mu.Unlock()
	}()

	orders, err := s.backend.GetPendingPrintOrders()
	if err != nil {
		s.logger.LogWarning("Erro ao buscar pendentes: %v", err)
		return 0
	}
	if len(orders) == 0 {
		return 0
	}

	added := 0
	for _, order := range orders {
		if s.queue.IngestOrder(order, models.OriginPoll) {
			added++
		}
	}
	if added > 0 {
		s.logger.LogInfo("%d pedido(s) pendente(s) adicionados à fila.", added)
	}
	return added
}
