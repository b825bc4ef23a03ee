package services

import (
	"strings"
	"sync"

	"PrintStation/app/config"
	"PrintStation/app/database"
	"PrintStation/app/escpos"
	"PrintStation/app/models"
)

// DocumentPrinter delivers a composed document to the physical printer.
// Implemented by PrinterService.
type DocumentPrinter interface {
	Print(doc string) error
	Width() int
}

// PrintedMarker reports printed order ids back to the backend.
// Implemented by BackendService.
type PrintedMarker interface {
	UpdatePrinted(ids []string) error
}

// QueueService is the FIFO print queue and its drainer: one instance per
// output sink (kitchen, bar). Jobs print in strict enqueue order; a single
// drain goroutine is ever active; individual failures are logged and the
// queue proceeds. A failed or stuck job never blocks the orders behind it.
type QueueService struct {
	mu       sync.Mutex
	jobs     []models.PrintJob
	draining bool
	paused   bool

	printer DocumentPrinter
	backend PrintedMarker
	dedup   *DedupService
	store   *database.Store // optional audit log
	logger  *LoggerService
	header  config.StoreConfig

	// plain selects the undecorated station layout (no cut).
	plain bool
}

// NewQueueService creates a queue bound to one printer sink.
func NewQueueService(
	printer DocumentPrinter,
	backend PrintedMarker,
	dedup *DedupService,
	store *database.Store,
	logger *LoggerService,
	header config.StoreConfig,
	plain bool,
) *QueueService {
	return &QueueService{
		printer: printer,
		backend: backend,
		dedup:   dedup,
		store:   store,
		logger:  logger,
		header:  header,
		plain:   plain,
	}
}

// IngestOrder normalizes a wire order, filters it through the dedup
// registry and enqueues the resulting job. Both the push path and the
// poller go through here, so an order arriving on both enqueues once.
// Returns true when a job was enqueued.
func (s *QueueService) IngestOrder(order models.Order, origin models.Origin) bool {
	ids := order.CollectIDs()
	if s.dedup.Duplicate(ids) {
		s.logger.LogInfo("[%s] Pedido já processado (ids=%s), ignorando duplicata.",
			origin, strings.Join(ids, ", "))
		return false
	}

	job, ok := order.ToPrintJob(origin)
	if !ok {
		s.logger.LogWarning("[%s] Pedido sem itens válidos, ignorando.", origin)
		return false
	}

	// Mark-on-enqueue: ids are recorded now, not after a successful
	// print (see DESIGN.md for the trade-off).
	s.dedup.MarkAll(ids)
	s.Enqueue(job)
	return true
}

// Enqueue appends a job to the tail and triggers a drain attempt.
func (s *QueueService) Enqueue(job models.PrintJob) {
	if !job.HasContent() {
		s.logger.LogWarning("[%s] Job sem itens válidos recusado.", job.Origin)
		return
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	size := len(s.jobs)
	s.mu.Unlock()

	s.logger.LogInfo("[%s] Job na fila (%d na fila): %s (mesa/comanda: %s)",
		job.Origin, size, job.Summary(), orDash(job.Table))
	s.kick()
}

// kick starts the drain goroutine unless one is already running or the
// queue is paused (single-flight).
func (s *QueueService) kick() {
	s.mu.Lock()
	if s.draining || s.paused {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	go s.drain()
}

func (s *QueueService) drain() {
	defer func() {
		s.mu.Lock()
		s.draining = false
		pending := len(s.jobs)
		paused := s.paused
		s.mu.Unlock()
		if pending == 0 {
			s.logger.LogInfo("Fila vazia.")
		} else if !paused {
			// a job slipped in between the empty check and the flag
			// reset; restart the loop so it is not stranded
			s.kick()
		}
	}()

	for {
		s.mu.Lock()
		if s.paused {
			s.mu.Unlock()
			s.logger.LogInfo("Fila pausada.")
			return
		}
		if len(s.jobs) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		s.mu.Unlock()

		s.process(job)
	}
}

// process prints one job. Every failure is absorbed here: the queue must
// keep draining whatever happens to an individual job.
func (s *QueueService) process(job models.PrintJob) {
	if !job.HasContent() {
		s.logger.LogWarning("Job removido da fila sem itens válidos, ignorando.")
		s.audit(job, "skipped", "no renderable lines")
		return
	}

	s.logger.LogInfo("[%s] Imprimindo: %s (mesa/comanda: %s)",
		job.Origin, job.Summary(), orDash(job.Table))

	width := s.printer.Width()
	coupon := s.toCoupon(job)
	var doc string
	if s.plain {
		doc = escpos.ComposePlain(coupon, width)
	} else {
		doc = escpos.Compose(coupon, width)
	}

	if err := s.printer.Print(doc); err != nil {
		s.logger.LogError("Erro na impressão (ids=%s): %v", strings.Join(job.IDs, ", "), err)
		s.audit(job, "failed", err.Error())
		return
	}
	s.logger.LogInfo("Impressão concluída.")

	if job.ShouldMarkPrinted {
		s.markPrinted(job)
	}
	s.audit(job, "printed", "")
}

// markPrinted reports the job's ids as printed, one batched call per job.
// The physical receipt is already out, so a failure here only logs: the
// job stays done.
func (s *QueueService) markPrinted(job models.PrintJob) {
	if len(job.IDs) == 0 {
		s.logger.LogWarning("Nenhum ID encontrado para marcar como impresso.")
		return
	}
	if err := s.backend.UpdatePrinted(job.IDs); err != nil {
		s.logger.LogError("Falha ao marcar impresso (ids=%s): %v",
			strings.Join(job.IDs, ", "), err)
		return
	}
	s.logger.LogInfo("Marcado como impresso (ids=%s).", strings.Join(job.IDs, ", "))
}

func (s *QueueService) toCoupon(job models.PrintJob) escpos.Coupon {
	storeName := job.Sender
	if storeName == "" {
		storeName = s.header.Name
	}
	lines := make([]escpos.Line, 0, len(job.Lines))
	for _, l := range job.Lines {
		lines = append(lines, escpos.Line{
			Name:     l.Name,
			Quantity: l.Quantity,
			Options:  l.Options,
			Note:     l.Note,
		})
	}
	return escpos.Coupon{
		StoreName:       storeName,
		Address1:        s.header.Address1,
		Address2:        s.header.Address2,
		Table:           job.Table,
		Time:            job.Timestamp,
		Sender:          job.Sender,
		Operator:        job.Operator,
		DeliveryAddress: job.DeliveryAddress,
		Deadline:        job.Deadline,
		Lines:           lines,
		LegacyText:      job.LegacyText,
	}
}

func (s *QueueService) audit(job models.PrintJob, outcome, detail string) {
	if s.store == nil {
		return
	}
	err := s.store.AppendPrintLog(&models.PrintLogEntry{
		OrderIDs: strings.Join(job.IDs, ","),
		Table:    job.Table,
		Origin:   string(job.Origin),
		Summary:  job.Summary(),
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.logger.LogWarning("Falha ao gravar histórico de impressão: %v", err)
	}
}

// Pause stops the drainer from picking new jobs. The in-flight job still
// completes.
func (s *QueueService) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	s.logger.LogInfo("Fila pausada pelo operador.")
}

// Resume re-enables draining and kicks the loop.
func (s *QueueService) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	s.logger.LogInfo("Fila retomada pelo operador.")
	s.kick()
}

// Clear discards every queued (not yet started) job.
func (s *QueueService) Clear() int {
	s.mu.Lock()
	cleared := len(s.jobs)
	s.jobs = nil
	s.mu.Unlock()
	s.logger.LogInfo("Fila limpa (%d item(ns) descartado(s)).", cleared)
	return cleared
}

// Size returns the number of queued jobs.
func (s *QueueService) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Busy reports whether a drain loop is currently running.
func (s *QueueService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draining
}

// Paused reports whether the queue is paused.
func (s *QueueService) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
