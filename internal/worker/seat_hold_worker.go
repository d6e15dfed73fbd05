package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/service"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/logger"
)

// SeatHoldWorkerConfig contains configuration for the seat hold worker
type SeatHoldWorkerConfig struct {
	// ScanInterval is the interval between scans for lapsed holds and blocks
	ScanInterval time.Duration
	// BatchSize is the number of seats swept per scan
	BatchSize int
}

// DefaultSeatHoldWorkerConfig returns default configuration
func DefaultSeatHoldWorkerConfig() *SeatHoldWorkerConfig {
	return &SeatHoldWorkerConfig{
		ScanInterval: 30 * time.Second,
		BatchSize:    500,
	}
}

// SeatHoldWorker frees reserved seats whose hold lapsed and blocked seats
// whose block deadline passed
type SeatHoldWorker struct {
	seatService service.SeatService
	config      *SeatHoldWorkerConfig
	log         *logger.Logger
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool

	totalReleased  int64
	totalUnblocked int64
	lastScanTime   time.Time
}

// NewSeatHoldWorker creates a new seat hold worker
func NewSeatHoldWorker(seatService service.SeatService, config *SeatHoldWorkerConfig) *SeatHoldWorker {
	if config == nil {
		config = DefaultSeatHoldWorkerConfig()
	}

	return &SeatHoldWorker{
		seatService: seatService,
		config:      config,
		log:         logger.Get(),
		stopCh:      make(chan struct{}),
	}
}

// Start starts the seat hold worker
func (w *SeatHoldWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("seat hold worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting seat hold worker")

	w.wg.Add(1)
	go w.scanLapsedSeats(ctx)

	return nil
}

// Stop stops the seat hold worker
func (w *SeatHoldWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping seat hold worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Seat hold worker stopped")
}

func (w *SeatHoldWorker) scanLapsedSeats(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.processLapsedSeats(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processLapsedSeats(ctx)
		}
	}
}

func (w *SeatHoldWorker) processLapsedSeats(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	released, err := w.seatService.ReleaseExpiredHolds(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to release expired seat holds: %v", err))
	} else if released > 0 {
		w.mu.Lock()
		w.totalReleased += released
		w.mu.Unlock()
		w.log.Info(fmt.Sprintf("Released %d expired seat holds", released))
	}

	unblocked, err := w.seatService.UnblockExpired(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to unblock expired seat blocks: %v", err))
	} else if unblocked > 0 {
		w.mu.Lock()
		w.totalUnblocked += unblocked
		w.mu.Unlock()
		w.log.Info(fmt.Sprintf("Unblocked %d seats past their block deadline", unblocked))
	}
}

// GetStats returns worker statistics
func (w *SeatHoldWorker) GetStats() *SeatHoldWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &SeatHoldWorkerStats{
		IsRunning:      w.running,
		TotalReleased:  w.totalReleased,
		TotalUnblocked: w.totalUnblocked,
		LastScanTime:   w.lastScanTime,
	}
}

// SeatHoldWorkerStats contains worker statistics
type SeatHoldWorkerStats struct {
	IsRunning      bool      `json:"is_running"`
	TotalReleased  int64     `json:"total_released"`
	TotalUnblocked int64     `json:"total_unblocked"`
	LastScanTime   time.Time `json:"last_scan_time"`
}
