package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/service"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/logger"
)

// ExpiryWorkerConfig contains configuration for the purchase expiry worker
type ExpiryWorkerConfig struct {
	// ScanInterval is the interval between scans for stale pending purchases
	ScanInterval time.Duration
	// BatchSize is the number of purchases expired per scan
	BatchSize int
}

// DefaultExpiryWorkerConfig returns default configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: 1 * time.Minute,
		BatchSize:    100,
	}
}

// ExpiryWorker cancels pending purchases whose payment never arrived.
// Expiry never touches sold counters because pending purchases hold no
// inventory.
type ExpiryWorker struct {
	purchaseService service.PurchaseService
	config          *ExpiryWorkerConfig
	log             *logger.Logger
	stopCh          chan struct{}
	wg              sync.WaitGroup
	mu              sync.Mutex
	running         bool

	totalExpired     int64
	lastScanTime     time.Time
	lastExpiredCount int64
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(purchaseService service.PurchaseService, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil {
		config = DefaultExpiryWorkerConfig()
	}

	return &ExpiryWorker{
		purchaseService: purchaseService,
		config:          config,
		log:             logger.Get(),
		stopCh:          make(chan struct{}),
	}
}

// Start starts the expiry worker
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiry worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting purchase expiry worker")

	w.wg.Add(1)
	go w.scanStalePurchases(ctx)

	return nil
}

// Stop stops the expiry worker
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping purchase expiry worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Purchase expiry worker stopped")
}

func (w *ExpiryWorker) scanStalePurchases(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.processStalePurchases(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processStalePurchases(ctx)
		}
	}
}

func (w *ExpiryWorker) processStalePurchases(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	expired, err := w.purchaseService.ExpireStalePending(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to expire stale purchases: %v", err))
		return
	}

	w.mu.Lock()
	w.lastExpiredCount = expired
	w.totalExpired += expired
	w.mu.Unlock()

	if expired > 0 {
		w.log.Info(fmt.Sprintf("Expired %d stale pending purchases", expired))
	}
}

// GetStats returns worker statistics
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// ExpiryWorkerStats contains worker statistics
type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int64     `json:"last_expired_count"`
}
