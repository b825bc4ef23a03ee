package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"PrintStation/app/config"
	"PrintStation/app/database"
	"PrintStation/app/models"
	"PrintStation/app/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	selectBT := flag.String("select-bt", "", "select a paired short-range printer by device path and exit")
	selectNet := flag.String("select-net", "", "select a network printer by host[:port] and exit")
	paperWidth := flag.Int("paper", 0, "paper width in mm (58 or 80) to store with -select-bt/-select-net")
	listPrinters := flag.Bool("list-printers", false, "list paired and discovered printers and exit")
	testPrint := flag.Bool("test-print", false, "send a test coupon through the queue and exit")
	history := flag.Int("history", 0, "show the latest N print audit entries and exit")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := services.NewLoggerService(cfg.Agent.DataPath)
	defer logger.Close()

	store, err := database.Open(filepath.Join(cfg.Agent.DataPath, "printstation.db"))
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}

	printer := services.NewPrinterService(store, logger)
	backend := services.NewBackendService(cfg.Backend.APIURL, cfg.Backend.CartCode)
	dedup := services.NewDedupService()
	queue := services.NewQueueService(printer, backend, dedup, store, logger, cfg.Store, false)

	switch {
	case *listPrinters:
		runListPrinters(printer)
		return

	case *selectBT != "":
		if err := printer.SelectBluetoothPrinter(*selectBT, *selectBT); err != nil {
			log.Fatalf("Selection failed: %v", err)
		}
		savePaperWidth(store, *paperWidth)
		return

	case *selectNet != "":
		if err := printer.SelectNetworkPrinter(*selectNet); err != nil {
			log.Fatalf("Selection failed: %v", err)
		}
		savePaperWidth(store, *paperWidth)
		return

	case *testPrint:
		runTestPrint(queue, logger)
		return

	case *history > 0:
		runHistory(store, *history)
		return
	}

	runAgent(cfg, logger, store, backend, queue)
}

// runAgent runs the long-lived print station: push listener + poller +
// queue, until SIGINT/SIGTERM.
func runAgent(cfg *config.AppConfig, logger *services.LoggerService, store *database.Store, backend *services.BackendService, queue *services.QueueService) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := services.NewPollerService(backend, queue, logger, cfg.Agent.PollInterval)
	poller.Start()

	socket := services.NewSocketService(cfg.Backend.SocketURL, cfg.Backend.CartCode, queue, logger)
	go socket.Run(ctx)

	retention := services.NewRetentionService(store, logger, cfg.Agent.LogKeepDays)
	go retention.Run(ctx)

	logger.LogInfo("Estação de impressão iniciada (carrinho: %s).", cfg.Backend.CartCode)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.LogInfo("Encerrando...")
	cancel()
	poller.Stop()
}

func runListPrinters(printer *services.PrinterService) {
	paired, err := printer.ListPairedDevices()
	if err != nil {
		fmt.Printf("Paired devices: error: %v\n", err)
	} else {
		fmt.Println("Paired devices:")
		for _, d := range paired {
			fmt.Printf("  %s\n", d.Address)
		}
		if len(paired) == 0 {
			fmt.Println("  (none)")
		}
	}

	fmt.Println("Network printers (mDNS, 3s):")
	discovered, err := printer.DiscoverNetworkPrinters(3 * time.Second)
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	for _, d := range discovered {
		fmt.Printf("  %s (%s)\n", d.Address, d.Name)
	}
	if len(discovered) == 0 {
		fmt.Println("  (none)")
	}
}

// runTestPrint pushes a manual-origin job through the real queue so the
// whole pipeline is exercised, not just the transport.
func runTestPrint(queue *services.QueueService, logger *services.LoggerService) {
	queue.Enqueue(models.PrintJob{
		IDs:   []string{uuid.NewString()},
		Table: "TESTE",
		Lines: []models.OrderLine{
			{Name: "Comprovante de Teste", Quantity: 1},
		},
		Timestamp:         time.Now().Format("2006-01-02 15:04:05"),
		ShouldMarkPrinted: false,
		Origin:            models.OriginManual,
	})

	// the drainer is asynchronous; give it a moment to finish
	for i := 0; i < 100 && (queue.Size() > 0 || queue.Busy()); i++ {
		time.Sleep(100 * time.Millisecond)
	}
	logger.LogInfo("Impressão de teste finalizada.")
}

func runHistory(store *database.Store, limit int) {
	entries, err := store.RecentPrintLog(limit)
	if err != nil {
		log.Fatalf("Could not read print history: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No print history.")
		return
	}
	for _, e := range entries {
		detail := ""
		if e.Detail != "" {
			detail = " (" + e.Detail + ")"
		}
		fmt.Printf("%s  %-7s  %-5s  mesa %-6s  ids=%-12s  %s%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Outcome, e.Origin, e.Table, e.OrderIDs, e.Summary, detail)
	}
}

func savePaperWidth(store *database.Store, width int) {
	if width != 58 && width != 80 {
		return
	}
	sel, err := store.GetPrinterSelection()
	if err != nil {
		return
	}
	sel.PaperWidth = width
	if err := store.SavePrinterSelection(sel); err != nil {
		log.Printf("Warning: could not store paper width: %v", err)
	}
}
