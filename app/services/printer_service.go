package services

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"PrintStation/app/database"
	"PrintStation/app/models"

	"github.com/grandcat/zeroconf"
	"go.bug.st/serial"
)

// DefaultPrinterPort is the raw-socket port thermal network printers
// listen on.
const DefaultPrinterPort = 9100

// Transport is one way of reaching a thermal printer. SendText either
// completes or fails; there is no partial-success state.
type Transport interface {
	Init() error
	Connect(address string) error
	SendText(doc string) error
	Close() error
}

// PairedDevice describes a selectable printer.
type PairedDevice struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// BluetoothTransport talks to a short-range printer through its RFCOMM
// serial device.
type BluetoothTransport struct {
	port serial.Port
	mode *serial.Mode
}

// NewBluetoothTransport creates a transport for paired serial printers.
func NewBluetoothTransport() *BluetoothTransport {
	return &BluetoothTransport{mode: &serial.Mode{BaudRate: 9600}}
}

// Init is a no-op for serial devices; the underlying stack needs no
// global setup. Kept so both transports share one contract.
func (t *BluetoothTransport) Init() error { return nil }

// Connect opens the device at the given path.
func (t *BluetoothTransport) Connect(address string) error {
	port, err := serial.Open(address, t.mode)
	if err != nil {
		return fmt.Errorf("failed to open printer device %s: %w", address, err)
	}
	t.port = port
	return nil
}

// SendText writes the document to the device.
func (t *BluetoothTransport) SendText(doc string) error {
	if t.port == nil {
		return fmt.Errorf("printer device not connected")
	}
	if _, err := t.port.Write([]byte(doc)); err != nil {
		return fmt.Errorf("failed to write to printer: %w", err)
	}
	return nil
}

// Close releases the device.
func (t *BluetoothTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// NetworkTransport talks to a printer over a raw TCP socket on the
// standard JetDirect port.
type NetworkTransport struct {
	conn    net.Conn
	port    int
	timeout time.Duration
}

// NewNetworkTransport creates a transport for host:port printers.
func NewNetworkTransport(port int) *NetworkTransport {
	if port <= 0 {
		port = DefaultPrinterPort
	}
	return &NetworkTransport{port: port, timeout: 10 * time.Second}
}

// Init is a no-op for TCP printers.
func (t *NetworkTransport) Init() error { return nil }

// Connect dials the printer. Address may carry an explicit port.
func (t *NetworkTransport) Connect(address string) error {
	address = t.target(address)
	conn, err := net.DialTimeout("tcp", address, t.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to network printer at %s: %w", address, err)
	}
	t.conn = conn
	return nil
}

// target appends the configured port when address carries none.
// JoinHostPort brackets bare IPv6 hosts, which a plain Sprintf would
// misbuild.
func (t *NetworkTransport) target(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, strconv.Itoa(t.port))
}

// SendText writes the document to the socket.
func (t *NetworkTransport) SendText(doc string) error {
	if t.conn == nil {
		return fmt.Errorf("printer not connected")
	}
	t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	if _, err := t.conn.Write([]byte(doc)); err != nil {
		return fmt.Errorf("failed to write to printer: %w", err)
	}
	return nil
}

// Close closes the socket.
func (t *NetworkTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// PrinterService owns the persisted printer selection and performs the
// actual document delivery. It is constructed and injected explicitly;
// nothing looks it up globally.
type PrinterService struct {
	store  *database.Store
	logger *LoggerService

	// newTransport builds a transport for a selection; replaceable in
	// tests.
	newTransport func(sel *models.PrinterSelection) Transport
}

// NewPrinterService creates a new printer service.
func NewPrinterService(store *database.Store, logger *LoggerService) *PrinterService {
	s := &PrinterService{store: store, logger: logger}
	s.newTransport = func(sel *models.PrinterSelection) Transport {
		if sel.Type == models.PrinterTypeNetwork {
			return NewNetworkTransport(sel.Port)
		}
		return NewBluetoothTransport()
	}
	return s
}

// ListPairedDevices enumerates paired short-range printers (exposed as
// serial devices).
func (s *PrinterService) ListPairedDevices() ([]PairedDevice, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial devices: %w", err)
	}
	devices := make([]PairedDevice, 0, len(ports))
	for _, port := range ports {
		devices = append(devices, PairedDevice{Address: port, Name: port})
	}
	return devices, nil
}

// DiscoverNetworkPrinters browses mDNS for raw-socket thermal printers.
func (s *PrinterService) DiscoverNetworkPrinters(timeout time.Duration) ([]PairedDevice, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var devices []PairedDevice
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			if len(entry.AddrIPv4) == 0 {
				continue
			}
			devices = append(devices, PairedDevice{
				Address: fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port),
				Name:    entry.Instance,
			})
		}
	}()

	if err := resolver.Browse(ctx, "_pdl-datastream._tcp", "local.", entries); err != nil {
		return nil, fmt.Errorf("mDNS browse failed: %w", err)
	}
	<-ctx.Done()
	<-done
	return devices, nil
}

// SelectBluetoothPrinter persists a short-range printer selection.
func (s *PrinterService) SelectBluetoothPrinter(address, name string) error {
	if address == "" {
		return fmt.Errorf("printer address is required")
	}
	err := s.store.SavePrinterSelection(&models.PrinterSelection{
		Type:    models.PrinterTypeBluetooth,
		Address: address,
		Name:    name,
	})
	if err != nil {
		return err
	}
	s.logger.LogInfo("Impressora Bluetooth selecionada: %s (%s)", name, address)
	return nil
}

// SelectNetworkPrinter persists a network printer selection. Host may
// carry an explicit port; otherwise 9100 is assumed.
func (s *PrinterService) SelectNetworkPrinter(host string) error {
	if host == "" {
		return fmt.Errorf("printer host is required")
	}
	port := DefaultPrinterPort
	if h, p, err := net.SplitHostPort(host); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid printer port %q", p)
		}
		host = h
		port = n
	}
	err := s.store.SavePrinterSelection(&models.PrinterSelection{
		Type:    models.PrinterTypeNetwork,
		Address: host,
		Port:    port,
		Name:    host,
	})
	if err != nil {
		return err
	}
	s.logger.LogInfo("Impressora de rede selecionada: %s:%d", host, port)
	return nil
}

// Width returns the column count for the selected paper, defaulting to
// 32 (58mm) when nothing is selected yet.
func (s *PrinterService) Width() int {
	sel, err := s.store.GetPrinterSelection()
	if err != nil {
		return 32
	}
	return sel.Columns()
}

// Print delivers one composed document to the selected printer: connect,
// send, close. Init failures are swallowed (drivers commonly fail when
// already initialized); connect and send failures propagate.
func (s *PrinterService) Print(doc string) error {
	sel, err := s.store.GetPrinterSelection()
	if err != nil {
		return err
	}

	transport := s.newTransport(sel)
	if err := transport.Init(); err != nil {
		s.logger.LogWarning("Init da impressora falhou (ignorado): %v", err)
	}
	if err := transport.Connect(sel.Address); err != nil {
		return err
	}
	defer transport.Close()

	return transport.SendText(doc)
}
