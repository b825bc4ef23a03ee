package services

import (
	"context"
	"encoding/json"
	"time"

	"PrintStation/app/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Socket message types exchanged with the backend.
const (
	messageTypeRegister   = "register"
	messageTypeRegistered = "registered"
	messageTypePing       = "ping"
	messageTypePong       = "pong"
	messageTypeNewOrder   = "emitir_pedido_cozinha"
	messageTypeStatus     = "status"
	messageTypeUnregister = "unregister"
)

// reconnectDelay is how long the listener waits before redialing after a
// failed or dropped connection.
const reconnectDelay = 5 * time.Second

type socketMessage struct {
	Type     string          `json:"type"`
	AgentKey string          `json:"agent_key,omitempty"`
	Carrinho string          `json:"carrinho,omitempty"`
	Order    json.RawMessage `json:"order,omitempty"`

	// status reply fields
	QueueSize int      `json:"queue_size,omitempty"`
	Paused    bool     `json:"paused,omitempty"`
	LogLines  []string `json:"log_lines,omitempty"`
}

// SocketService is the push path: a websocket client that registers with
// the backend and receives live order events, feeding them into the queue
// through the same normalize/dedup pipeline as the poller.
type SocketService struct {
	url      string
	cartCode string
	agentKey string
	queue    *QueueService
	logger   *LoggerService
}

// NewSocketService creates the push listener. url may be empty, in which
// case Run is a no-op and the poller alone drives the queue.
func NewSocketService(url, cartCode string, queue *QueueService, logger *LoggerService) *SocketService {
	return &SocketService{
		url:      url,
		cartCode: cartCode,
		agentKey: uuid.NewString(),
		queue:    queue,
		logger:   logger,
	}
}

// Run dials the backend and consumes events until ctx is cancelled,
// reconnecting after every drop. Intended to run on its own goroutine.
func (s *SocketService) Run(ctx context.Context) {
	if s.url == "" {
		s.logger.LogWarning("SOCKET_URL não configurado; operando apenas com polling.")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.logger.LogWarning("Falha na conexão com o socket: %v. Nova tentativa em %v...", err, reconnectDelay)
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
			continue
		}

		s.logger.LogInfo("Conectado ao socket.")
		s.handleConnection(ctx, conn)
		conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
			s.logger.LogInfo("Socket desconectado. Reconectando em %v...", reconnectDelay)
			if !sleepCtx(ctx, reconnectDelay) {
				return
			}
		}
	}
}

func (s *SocketService) handleConnection(ctx context.Context, conn *websocket.Conn) {
	// close the connection when ctx is cancelled so ReadJSON unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	reg := socketMessage{
		Type:     messageTypeRegister,
		AgentKey: s.agentKey,
		Carrinho: s.cartCode,
	}
	if err := conn.WriteJSON(reg); err != nil {
		s.logger.LogWarning("Falha ao registrar no socket: %v", err)
		return
	}

	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				s.logger.LogWarning("Erro de leitura no socket: %v", err)
			}
			return
		}

		switch msg.Type {
		case messageTypeRegistered:
			s.logger.LogInfo("Registrado no servidor de eventos.")

		case messageTypePing:
			conn.WriteJSON(socketMessage{Type: messageTypePong, AgentKey: s.agentKey})

		case messageTypeNewOrder:
			s.handleOrder(msg.Order)

		case messageTypeStatus:
			// remote status view: queue state plus the recent log ring,
			// the headless stand-in for the operator screen
			conn.WriteJSON(socketMessage{
				Type:      messageTypeStatus,
				AgentKey:  s.agentKey,
				QueueSize: s.queue.Size(),
				Paused:    s.queue.Paused(),
				LogLines:  s.logger.Recent(),
			})

		case messageTypeUnregister:
			s.logger.LogInfo("Servidor solicitou desconexão.")
			return

		default:
			s.logger.LogWarning("Tipo de mensagem desconhecido: %s", msg.Type)
		}
	}
}

// handleOrder parses a pushed order and routes it through the shared
// ingest pipeline. Malformed events are logged and dropped; they must not
// kill the read loop.
func (s *SocketService) handleOrder(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		s.logger.LogWarning("Pedido recebido via socket com JSON inválido: %v", err)
		return
	}
	s.queue.IngestOrder(order, models.OriginPush)
}

// sleepCtx waits d, returning false when ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
