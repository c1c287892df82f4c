package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// RegisterMessageHandler installs the delivery callback for an
// instance, replacing any previous one. Returns false when the
// instance does not exist.
func (m *Manager) RegisterMessageHandler(instanceID string, handler types.MessageHandler) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[instanceID]; !ok {
		return false
	}
	m.handlers[instanceID] = handler
	return true
}

// UnregisterMessageHandler removes the instance's delivery callback
func (m *Manager) UnregisterMessageHandler(instanceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, instanceID)
}

// SendMessage delivers a message between instances. A broadcast target
// reaches every registered handler except the sender's own; a direct
// target reaches only that instance's handler, silently dropped when
// none is registered. Delivery is asynchronous and a panicking handler
// is isolated from the sender.
func (m *Manager) SendMessage(msg types.Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	type target struct {
		instanceID string
		handler    types.MessageHandler
	}
	var targets []target

	m.mu.RLock()
	if msg.To == types.Broadcast {
		for instID, h := range m.handlers {
			if instID == msg.From {
				continue
			}
			targets = append(targets, target{instID, h})
		}
	} else if h, ok := m.handlers[msg.To]; ok {
		targets = append(targets, target{msg.To, h})
	}
	m.mu.RUnlock()

	kind := "direct"
	if msg.To == types.Broadcast {
		kind = "broadcast"
	} else if len(targets) == 0 {
		kind = "dropped"
	}
	if m.metrics != nil {
		m.metrics.MessagesSent.WithLabelValues(kind).Inc()
	}

	for _, t := range targets {
		t := t
		go func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("message handler panicked",
						zap.String("instance_id", t.instanceID),
						zap.String("message_id", msg.ID),
						zap.Any("panic", r))
				}
			}()
			t.handler(msg)
		}()
	}
}
