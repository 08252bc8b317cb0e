package kafka

import (
	"encoding/json"
	"fmt"
	"time"
)

// Row types carried on the import topic. Spreadsheet parsing happens upstream;
// each message is a batch of already-parsed rows of a single type.
const (
	RowTypeAccount      = "account"
	RowTypeSeller       = "seller"
	RowTypeManager      = "manager"
	RowTypeRelationship = "relationship"
	RowTypeRevenue      = "revenue"
)

// ImportMessage is a batch of parsed seed rows for one tenant
type ImportMessage struct {
	Type     string            `json:"type"`
	TenantID string            `json:"tenant_id"`
	BatchID  string            `json:"batch_id,omitempty"`
	Rows     []json.RawMessage `json:"rows"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	Import *ImportMessage
}

// ParseImportMessage parses the message value as an import batch
func (m *IncomingMessage) ParseImportMessage() error {
	var msg ImportMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if msg.TenantID == "" {
		msg.TenantID = m.Headers["tenant_id"]
	}
	if msg.TenantID == "" {
		return fmt.Errorf("import message missing tenant_id")
	}
	switch msg.Type {
	case RowTypeAccount, RowTypeSeller, RowTypeManager, RowTypeRelationship, RowTypeRevenue:
	default:
		return fmt.Errorf("unknown import row type %q", msg.Type)
	}
	m.Import = &msg
	return nil
}

// GetTenantID returns the tenant ID for this message
func (m *IncomingMessage) GetTenantID() string {
	if m.Import != nil {
		return m.Import.TenantID
	}
	return m.Headers["tenant_id"]
}
