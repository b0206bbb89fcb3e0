package storage

import "bytes"

type Message struct {
	ID            string `json:"id"`
	CeremonyID    string `json:"ceremony_id"`
	Event         string `json:"event"`
	Data          []byte `json:"data"`
	Signature     []byte `json:"signature"`
	SenderAddr    string `json:"sender_addr"`
	RecipientAddr string `json:"recipient_addr"`
	Offset        uint64 `json:"offset"`
}

// Bytes returns the message fields covered by the sender's signature.
// The ID and the Offset are assigned by the storage and are excluded.
func (m *Message) Bytes() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(m.CeremonyID)
	buf.WriteString(m.Event)
	buf.Write(m.Data)
	buf.WriteString(m.SenderAddr)
	buf.WriteString(m.RecipientAddr)
	return buf.Bytes()
}

type Storage interface {
	Send(messages ...Message) error
	GetMessages(offset uint64) ([]Message, error)
	IgnoreMessages(messages []string, useOffset bool) error
	Close() error
}
