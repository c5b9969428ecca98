package postgres

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestAuditDecompressZstdPayload(t *testing.T) {
	s, err := NewAuditService(nil)
	if err != nil {
		t.Fatalf("create audit service: %v", err)
	}

	payload := json.RawMessage(`{"old":{"quantity":30},"new":{"quantity":50}}`)
	entry := AuditEntry{
		ChangesCompressed: s.encoder.EncodeAll(payload, nil),
		CompressionAlgo:   CompressionZstd,
	}

	raw, err := s.Decompress(entry)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(raw, payload) {
		t.Errorf("payload mismatch: got %s, want %s", raw, payload)
	}
}

func TestAuditDecompressPassesThroughUncompressed(t *testing.T) {
	s, err := NewAuditService(nil)
	if err != nil {
		t.Fatalf("create audit service: %v", err)
	}

	payload := json.RawMessage(`{"balance":70}`)
	raw, err := s.Decompress(AuditEntry{
		Changes:         payload,
		CompressionAlgo: CompressionNone,
	})
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(raw, payload) {
		t.Errorf("payload mismatch: got %s, want %s", raw, payload)
	}
}
