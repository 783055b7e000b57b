package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEncodeRunStampsVersions(t *testing.T) {
	data, err := EncodeRun(sampleRun("run-1", time.Now()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.SchemaVersion != CurrentSchemaVersion || decoded.CodecVersion != CurrentCodecVersion {
		t.Fatalf("versions not stamped: %+v", decoded.VersionedRecord)
	}
	if decoded.RunID != "run-1" || len(decoded.Trajectory) != 2 {
		t.Fatalf("unexpected decoded run: %+v", decoded)
	}
}

func TestDecodeRunRejectsFutureVersion(t *testing.T) {
	run := sampleRun("run-2", time.Now())
	run.SchemaVersion = CurrentSchemaVersion + 1
	run.CodecVersion = CurrentCodecVersion
	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeRunRejectsGarbage(t *testing.T) {
	if _, err := DecodeRun([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
