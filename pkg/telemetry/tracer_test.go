package telemetry

import (
	"context"
	"testing"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	tel, err := Init(context.Background(), &Config{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Init() error = %v, want nil", err)
	}
	if tel.Tracer() == nil {
		t.Fatal("expected a no-op tracer, got nil")
	}

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v, want nil", err)
	}
}

func TestGetTraceID_NoActiveSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Fatalf("GetTraceID() = %q, want empty string for a bare context", id)
	}
}
