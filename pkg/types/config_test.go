package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cfg := Config{DataDir: "/tmp/lawstore", Durability: DurabilityVolatile}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg = Config{DataDir: "/tmp/lawstore"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty durability should default to volatile: %v", err)
	}

	cfg = Config{Durability: DurabilityDurable}
	if err := cfg.Validate(); !errors.Is(err, ErrDataDirEmpty) {
		t.Errorf("expected ErrDataDirEmpty, got %v", err)
	}

	cfg = Config{DataDir: "/tmp/lawstore", Durability: "sometimes"}
	if err := cfg.Validate(); !errors.Is(err, ErrDurabilityUnknown) {
		t.Errorf("expected ErrDurabilityUnknown, got %v", err)
	}
}

func TestConfigDurable(t *testing.T) {
	if (Config{DataDir: "x"}).Durable() {
		t.Error("empty durability should not be durable")
	}
	if (Config{DataDir: "x", Durability: DurabilityVolatile}).Durable() {
		t.Error("volatile should not be durable")
	}
	if !(Config{DataDir: "x", Durability: DurabilityDurable}).Durable() {
		t.Error("durable mode not reported")
	}
}
