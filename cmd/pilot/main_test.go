package main

import (
	"testing"

	"github.com/wrenlab/pilot/internal/config"
)

func TestBuildClientRejectsUnknownProvider(t *testing.T) {
	_, err := buildClient(config.EndpointConfig{Provider: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected an error for an unrecognized provider")
	}
}

func TestBuildClientKnownProviders(t *testing.T) {
	for _, provider := range []string{"openai", "google", "anthropic"} {
		client, err := buildClient(config.EndpointConfig{Provider: provider, Model: "test-model", APIKey: "k"})
		if err != nil {
			t.Fatalf("provider %q: unexpected error: %v", provider, err)
		}
		if client == nil {
			t.Fatalf("provider %q: expected a client", provider)
		}
	}
}

func TestBuildModelManagerRequiresAnEnabledEndpoint(t *testing.T) {
	cfg := config.Default()
	if _, err := buildModelManager(cfg); err == nil {
		t.Fatal("expected an error when no endpoints are configured")
	}
}
