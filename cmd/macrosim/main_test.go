package main

import "testing"

func TestScenarioConfig(t *testing.T) {
	cfg, err := scenarioConfig("regime-shift")
	if err != nil {
		t.Fatalf("scenarioConfig: %v", err)
	}
	if len(cfg.Schedule) != 2 || cfg.Schedule[1].Rate != 0.08 {
		t.Fatalf("unexpected schedule %+v", cfg.Schedule)
	}
	if _, err := scenarioConfig("boom"); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestReplicateSeedsStable(t *testing.T) {
	a := replicateSeeds(42, 4)
	b := replicateSeeds(42, 4)
	seen := make(map[int64]bool)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seed %d differs: %d vs %d", i, a[i], b[i])
		}
		if a[i] == 0 || seen[a[i]] {
			t.Fatalf("seed %d is zero or repeated: %d", i, a[i])
		}
		seen[a[i]] = true
	}
}

func TestEnvIntOrDefault(t *testing.T) {
	t.Setenv("MACROSIM_TEST_INT", "abc")
	if got := envIntOrDefault("MACROSIM_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
	t.Setenv("MACROSIM_TEST_INT", "12")
	if got := envIntOrDefault("MACROSIM_TEST_INT", 7); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}
