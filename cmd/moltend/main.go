package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/rawblock/molten/internal/checkpoint"
	"github.com/rawblock/molten/internal/molten"
	"github.com/rawblock/molten/internal/observer"
	"github.com/rawblock/molten/internal/surface"
)

func main() {
	log.Println("Starting Molten inference engine...")

	// ─── Required Environment Variables ─────────────────────────────────
	// RULES_FILE and SIGNAL_FILE are surface-syntax documents: the rule
	// table and the initial diffusion signal. There are no fallback
	// defaults — an engine with no rules and no signal has nothing to do.
	// ────────────────────────────────────────────────────────────────────

	rulesPath := requireEnv("RULES_FILE")
	signalPath := requireEnv("SIGNAL_FILE")

	rulesDoc, err := parseFile(rulesPath)
	if err != nil {
		log.Fatalf("FATAL: failed to parse rule table from %s: %v", rulesPath, err)
	}
	signalDoc, err := parseFile(signalPath)
	if err != nil {
		log.Fatalf("FATAL: failed to parse signal from %s: %v", signalPath, err)
	}

	// Intern both surface documents into an arena before building the
	// rule table and signal from them: the arena's content-addressed
	// dedup lets the checkpoint snapshot below store source-document
	// structure once, even when rules repeat the same contexts.
	arena := molten.NewArena[string]()
	if _, err := arena.Insert(rulesDoc); err != nil {
		log.Fatalf("FATAL: failed to intern rule table: %v", err)
	}
	if _, err := arena.Insert(signalDoc); err != nil {
		log.Fatalf("FATAL: failed to intern signal: %v", err)
	}

	rules, err := surface.BuildRules(rulesDoc)
	if err != nil {
		log.Fatalf("FATAL: failed to build rule table from %s: %v", rulesPath, err)
	}
	signal, err := surface.BuildSignal(signalDoc)
	if err != nil {
		log.Fatalf("FATAL: failed to build signal from %s: %v", signalPath, err)
	}

	var store *checkpoint.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		store, err = checkpoint.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to checkpoint store, continuing without crash recovery. Error: %v", err)
			store = nil
		} else {
			defer store.Close()
			if err := store.InitSchema(); err != nil {
				log.Printf("Warning: checkpoint schema init failed: %v", err)
			}
		}
	}

	hub := observer.NewHub()
	go hub.Run()

	events := make(chan molten.Event, 256)
	go hub.Pump(events)

	graph := molten.NewHypergraph[string](molten.CoupleOnTranslate)
	graph.Observe(events)

	bound := 0
	if raw := os.Getenv("FIXED_BOUND"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("FATAL: FIXED_BOUND must be an integer, got %q", raw)
		}
		bound = n
	}

	inference, err := molten.Propagate(graph, signal, rules, bound)
	if err != nil {
		log.Printf("Warning: propagation ended early: %v", err)
	} else {
		log.Printf("Propagation reached a fixed point after producing %d edges (run %s)", len(inference.Edges), inference.RunID)
	}

	if store != nil {
		ctx := context.Background()
		arenaBytes, err := molten.EncodeArena(arena)
		if err != nil {
			log.Printf("Warning: failed to encode source-document arena: %v", err)
		} else if graphBytes, err := molten.EncodeHypergraph(graph); err != nil {
			log.Printf("Warning: failed to encode hypergraph: %v", err)
		} else if err := store.Save(ctx, inference.RunID, arenaBytes, graphBytes, len(inference.Edges)); err != nil {
			log.Printf("Warning: failed to save checkpoint: %v", err)
		}
	}

	r := observer.SetupRouter(graph, hub)

	port := getEnvOrDefault("PORT", "7877")

	log.Printf("Observer API listening on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func parseFile(path string) (molten.Attribute[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return molten.Attribute[string]{}, err
	}
	return surface.ParseSource(string(data))
}

// requireEnv reads a required environment variable and exits if it is
// not set.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: required environment variable %s is not set", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
