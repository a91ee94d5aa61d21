package main

import (
	"context"
	"fmt"
	"log"
)

func authorize(ctx context.Context, config *Config) {
	db, session := openSession(config)
	defer db.Close()

	fmt.Printf("🚀 Requesting %s calendar access for account %s...\n", config.Provider, config.Account)

	state := session.Gate.Request(ctx)
	if state != PermissionGranted {
		fmt.Printf("❌ Calendar access %s: %v\n", state, session.Gate.Err())
		return
	}
	fmt.Printf("✅ Calendar access %s\n", state)
}

func linkRoutine(config *Config, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: calgate link <routine> <event-id>...")
		return
	}
	db, err := openDB(".calgate.db")
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	routine, eventIDs := args[0], args[1:]
	if err := NewRoutineStore(db).Link(routine, eventIDs); err != nil {
		log.Fatalf("Error linking events: %v", err)
	}
	fmt.Printf("✅ %d event(s) linked to routine %s\n", len(eventIDs), routine)
}
