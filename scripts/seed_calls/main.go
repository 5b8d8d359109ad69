package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/voice-call-analytics/internal/adapter/repository"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/database"
	"github.com/johnquangdev/voice-call-analytics/pkg/config"
	"github.com/johnquangdev/voice-call-analytics/pkg/jobcontext"
)

var languages = []string{"en", "es", "vi", "fr"}

func main() {
	days := flag.Int("days", 7, "number of past days to seed")
	perDay := flag.Int("per-day", 20, "calls per day")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	log.Println("🚀 Seeding demo voice calls...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	ctx, cancel := jobcontext.Begin(context.Background(), "seed_calls", 0)
	defer cancel()
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	repo := repository.NewCallRepository(db)
	rng := rand.New(rand.NewSource(*seed))
	today := time.Now().UTC().Truncate(24 * time.Hour)

	created := 0
	for d := 0; d < *days; d++ {
		day := today.AddDate(0, 0, -d)
		for i := 0; i < *perDay; i++ {
			call := demoCall(rng, day)
			err := jobcontext.Retry(ctx, 3, 200*time.Millisecond, func(ctx context.Context) error {
				return repo.Upsert(ctx, &call)
			})
			if err != nil {
				log.Printf("❌ Failed to store call %s: %v", call.CallID, err)
				continue
			}
			created++
		}
	}

	log.Printf("✅ Seeded %d calls over %d day(s) (run %s)", created, *days, jobcontext.RunID(ctx))
}

func demoCall(rng *rand.Rand, day time.Time) entities.VoiceCall {
	initiated := day.Add(time.Duration(rng.Intn(86400)) * time.Second)
	turns := 2 + rng.Intn(12)
	duration := float64(turns)*8 + rng.Float64()*20
	isNew := rng.Intn(4) == 0

	items := make([]map[string]any, 0, turns)
	for t := 0; t < turns; t++ {
		id := fmt.Sprintf("item_%d", t)
		if t%2 == 0 {
			items = append(items, map[string]any{
				"id":      id,
				"type":    "message",
				"role":    "user",
				"content": []string{"demo user turn"},
				"metrics": map[string]float64{
					"transcription_delay": 0.3 + rng.Float64()*1.8,
					"end_of_turn_delay":   0.4 + rng.Float64()*2.0,
				},
			})
			continue
		}
		llm := 0.6 + rng.ExpFloat64()*1.2
		tts := 0.15 + rng.Float64()*0.6
		items = append(items, map[string]any{
			"id":      id,
			"type":    "message",
			"role":    "assistant",
			"content": []string{"demo assistant turn"},
			"metrics": map[string]float64{
				"llm_node_ttft": llm,
				"tts_node_ttfb": tts,
				"e2e_latency":   llm + tts + 0.3 + rng.Float64(),
			},
		})
	}
	transcript, _ := json.Marshal(map[string]any{"items": items})

	callType := "daily"
	if isNew {
		callType = "welcome"
	}
	status := "completed"
	if rng.Intn(10) == 0 {
		status = "failed"
	}

	return entities.VoiceCall{
		CallID:          uuid.NewString(),
		UserID:          fmt.Sprintf("demo-user-%02d", rng.Intn(25)),
		CallType:        callType,
		Language:        languages[rng.Intn(len(languages))],
		AgentName:       "demo-agent",
		IsNewUser:       isNew,
		IsUserInitiated: rng.Intn(2) == 0,
		InitiatedAt:     initiated,
		DurationSeconds: &duration,
		Status:          status,
		Transcript:      string(transcript),
		TotalTurns:      turns,
		Timezone:        "UTC",
	}
}
