package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain/model"
	pg "tryonjewel-server/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	sceneRepo := pg.NewSceneRepo(pool)
	modelRepo := pg.NewUserModelRepo(pool)
	userRepo := pg.NewUserRepo(pool)

	// If scenes already exist, do nothing.
	scenes, err := sceneRepo.ListAll(ctx, nil)
	if err != nil {
		log.Fatalf("list scenes: %v", err)
	}
	if len(scenes) > 0 {
		fmt.Printf("%d scenes already present. No changes.\n", len(scenes))
		for _, s := range scenes {
			fmt.Printf("  - %s (%s)\n", s.Name, s.ID)
		}
		return
	}

	seedScenes := []*model.Scene{
		{Name: "Studio White", Prompt: "clean white studio backdrop, soft diffused lighting, subtle shadow under the subject"},
		{Name: "Golden Hour Beach", Prompt: "sandy beach at golden hour, warm sunlight, gentle ocean bokeh in the background"},
		{Name: "Parisian Street", Prompt: "elegant Parisian street cafe, soft morning light, blurred haussmannian facades"},
		{Name: "Velvet Luxury", Prompt: "deep burgundy velvet backdrop, dramatic spotlight, luxurious jewelry-boutique mood"},
		{Name: "Botanical Garden", Prompt: "lush botanical garden, dappled natural light through leaves, fresh green tones"},
		{Name: "Evening Gala", Prompt: "upscale evening gala, warm chandelier light, softly blurred guests in formal wear"},
	}
	for _, s := range seedScenes {
		s.ID = model.NewID()
		s.Seeded = true
		s.CreatedAt = time.Now()
		if err := sceneRepo.Save(ctx, nil, s); err != nil {
			log.Fatalf("seed scene %q: %v", s.Name, err)
		}
		fmt.Printf("seeded scene: %s (id=%s)\n", s.Name, s.ID)
	}

	// Shared characters live under the empty user id and show up for everyone.
	seedModels := []*model.UserModel{
		{Name: "Sofia", Gender: "female", SkinTone: "fair", HairStyle: "long wavy", HairColor: "auburn", Age: "mid-20s"},
		{Name: "Amara", Gender: "female", SkinTone: "deep", HairStyle: "short natural", HairColor: "black", Age: "early 30s"},
		{Name: "Mei", Gender: "female", SkinTone: "light", HairStyle: "sleek bob", HairColor: "black", Age: "late 20s"},
		{Name: "Daniel", Gender: "male", SkinTone: "medium", HairStyle: "short cropped", HairColor: "brown", Age: "early 30s"},
	}
	for _, m := range seedModels {
		m.ID = model.NewID()
		m.UserID = ""
		m.CreatedAt = time.Now()
		if err := modelRepo.Save(ctx, nil, m); err != nil {
			log.Fatalf("seed model %q: %v", m.Name, err)
		}
		fmt.Printf("seeded model: %s (id=%s)\n", m.Name, m.ID)
	}

	// A demo account with a generous quota for local testing.
	if n, err := userRepo.CountUsers(ctx, nil); err != nil {
		log.Fatalf("count users: %v", err)
	} else if n == 0 {
		demo, err := model.NewUser("demo", "demo@tryonjewel.local", 200)
		if err != nil {
			log.Fatalf("demo user: %v", err)
		}
		if err := userRepo.Save(ctx, nil, demo); err != nil {
			log.Fatalf("seed demo user: %v", err)
		}
		fmt.Printf("seeded user: %s (quota=%d)\n", demo.ID, demo.DailyQuota)
	}

	fmt.Println("✅ Seeding complete.")
}
