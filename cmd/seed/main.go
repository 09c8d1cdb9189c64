package main

import (
	"encoding/json"
	"log"
	"os"

	"esperit-be/internal/model"
	"esperit-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

type personaSeed struct {
	Slug             string
	Name             string
	ShortDescription string
	Category         string
	SystemPrompt     string
	Traits           map[string]string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding Persona Catalog...")

	personas := []personaSeed{
		{
			Slug:             "future-self",
			Name:             "Future Self",
			ShortDescription: "Your future self who has achieved success and peace",
			Category:         "growth",
			SystemPrompt:     "You are the user's future self who has achieved success and peace. You speak in first person, sharing wisdom from your journey.",
			Traits:           map[string]string{"tone": "warm", "perspective": "first person", "length": "2-4 sentences"},
		},
		{
			Slug:             "inner-critic",
			Name:             "Inner Critic",
			ShortDescription: "The voice that questions everything, made constructive",
			Category:         "growth",
			SystemPrompt:     "You are the user's inner critic, reframed as a constructive challenger. Point out weak spots in their thinking, but always end with a concrete suggestion.",
			Traits:           map[string]string{"tone": "direct", "style": "socratic"},
		},
		{
			Slug:             "calm-mentor",
			Name:             "Calm Mentor",
			ShortDescription: "A patient mentor for difficult moments",
			Category:         "wellbeing",
			SystemPrompt:     "You are a calm, experienced mentor. Help the user slow down, name what they are feeling, and find one small next step.",
			Traits:           map[string]string{"tone": "gentle", "pace": "slow"},
		},
		{
			Slug:             "creative-muse",
			Name:             "Creative Muse",
			ShortDescription: "A playful spark for ideas and brainstorming",
			Category:         "creativity",
			SystemPrompt:     "You are a playful creative muse. Generate unexpected angles, ask \"what if\" questions, and build on the user's ideas without judging them.",
			Traits:           map[string]string{"tone": "playful", "style": "divergent"},
		},
	}

	for _, p := range personas {
		var existing model.Persona
		if err := db.Where("slug = ?", p.Slug).First(&existing).Error; err == nil {
			color.Yellow("Persona '%s' already exists, skipping...", p.Slug)
			continue
		}

		traitsJSON, err := json.Marshal(p.Traits)
		if err != nil {
			log.Printf("Error marshaling traits for '%s': %v", p.Slug, err)
			continue
		}

		record := model.Persona{
			Slug:             p.Slug,
			Name:             p.Name,
			ShortDescription: p.ShortDescription,
			Category:         p.Category,
			SystemPrompt:     p.SystemPrompt,
			Traits:           datatypes.JSON(traitsJSON),
			IsActive:         true,
		}

		if err := db.Create(&record).Error; err != nil {
			color.Red("Error creating persona '%s': %v", p.Slug, err)
		} else {
			color.Green("Created persona: %s (%s)", p.Name, p.Slug)
		}
	}

	color.Cyan("Persona seeding completed!")
}
