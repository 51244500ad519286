// Package catalog holds the single seed table of pre-confirmed videos, the
// always-safe fallback video and the child-safe channel allow-list.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
)

// SafeFallback is served when every other resolution tier comes up empty.
// It is a general-audience learning video confirmed embeddable.
var SafeFallback = domain.Candidate{
	VideoID:     "yCjJyiqpAuU",
	Title:       "Why Do We Learn? | Curiosity for Kids",
	ChannelID:   "UC4a-Gbdw7vOaccHmFo40b9g",
	ChannelName: "Khan Academy",
	Subject:     "general",
	Topic:       "general",
	ClassLevel:  "1-3",
}

// ChildSafeChannels are channel IDs preferred for learners in grades 1-3.
var ChildSafeChannels = []string{
	"UC4a-Gbdw7vOaccHmFo40b9g", // Khan Academy
	"UCX6b17PVsYBQ0ip5gyeme-Q", // CrashCourse Kids
	"UCLsooMJoIpl_7ux2jvdPB-Q", // Peekaboo Kidz
	"UC6-ymYjG0SU0jUWnWh9ZzEQ", // Learn Bright
	"UCsooa4yRKGN_zEE8iknghZA", // TED-Ed
}

// Seeds is the curated starting catalog. Entries are stored as pre-validated.
var Seeds = []domain.Candidate{
	{VideoID: "ZsJ2rGg0JCI", Title: "Addition for Kids", ChannelName: "Learn Bright", ChannelID: "UC6-ymYjG0SU0jUWnWh9ZzEQ", Subject: "mathematics", Topic: "addition", ClassLevel: "1-3"},
	{VideoID: "XWvQsUm3AQ8", Title: "Subtraction with Borrowing", ChannelName: "Khan Academy", ChannelID: "UC4a-Gbdw7vOaccHmFo40b9g", Subject: "mathematics", Topic: "subtraction", ClassLevel: "1-3"},
	{VideoID: "Dpsvt2ndqSA", Title: "Multiplication Tables Made Easy", ChannelName: "Peekaboo Kidz", ChannelID: "UCLsooMJoIpl_7ux2jvdPB-Q", Subject: "mathematics", Topic: "multiplication", ClassLevel: "1-3"},
	{VideoID: "n0FZhQ_GkKw", Title: "Introduction to Fractions", ChannelName: "Khan Academy", ChannelID: "UC4a-Gbdw7vOaccHmFo40b9g", Subject: "mathematics", Topic: "fractions", ClassLevel: "4-6"},
	{VideoID: "KzfWUEJjG18", Title: "Decimals and Place Value", ChannelName: "Khan Academy", ChannelID: "UC4a-Gbdw7vOaccHmFo40b9g", Subject: "mathematics", Topic: "decimals", ClassLevel: "4-6"},
	{VideoID: "302eJ3TzJQU", Title: "Angles and Triangles", ChannelName: "Math Antics", ChannelID: "UCVJ3zJy2YqcmpJsp9vgpJTQ", Subject: "mathematics", Topic: "geometry", ClassLevel: "7-8"},
	{VideoID: "NybHckSEQBI", Title: "Solving Linear Equations", ChannelName: "Khan Academy", ChannelID: "UC4a-Gbdw7vOaccHmFo40b9g", Subject: "mathematics", Topic: "algebra", ClassLevel: "9-10"},
	{VideoID: "ncORPosDrjI", Title: "The Water Cycle", ChannelName: "Peekaboo Kidz", ChannelID: "UCLsooMJoIpl_7ux2jvdPB-Q", Subject: "science", Topic: "water_cycle", ClassLevel: "4-6"},
	{VideoID: "UPBMG5EYydo", Title: "Photosynthesis Explained", ChannelName: "CrashCourse Kids", ChannelID: "UCX6b17PVsYBQ0ip5gyeme-Q", Subject: "science", Topic: "photosynthesis", ClassLevel: "7-8"},
	{VideoID: "tkFPyue5X3Q", Title: "Parts of a Plant", ChannelName: "Learn Bright", ChannelID: "UC6-ymYjG0SU0jUWnWh9ZzEQ", Subject: "science", Topic: "plants", ClassLevel: "1-3"},
	{VideoID: "libKVRa01L8", Title: "Our Solar System", ChannelName: "CrashCourse Kids", ChannelID: "UCX6b17PVsYBQ0ip5gyeme-Q", Subject: "science", Topic: "solar_system", ClassLevel: "4-6"},
	{VideoID: "wclY8F-UoTE", Title: "States of Matter", ChannelName: "Peekaboo Kidz", ChannelID: "UCLsooMJoIpl_7ux2jvdPB-Q", Subject: "science", Topic: "states_of_matter", ClassLevel: "4-6"},
	{VideoID: "mc979OhitAg", Title: "Electric Circuits", ChannelName: "TED-Ed", ChannelID: "UCsooa4yRKGN_zEE8iknghZA", Subject: "science", Topic: "electricity", ClassLevel: "7-8"},
	{VideoID: "SVvIKWDuPDk", Title: "Nouns and Pronouns", ChannelName: "Learn Bright", ChannelID: "UC6-ymYjG0SU0jUWnWh9ZzEQ", Subject: "english", Topic: "grammar", ClassLevel: "1-3"},
	{VideoID: "75p-N9YKqNo", Title: "Phonics Song for Children", ChannelName: "Peekaboo Kidz", ChannelID: "UCLsooMJoIpl_7ux2jvdPB-Q", Subject: "english", Topic: "phonics", ClassLevel: "1-3"},
	{VideoID: "kfbVc1TwXOw", Title: "Hindi Varnamala Swar", ChannelName: "Peekaboo Kidz", ChannelID: "UCLsooMJoIpl_7ux2jvdPB-Q", Subject: "hindi", Topic: "varnamala", ClassLevel: "1-3"},
	{VideoID: "m1bcpXAQ5sE", Title: "Sangya Kise Kehte Hain", ChannelName: "Learn Bright", ChannelID: "UC6-ymYjG0SU0jUWnWh9ZzEQ", Subject: "hindi", Topic: "vyakaran", ClassLevel: "4-6"},
	{VideoID: "8b2sTQzYcJk", Title: "India's Freedom Struggle", ChannelName: "TED-Ed", ChannelID: "UCsooa4yRKGN_zEE8iknghZA", Subject: "social_studies", Topic: "freedom_struggle", ClassLevel: "7-8"},
	{VideoID: "swKBi6hHHMA", Title: "Latitude and Longitude", ChannelName: "Learn Bright", ChannelID: "UC6-ymYjG0SU0jUWnWh9ZzEQ", Subject: "social_studies", Topic: "maps_and_globe", ClassLevel: "4-6"},
	{VideoID: "UN_pFv1gVjE", Title: "What is Coding?", ChannelName: "Khan Academy", ChannelID: "UC4a-Gbdw7vOaccHmFo40b9g", Subject: "computer_science", Topic: "programming", ClassLevel: "4-6"},
}

// Store is the part of the video store seeding needs.
type Store interface {
	AddBatch(ctx context.Context, videos []*domain.Video) (int, error)
	MarkValidation(ctx context.Context, id domain.VideoID, status domain.ValidationStatus, details domain.ValidationDetails) error
}

// Seed loads Seeds and SafeFallback into store as validated rows.
// Rows previously downgraded to invalid stay invalid.
func Seed(ctx context.Context, store Store, logger *slog.Logger) (int, error) {
	candidates := append([]domain.Candidate{SafeFallback}, Seeds...)
	videos := make([]*domain.Video, 0, len(candidates))
	for _, c := range candidates {
		videos = append(videos, domain.NewVideo(c))
	}

	inserted, err := store.AddBatch(ctx, videos)
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	if inserted == 0 {
		return 0, nil
	}

	details := domain.ValidationDetails{Method: domain.MethodSeed, At: time.Now()}
	for _, v := range videos {
		err := store.MarkValidation(ctx, v.VideoID, domain.ValidationValid, details)
		if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return inserted, fmt.Errorf("mark seed %s: %w", v.VideoID, err)
		}
	}

	logger.Info("seeded video catalog", "inserted", inserted, "total", len(videos))
	return inserted, nil
}

// IsChildSafeChannel reports whether channelID is on the allow-list or in extra.
func IsChildSafeChannel(channelID string, extra []string) bool {
	if channelID == "" {
		return false
	}
	for _, id := range ChildSafeChannels {
		if id == channelID {
			return true
		}
	}
	for _, id := range extra {
		if id == channelID {
			return true
		}
	}
	return false
}
