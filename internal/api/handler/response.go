package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/iconidentify/learnvid/internal/domain"
)

// VideoResponse represents a stored video in API responses.
type VideoResponse struct {
	VideoID           string     `json:"video_id"`
	Title             string     `json:"title"`
	ChannelID         string     `json:"channel_id,omitempty"`
	ChannelName       string     `json:"channel_name,omitempty"`
	Description       string     `json:"description,omitempty"`
	Subject           string     `json:"subject,omitempty"`
	Topic             string     `json:"topic,omitempty"`
	ClassLevel        string     `json:"class_level,omitempty"`
	WatchURL          string     `json:"watch_url"`
	EmbedURL          string     `json:"embed_url"`
	ValidationStatus  string     `json:"validation_status"`
	ValidationMethod  string     `json:"validation_method,omitempty"`
	ValidationDetails string     `json:"validation_details,omitempty"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toVideoResponse(v *domain.Video) VideoResponse {
	return VideoResponse{
		VideoID:           v.VideoID.String(),
		Title:             v.Title,
		ChannelID:         v.ChannelID,
		ChannelName:       v.ChannelName,
		Description:       v.Description,
		Subject:           v.Subject,
		Topic:             v.Topic,
		ClassLevel:        string(v.ClassLevel),
		WatchURL:          v.VideoID.WatchURL(),
		EmbedURL:          v.VideoID.EmbedURL(),
		ValidationStatus:  string(v.ValidationStatus),
		ValidationMethod:  string(v.ValidationMethod),
		ValidationDetails: v.ValidationDetails,
		ValidatedAt:       v.ValidatedAt,
		CreatedAt:         v.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
