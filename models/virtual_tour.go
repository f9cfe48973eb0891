package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TourHotspot links one scene of a 360° tour to another.
type TourHotspot struct {
	ID      string  `json:"id"`
	Pitch   float64 `json:"pitch"`
	Yaw     float64 `json:"yaw"`
	Text    string  `json:"text"`
	Type    string  `json:"type"`
	SceneID string  `json:"sceneId"`
}

type TourView struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// TourScene is one panorama of the tour.
type TourScene struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	ImageURL    string        `json:"imageUrl"`
	Hotspots    []TourHotspot `json:"hotspots"`
	InitialView *TourView     `json:"initialView,omitempty"`
}

// VirtualTour stores the scene graph handed to the external 360° viewer.
type VirtualTour struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Slug      string         `gorm:"size:64;uniqueIndex" json:"slug"`
	Title     string         `gorm:"size:255" json:"title"`
	ViewerURL string         `gorm:"size:255;column:viewer_url" json:"viewerUrl"`
	Scenes    datatypes.JSON `gorm:"column:scenes" json:"scenes"`

	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SceneList decodes the stored scene graph.
func (t VirtualTour) SceneList() ([]TourScene, error) {
	if len(t.Scenes) == 0 {
		return []TourScene{}, nil
	}
	var scenes []TourScene
	if err := json.Unmarshal(t.Scenes, &scenes); err != nil {
		return nil, fmt.Errorf("decode scenes for tour %q: %w", t.Slug, err)
	}
	return scenes, nil
}

// EmbedURL serializes the scene graph into the viewer's embed link:
// <viewer>/embed?data=<component-escaped JSON array>.
func (t VirtualTour) EmbedURL() (string, error) {
	scenes, err := t.SceneList()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(scenes)
	if err != nil {
		return "", fmt.Errorf("encode scenes for tour %q: %w", t.Slug, err)
	}
	// the viewer decodes with decodeURIComponent, which does not treat '+' as a space
	data := strings.ReplaceAll(url.QueryEscape(string(raw)), "+", "%20")
	return strings.TrimRight(t.ViewerURL, "/") + "/embed?data=" + data, nil
}
