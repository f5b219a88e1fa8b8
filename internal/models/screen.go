// internal/models/screen.go
package models

// Screen is one narrative beat: an image-generation prompt plus the caption
// shown on the finished frame. ScreenNumber is a dense 1-based index matching
// the screen's array position.
type Screen struct {
	ScreenNumber     int    `json:"screen_number"`
	ImageDescription string `json:"image_description"`
	Caption          string `json:"caption"`
}

// ScreenList is the persisted shape of screens.json.
type ScreenList struct {
	Screens []Screen `json:"screens"`
}

// Reindex restores the dense 1-based numbering after edits or tolerant loads.
func (l *ScreenList) Reindex() {
	for i := range l.Screens {
		l.Screens[i].ScreenNumber = i + 1
	}
}

// GeneratedImage is the image slot parallel to a Screen at the same index.
// An empty ImageB64 means the slot has not been generated yet; Accepted is
// advisory UI state, not a gate on export.
type GeneratedImage struct {
	ImageB64     string `json:"image_b64"`
	Accepted     bool   `json:"accepted"`
	ScreenNumber int    `json:"screen_number"`
}

// ScreenWithImage pairs a screen with its image slot. The two are persisted
// as parallel arrays but handled as one unit internally so the indexes can
// never drift apart.
type ScreenWithImage struct {
	Screen Screen
	Image  GeneratedImage
}

// AlignImages truncates or pads an image array so it matches the screen list
// positionally, and rewrites each slot's screen number from its position.
// Used on every load to reconcile the two persisted arrays.
func AlignImages(screens []Screen, images []GeneratedImage) []GeneratedImage {
	aligned := make([]GeneratedImage, len(screens))
	copy(aligned, images)
	for i := range aligned {
		aligned[i].ScreenNumber = i + 1
	}
	return aligned
}

// ImagesComplete reports whether every screen position holds image data.
func ImagesComplete(screens []Screen, images []GeneratedImage) bool {
	if len(screens) == 0 || len(images) < len(screens) {
		return false
	}
	for i := range screens {
		if images[i].ImageB64 == "" {
			return false
		}
	}
	return true
}
