package notification

import (
	"fmt"
	"os/exec"
	"strings"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	// TypeInfo is an informational notification
	TypeInfo NotificationType = "info"
	// TypeWarning is a warning notification
	TypeWarning NotificationType = "warning"
	// TypeError is an error notification
	TypeError NotificationType = "error"
	// TypeSuccess is a success notification
	TypeSuccess NotificationType = "success"
)

// Notification represents a macOS notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	AppName string
}

// NotificationManager handles sending notifications to the user
type NotificationManager struct {
	appName string
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(appName string) *NotificationManager {
	return &NotificationManager{
		appName: appName,
	}
}

// Send sends a notification to the user via macOS notification center
func (nm *NotificationManager) Send(notification *Notification) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}

	// Escape double quotes so transcript fragments cannot break the script
	script := fmt.Sprintf(
		`display notification "%s" with title "%s"`,
		escapeScript(notification.Message),
		escapeScript(notification.Title),
	)

	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

func escapeScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// SendInfo sends an informational notification
func (nm *NotificationManager) SendInfo(title, message string) error {
	return nm.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeInfo,
	})
}

// SendWarning sends a warning notification
func (nm *NotificationManager) SendWarning(title, message string) error {
	return nm.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeWarning,
	})
}

// SendError sends an error notification
func (nm *NotificationManager) SendError(title, message string) error {
	return nm.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeError,
	})
}

// SendSuccess sends a success notification
func (nm *NotificationManager) SendSuccess(title, message string) error {
	return nm.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeSuccess,
	})
}

// ModelLoaded sends a notification that the transcription model is ready
func (nm *NotificationManager) ModelLoaded() error {
	return nm.SendSuccess(nm.appName, "Transcription model loaded and ready.")
}

// ModelNotFound sends a notification that the model file is not found
func (nm *NotificationManager) ModelNotFound(modelPath string) error {
	message := fmt.Sprintf("Model file not found: %s", modelPath)
	return nm.SendError(nm.appName, message)
}

// MicrophonePermissionDenied sends a notification that microphone permission is denied
func (nm *NotificationManager) MicrophonePermissionDenied() error {
	return nm.SendError(
		nm.appName,
		"Microphone access was denied. Please allow it in System Settings.",
	)
}

// AccessibilityPermissionDenied sends a notification that accessibility permission is denied
func (nm *NotificationManager) AccessibilityPermissionDenied() error {
	return nm.SendError(
		nm.appName,
		"Accessibility permission was denied. Please allow it in System Settings.",
	)
}

// RecordingFailed sends a notification that recording failed
func (nm *NotificationManager) RecordingFailed(reason string) error {
	message := "Recording failed"
	if reason != "" {
		message += ": " + reason
	}
	return nm.SendError(nm.appName, message)
}

// TranscriptionFailed sends a notification that transcription failed
func (nm *NotificationManager) TranscriptionFailed(reason string) error {
	message := "Transcription failed"
	if reason != "" {
		message += ": " + reason
	}
	return nm.SendError(nm.appName, message)
}

// EnhancementUnavailable sends a notification that the AI enhancer could not start
func (nm *NotificationManager) EnhancementUnavailable() error {
	return nm.SendWarning(
		nm.appName,
		"AI enhancement is unavailable. Transcripts will be typed directly.",
	)
}

// RecordingTimeExceeded sends a notification that recording hit the time limit
func (nm *NotificationManager) RecordingTimeExceeded() error {
	return nm.SendWarning(
		nm.appName,
		"Recording reached the time limit and was stopped automatically.",
	)
}

// DeviceNotFound sends a notification that the audio device is not found
func (nm *NotificationManager) DeviceNotFound() error {
	return nm.SendError(
		nm.appName,
		"No audio input device found. Please reconnect a microphone.",
	)
}
