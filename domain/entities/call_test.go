package entities

import (
	"testing"
	"time"
)

func TestCallSessionCreation(t *testing.T) {
	callerID := "caller-123"
	session := NewCallSession(callerID, "EN", "ES")

	if session.ID == "" {
		t.Error("Expected session ID to be generated")
	}

	if session.CallerID != callerID {
		t.Errorf("Expected caller ID %s, got %s", callerID, session.CallerID)
	}

	if session.Status != CallStatusActive {
		t.Errorf("Expected status %s, got %s", CallStatusActive, session.Status)
	}

	if session.SourceLanguage != "en" {
		t.Errorf("Expected source language en, got %s", session.SourceLanguage)
	}

	if session.TargetLanguage != "es" {
		t.Errorf("Expected target language es, got %s", session.TargetLanguage)
	}

	if len(session.Transcript) != 0 {
		t.Errorf("Expected empty transcript, got %d entries", len(session.Transcript))
	}
}

func TestAddEntry(t *testing.T) {
	session := NewCallSession("caller-1", "en", "es")

	entry := session.AddEntry("caller", "Hello", "Hola", "EN", "ES", 0.92)

	if len(session.Transcript) != 1 {
		t.Fatalf("Expected 1 transcript entry, got %d", len(session.Transcript))
	}

	if entry.ID == "" {
		t.Error("Expected entry ID to be generated")
	}

	if entry.OriginalText != "Hello" {
		t.Errorf("Expected original text Hello, got %s", entry.OriginalText)
	}

	if entry.TranslatedText != "Hola" {
		t.Errorf("Expected translated text Hola, got %s", entry.TranslatedText)
	}

	if entry.SourceLanguage != "en" || entry.TargetLanguage != "es" {
		t.Errorf("Expected lowercase language codes, got %s and %s",
			entry.SourceLanguage, entry.TargetLanguage)
	}

	if entry.Confidence != 0.92 {
		t.Errorf("Expected confidence 0.92, got %f", entry.Confidence)
	}

	session.AddEntry("callee", "How are you?", "¿Cómo estás?", "en", "es", 0.88)
	if len(session.Transcript) != 2 {
		t.Errorf("Expected 2 transcript entries, got %d", len(session.Transcript))
	}
}

func TestCallSessionEnd(t *testing.T) {
	session := NewCallSession("caller-1", "en", "es")

	if session.EndedAt != nil {
		t.Error("New session should not have an end time")
	}

	session.End()

	if session.Status != CallStatusEnded {
		t.Errorf("Expected status %s, got %s", CallStatusEnded, session.Status)
	}

	if session.EndedAt == nil {
		t.Fatal("Expected EndedAt to be set")
	}
}

func TestCallSessionDuration(t *testing.T) {
	session := NewCallSession("caller-1", "en", "es")
	session.StartedAt = time.Now().Add(-2 * time.Minute)

	// Active session measures against now
	if d := session.Duration(); d < 2*time.Minute-time.Second || d > 2*time.Minute+time.Second {
		t.Errorf("Expected duration near 2m for active session, got %v", d)
	}

	ended := session.StartedAt.Add(90 * time.Second)
	session.Status = CallStatusEnded
	session.EndedAt = &ended

	if d := session.Duration(); d != 90*time.Second {
		t.Errorf("Expected duration 90s for ended session, got %v", d)
	}
}

func TestCallSessionValidation(t *testing.T) {
	session := NewCallSession("caller-1", "en", "es")
	if err := session.Validate(); err != nil {
		t.Errorf("Valid session should not have validation errors, got: %v", err)
	}

	session.CallerID = ""
	if err := session.Validate(); err == nil {
		t.Error("Session with empty caller ID should have validation error")
	}

	session.CallerID = "caller-1"
	session.TargetLanguage = ""
	if err := session.Validate(); err == nil {
		t.Error("Session with empty target language should have validation error")
	}

	session.TargetLanguage = "es"
	session.Status = CallStatus("invalid")
	if err := session.Validate(); err == nil {
		t.Error("Session with invalid status should have validation error")
	}
}
