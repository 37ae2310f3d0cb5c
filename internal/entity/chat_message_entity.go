package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText         MessageType = "text"
	MessageTypeProfile      MessageType = "profile"
	MessageTypeJobs         MessageType = "jobs"
	MessageTypeJobDetails   MessageType = "job_details"
	MessageTypeConfirmation MessageType = "confirmation"
)

type ChatMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	MessageType   MessageType
	// ExtraData carries structured payloads (parsed jobs, profile)
	// alongside the raw text.
	ExtraData     json.RawMessage
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
