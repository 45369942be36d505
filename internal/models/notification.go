package models

import "time"

type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

type Notification struct {
	ID        uint64    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
