package handlers

import (
	"context"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/models"
)

// SessionStore defines lookup and creation of dashboard sessions
type SessionStore interface {
	GetOrCreate(id string) (*dashboard.Session, bool)
}

// PlayerSource defines the single-player lookup used by the detail card
type PlayerSource interface {
	Player(ctx context.Context, playerID string) (*models.Record, error)
}

// PDFRenderer prints an HTML document to PDF
type PDFRenderer interface {
	PrintHTML(ctx context.Context, html string) ([]byte, error)
}
