package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportTarget string

const (
	ReportTargetPost ReportTarget = "post"
	ReportTargetUser ReportTarget = "user"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// CanMoveTo reports whether a moderator may move a report from s to next.
func (s ReportStatus) CanMoveTo(next ReportStatus) bool {
	switch s {
	case ReportPending:
		return next == ReportReviewed || next == ReportResolved || next == ReportDismissed
	case ReportReviewed:
		return next == ReportResolved || next == ReportDismissed
	default:
		return false
	}
}

// Report is a user complaint about a post or another user
type Report struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ReporterID uint               `json:"reporter_id" bson:"reporter_id"`
	TargetType ReportTarget       `json:"target_type" bson:"target_type"`
	TargetID   string             `json:"target_id" bson:"target_id"`
	Reason     string             `json:"reason" bson:"reason"`
	Status     ReportStatus       `json:"status" bson:"status"`
	ResolvedBy uint               `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

type CreateReportRequest struct {
	TargetType ReportTarget `json:"target_type" validate:"required,oneof=post user"`
	TargetID   string       `json:"target_id" validate:"required"`
	Reason     string       `json:"reason" validate:"required,min=3,max=500"`
}

type UpdateReportRequest struct {
	Status ReportStatus `json:"status" validate:"required,oneof=reviewed resolved dismissed"`
}

// ModerationStats is the admin dashboard overview
type ModerationStats struct {
	Users          int64 `json:"users"`
	BannedUsers    int64 `json:"banned_users"`
	Posts          int64 `json:"posts"`
	PendingReports int64 `json:"pending_reports"`
}
