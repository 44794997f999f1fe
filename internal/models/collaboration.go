package models

import (
	"time"
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationExpired  = "expired"
)

type Collaborator struct {
	ID          ID           `json:"id"`
	Trip        ID           `json:"trip"`
	User        ID           `json:"user"`
	Role        string       `json:"role"`
	AddedAt     time.Time    `json:"added_at"`
	UserDetails *UserSummary `json:"user_details,omitempty"`
}

type UserSummary struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Invitation struct {
	ID           ID        `json:"id"`
	Trip         ID        `json:"trip"`
	Inviter      ID        `json:"inviter"`
	InviteeEmail string    `json:"invitee_email"`
	Role         string    `json:"role"`
	Token        string    `json:"token"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsExpired    bool      `json:"is_expired"`
}

type InvitationInput struct {
	Trip         ID     `json:"trip" validate:"required"`
	InviteeEmail string `json:"invitee_email" validate:"required,email"`
	Role         string `json:"role" validate:"required,oneof=editor viewer"`
	Message      string `json:"message,omitempty" validate:"omitempty,max=500"`
}

const (
	InvitationActionAccept  = "accept"
	InvitationActionDecline = "decline"
)

type InvitationReply struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

type RoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=owner editor viewer"`
}
