package api

import (
	"context"
	"net/http"

	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/validate"
)

const (
	collaboratorsPrefix = "/api/v1/collaboration/collaborators/"
	invitationsPrefix   = "/api/v1/collaboration/invitations/"
)

type CollaborationClient struct {
	c *Client
}

func (cc *CollaborationClient) Collaborators(ctx context.Context, trip models.ID) (models.Page[models.Collaborator], error) {
	var page models.Page[models.Collaborator]
	err := cc.c.doJSON(ctx, http.MethodGet, collaboratorsPrefix, filter("trip", trip), nil, &page)
	return page, err
}

func (cc *CollaborationClient) UpdateRole(ctx context.Context, id models.ID, role string) (models.Collaborator, error) {
	var collaborator models.Collaborator
	in := models.RoleUpdate{Role: role}
	if err := validate.Struct(in); err != nil {
		return collaborator, err
	}
	err := cc.c.doJSON(ctx, http.MethodPatch, idPath(collaboratorsPrefix, id), nil, in, &collaborator)
	return collaborator, err
}

func (cc *CollaborationClient) Remove(ctx context.Context, id models.ID) error {
	return cc.c.doJSON(ctx, http.MethodDelete, idPath(collaboratorsPrefix, id), nil, nil, nil)
}

func (cc *CollaborationClient) Invite(ctx context.Context, in models.InvitationInput) (models.Invitation, error) {
	var inv models.Invitation
	if err := validate.Struct(in); err != nil {
		return inv, err
	}
	err := cc.c.doJSON(ctx, http.MethodPost, invitationsPrefix, nil, in, &inv)
	return inv, err
}

// Invitations sent or received by the user, for the trip if it is set
func (cc *CollaborationClient) Invitations(ctx context.Context, trip models.ID) (models.Page[models.Invitation], error) {
	var page models.Page[models.Invitation]
	err := cc.c.doJSON(ctx, http.MethodGet, invitationsPrefix, filter("trip", trip), nil, &page)
	return page, err
}

// Respond accepts or declines invitation
func (cc *CollaborationClient) Respond(ctx context.Context, id models.ID, action string) (models.Invitation, error) {
	var inv models.Invitation
	in := models.InvitationReply{Action: action}
	if err := validate.Struct(in); err != nil {
		return inv, err
	}
	err := cc.c.doJSON(ctx, http.MethodPost, idPath(invitationsPrefix, id, "respond"), nil, in, &inv)
	return inv, err
}
